package rest

// Backend resource paths, relative to the base URL.
const (
	EndpointHealth          = "health"
	EndpointAvailableModels = "api/v1/models/available"

	EndpointHybridQuery   = "api/v1/query/hybrid"
	EndpointEnhancedQuery = "api/v1/query/enhanced"

	EndpointPDFUpload      = "api/v1/upload"
	EndpointPDFCollections = "api/v1/collections"
	EndpointPDFCollection  = "api/v1/collection"

	EndpointChatUpload      = "api/v1/chat/upload"
	EndpointChatCollections = "api/v1/chat/collections"
	EndpointChatCollection  = "api/v1/chat/collection"

	// Database and file resources are not part of the Registry.
	EndpointDatabaseTables = "api/v1/database/tables"
	EndpointDatabaseTable  = "api/v1/database/table"
	EndpointFiles          = "api/v1/files"
)
