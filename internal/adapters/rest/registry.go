package rest

// Registry holds one RequestHandler per backend capability.
type Registry struct {
	Health          *RequestHandler
	AvailableModels *RequestHandler
	HybridQuery     *RequestHandler
	PdfUpload       *RequestHandler
	PdfCollections  *RequestHandler
	PdfCollection   *RequestHandler
	ChatUpload      *RequestHandler
	ChatCollections *RequestHandler
	ChatCollection  *RequestHandler
}

// NewRegistry binds every backend capability to baseURL. An empty
// queryPath selects EndpointHybridQuery.
func NewRegistry(baseURL, queryPath string, opts ...Option) *Registry {
	if queryPath == "" {
		queryPath = EndpointHybridQuery
	}
	h := func(resource string) *RequestHandler {
		return NewRequestHandler(baseURL, resource, opts...)
	}
	return &Registry{
		Health:          h(EndpointHealth),
		AvailableModels: h(EndpointAvailableModels),
		HybridQuery:     h(queryPath),
		PdfUpload:       h(EndpointPDFUpload),
		PdfCollections:  h(EndpointPDFCollections),
		PdfCollection:   h(EndpointPDFCollection),
		ChatUpload:      h(EndpointChatUpload),
		ChatCollections: h(EndpointChatCollections),
		ChatCollection:  h(EndpointChatCollection),
	}
}
