package entities

// LLMProvider names a model family the backend can route a question to.
type LLMProvider string

const (
	ProviderHuggingFace LLMProvider = "huggingface"
	ProviderOllama      LLMProvider = "ollama"
	ProviderGemini      LLMProvider = "gemini"
)

// Providers lists the providers in the order the backend advertises them.
var Providers = []LLMProvider{ProviderHuggingFace, ProviderOllama, ProviderGemini}

// ChatPlatform is the messaging platform a chat export came from.
type ChatPlatform string

const (
	PlatformWhatsApp ChatPlatform = "whatsapp"
	PlatformTeams    ChatPlatform = "teams"
	PlatformSlack    ChatPlatform = "slack"
)

// Platforms lists the supported chat export platforms.
var Platforms = []ChatPlatform{PlatformWhatsApp, PlatformTeams, PlatformSlack}

// HybridQueryRequest triggers one retrieval and answer cycle on the backend.
type HybridQueryRequest struct {
	Question           string      `json:"question"`
	CollectionID       string      `json:"collection_id,omitempty"`
	IncludePDFResults  bool        `json:"include_pdf_results"`
	IncludeDBResults   bool        `json:"include_db_results"`
	IncludeChatResults bool        `json:"include_chat_results"`
	LLMProvider        LLMProvider `json:"llm_provider,omitempty"`
	LLMModel           string      `json:"llm_model,omitempty"`
}

// HybridResponse is the single, non-streamed answer to a HybridQueryRequest.
type HybridResponse struct {
	Answer             string                   `json:"answer"`
	PDFSources         []string                 `json:"pdf_sources"`
	PDFSourcesDetailed []PdfSourceInfo          `json:"pdf_sources_detailed,omitempty"`
	DBResults          map[string]DbTableResult `json:"db_results"`
	ChatResults        []ChatResult             `json:"chat_results,omitempty"`
	ProcessingTime     float64                  `json:"processing_time"`
	SearchTerms        []string                 `json:"search_terms"`
	TargetTables       []string                 `json:"target_tables,omitempty"`
	ModelUsed          string                   `json:"model_used"`

	// Quarantined counts sources and rows dropped by Sanitize.
	Quarantined int `json:"-"`
}

// PdfSourceInfo locates a cited PDF page.
type PdfSourceInfo struct {
	FileName       string  `json:"file_name"`
	CollectionID   string  `json:"collection_id"`
	Page           int     `json:"page,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
	ContentPreview string  `json:"content_preview,omitempty"`
	SearchText     string  `json:"search_text,omitempty"`
	FileURL        string  `json:"file_url,omitempty"`
	PageURL        string  `json:"page_url,omitempty"`
}

// ChatResult is a chat message cited by an answer.
type ChatResult struct {
	Source         string  `json:"source"`
	Platform       string  `json:"platform"`
	Participants   string  `json:"participants"`
	RelevanceScore float64 `json:"relevance_score"`
	ContentPreview string  `json:"content_preview"`
}

// PdfCollection is a backend grouping of uploaded PDFs.
type PdfCollection struct {
	CollectionID  string    `json:"collection_id"`
	DocumentCount int       `json:"document_count"`
	CreatedAt     Timestamp `json:"created_at"`
	FileNames     []string  `json:"file_names"`
}

// DateRange bounds the messages of a chat export.
type DateRange struct {
	Start Timestamp `json:"start"`
	End   Timestamp `json:"end"`
}

// ChatCollection is a backend grouping of one imported chat export.
type ChatCollection struct {
	CollectionID string       `json:"collection_id"`
	Platform     ChatPlatform `json:"platform"`
	FileName     string       `json:"file_name"`
	MessageCount int          `json:"message_count"`
	DateRange    *DateRange   `json:"date_range,omitempty"`
	Participants []string     `json:"participants"`
	CreatedAt    Timestamp    `json:"created_at"`
}

// UploadResponse acknowledges a PDF upload.
type UploadResponse struct {
	CollectionID string `json:"collection_id"`
	FileCount    int    `json:"file_count"`
	Status       string `json:"status"`
}

// ChatUploadResponse acknowledges a chat export upload.
type ChatUploadResponse struct {
	CollectionID string       `json:"collection_id"`
	Platform     ChatPlatform `json:"platform"`
	MessageCount int          `json:"message_count"`
	FileName     string       `json:"file_name"`
	DateRange    *DateRange   `json:"date_range,omitempty"`
	Participants []string     `json:"participants"`
	Status       string       `json:"status,omitempty"`
}

// HealthResponse is returned by the liveness probe.
type HealthResponse struct {
	Status               string `json:"status"`
	Initialized          bool   `json:"initialized"`
	PDFCollectionsCount  int    `json:"pdf_collections_count"`
	ChatCollectionsCount int    `json:"chat_collections_count"`
}

// AvailableModelsResponse lists the selectable models per provider.
type AvailableModelsResponse struct {
	DefaultProvider LLMProvider              `json:"default_provider"`
	DefaultModel    string                   `json:"default_model"`
	AvailableModels map[LLMProvider][]string `json:"available_models"`
	UsageHint       string                   `json:"usage_hint"`
}

// DeleteResponse acknowledges a collection removal.
type DeleteResponse struct {
	Message string `json:"message"`
}

// DatabaseTable summarises one table of the backend database.
type DatabaseTable struct {
	Name        string        `json:"name"`
	RowCount    int           `json:"row_count,omitempty"`
	Description string        `json:"description,omitempty"`
	Columns     []TableColumn `json:"columns,omitempty"`
	SampleData  []DbRecord    `json:"sample_data,omitempty"`
}

// TableColumn describes one column of a database table.
type TableColumn struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable,omitempty"`
}

// TableList is the body of the table listing endpoint.
type TableList struct {
	Tables []DatabaseTable `json:"tables"`
}

// TableDetail is the body of the table description endpoint.
type TableDetail struct {
	Name       string        `json:"name"`
	Columns    []TableColumn `json:"columns"`
	SampleData []DbRecord    `json:"sample_data"`
}
