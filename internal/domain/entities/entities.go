// Package entities contains the data exchanged with the document QA backend
// and the client-side objects built from it.
// No knowledge of HTTP or rendering lives here.
package entities

import "time"

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation transcript.
type Message struct {
	ID        string
	Role      Role
	Content   string
	ModelUsed string
	Sources   *Attribution // nil for user messages and failed answers
	Failed    bool
	CreatedAt time.Time
}

// Attribution holds the sources that justified an answer.
type Attribution struct {
	PDFSources         []string
	PDFSourcesDetailed []PdfSourceInfo
	DBResults          map[string]DbTableResult
	ChatResults        []ChatResult
	ProcessingTime     float64
	SearchTerms        []string
	TargetTables       []string
}

// AttributionFrom copies the source fields out of a backend response.
func AttributionFrom(resp *HybridResponse) *Attribution {
	return &Attribution{
		PDFSources:         resp.PDFSources,
		PDFSourcesDetailed: resp.PDFSourcesDetailed,
		DBResults:          resp.DBResults,
		ChatResults:        resp.ChatResults,
		ProcessingTime:     resp.ProcessingTime,
		SearchTerms:        resp.SearchTerms,
		TargetTables:       resp.TargetTables,
	}
}

// Variant classifies a notification.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a dismissable user-facing notice.
type Notification struct {
	Title       string
	Description string
	Variant     Variant
}

// UploadKind tells which upload endpoint a file belongs to.
type UploadKind string

const (
	UploadPDF  UploadKind = "pdf"
	UploadChat UploadKind = "chat"
)

// UploadFile is a local file ready to be sent to the backend.
type UploadFile struct {
	Name    string
	Path    string
	Kind    UploadKind
	Data    []byte
	Pages   int // PDFs only
	ModTime time.Time
}

// ModelSelection is the provider and model used for the next question.
type ModelSelection struct {
	Provider LLMProvider
	Model    string
}
