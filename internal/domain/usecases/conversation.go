package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

const (
	DefaultProvider = entities.ProviderHuggingFace
	DefaultModel    = "google/flan-t5-base"

	// QueryFailedMessage is appended to the transcript when a question fails.
	QueryFailedMessage = "Sorry, something went wrong while processing your question. Check the API connection and try again."
)

// SourceToggles selects which source kinds a question searches.
type SourceToggles struct {
	PDF  bool
	DB   bool
	Chat bool
}

// AllSources enables every source kind.
var AllSources = SourceToggles{PDF: true, DB: true, Chat: true}

// ConversationState is a snapshot of the conversation.
type ConversationState struct {
	Messages     []entities.Message
	Loading      bool
	Sources      SourceToggles
	Selection    entities.ModelSelection
	Models       *entities.AvailableModelsResponse
	CollectionID string
}

// Conversation owns the transcript and the settings of the next question.
type Conversation struct {
	query    ports.QueryService
	system   ports.SystemService
	notifier ports.Notifier
	logger   *slog.Logger
	now      func() time.Time

	mu           sync.Mutex
	messages     []entities.Message
	loading      bool
	sources      SourceToggles
	selection    entities.ModelSelection
	chosen       bool // selection set explicitly, backend defaults no longer apply
	models       *entities.AvailableModelsResponse
	collectionID string
	generation   uint64
	cancel       context.CancelFunc
}

// NewConversation creates an empty conversation with every source enabled
// and the default model selected.
func NewConversation(
	query ports.QueryService,
	system ports.SystemService,
	notifier ports.Notifier,
	logger *slog.Logger,
) *Conversation {
	return &Conversation{
		query:     query,
		system:    system,
		notifier:  notifierOrDiscard(notifier),
		logger:    loggerOrDefault(logger),
		now:       time.Now,
		sources:   AllSources,
		selection: entities.ModelSelection{Provider: DefaultProvider, Model: DefaultModel},
	}
}

// State returns a copy of the current state.
func (c *Conversation) State() ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ConversationState{
		Messages:     append([]entities.Message(nil), c.messages...),
		Loading:      c.loading,
		Sources:      c.sources,
		Selection:    c.selection,
		Models:       c.models,
		CollectionID: c.collectionID,
	}
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []entities.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entities.Message(nil), c.messages...)
}

// SetSources replaces the source toggles.
func (c *Conversation) SetSources(s SourceToggles) {
	c.mu.Lock()
	c.sources = s
	c.mu.Unlock()
}

// SetCollection restricts questions to one collection. Empty means all.
func (c *Conversation) SetCollection(id string) {
	c.mu.Lock()
	c.collectionID = id
	c.mu.Unlock()
}

// SelectModel sets the model for the current provider.
func (c *Conversation) SelectModel(model string) {
	c.mu.Lock()
	c.selection.Model = model
	c.chosen = true
	c.mu.Unlock()
}

// Select sets provider and model together.
func (c *Conversation) Select(sel entities.ModelSelection) error {
	p, err := entities.ParseLLMProvider(string(sel.Provider))
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.selection = entities.ModelSelection{Provider: p, Model: sel.Model}
	c.chosen = true
	if sel.Model == "" {
		c.selection.Model = c.firstModel(p)
	}
	c.mu.Unlock()
	return nil
}

// SelectProvider switches provider and picks its first listed model.
// The model is kept when no list is known for p.
func (c *Conversation) SelectProvider(p entities.LLMProvider) error {
	p, err := entities.ParseLLMProvider(string(p))
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Provider = p
	c.chosen = true
	if m := c.firstModel(p); m != "" {
		c.selection.Model = m
	}
	return nil
}

// firstModel returns the first catalogued model of p, or "" when none is known.
func (c *Conversation) firstModel(p entities.LLMProvider) string {
	if c.models == nil {
		return ""
	}
	if models := c.models.AvailableModels[p]; len(models) > 0 {
		return models[0]
	}
	return ""
}

// LoadModels fetches the model catalogue. The backend defaults are adopted
// only while nothing was selected explicitly; an explicit provider without
// a model gets that provider's first model. On failure the current
// selection is kept.
func (c *Conversation) LoadModels(ctx context.Context) error {
	models, err := c.system.AvailableModels(ctx)
	if err != nil {
		c.logger.Warn("loading models failed", "error", err)
		c.notifier.Notify(failure("Model Loading Error", "Failed to load available AI models. Using default model."))
		return fmt.Errorf("loading models: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.models = models
	if c.chosen {
		if c.selection.Model == "" {
			c.selection.Model = c.firstModel(c.selection.Provider)
		}
		return nil
	}
	if models.DefaultProvider != "" {
		c.selection.Provider = models.DefaultProvider
	}
	if models.DefaultModel != "" {
		c.selection.Model = models.DefaultModel
	}
	return nil
}

// Ask sends question to the backend and appends the exchange to the
// transcript. A blank question is ignored. Asking again cancels the
// previous question, which then returns ErrSuperseded and appends nothing.
func (c *Conversation) Ask(ctx context.Context, question string) (*entities.Message, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	gen := c.generation
	c.cancel = cancel
	c.loading = true
	c.messages = append(c.messages, entities.Message{
		ID:        uuid.NewString(),
		Role:      entities.RoleUser,
		Content:   question,
		CreatedAt: c.now(),
	})
	req := entities.HybridQueryRequest{
		Question:           question,
		CollectionID:       c.collectionID,
		IncludePDFResults:  c.sources.PDF,
		IncludeDBResults:   c.sources.DB,
		IncludeChatResults: c.sources.Chat,
		LLMProvider:        c.selection.Provider,
		LLMModel:           c.selection.Model,
	}
	c.mu.Unlock()

	resp, err := c.query.HybridQuery(ctx, req)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return nil, ErrSuperseded
	}
	c.loading = false
	c.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.mu.Unlock()
			return nil, err
		}
		msg := entities.Message{
			ID:        uuid.NewString(),
			Role:      entities.RoleAssistant,
			Content:   QueryFailedMessage,
			Failed:    true,
			CreatedAt: c.now(),
		}
		c.messages = append(c.messages, msg)
		c.mu.Unlock()

		c.logger.Warn("query failed", "error", err)
		c.notifier.Notify(failure("Query Error", queryErrorDetail(err)))
		return &msg, err
	}

	msg := entities.Message{
		ID:        uuid.NewString(),
		Role:      entities.RoleAssistant,
		Content:   resp.Answer,
		ModelUsed: resp.ModelUsed,
		Sources:   entities.AttributionFrom(resp),
		CreatedAt: c.now(),
	}
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
	return &msg, nil
}

// Reset clears the transcript and cancels any pending question.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation++
	c.loading = false
	c.messages = nil
}

func queryErrorDetail(err error) string {
	switch statusOf(err) {
	case http.StatusNotFound:
		return "API endpoint not found. Make sure the backend server is running."
	case http.StatusInternalServerError:
		return "Server error. Check the server logs for details."
	}
	return err.Error()
}
