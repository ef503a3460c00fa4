package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
	"github.com/0xcro3dile/docqa-go/internal/presenter"
)

// maxUploadSize bounds one multipart upload request.
const maxUploadSize = 128 << 20

type healthResponse struct {
	Healthy   bool                     `json:"healthy"`
	LatencyMS int64                    `json:"latency_ms"`
	Backend   *entities.HealthResponse `json:"backend,omitempty"`
	Error     string                   `json:"error,omitempty"`
}

type selectionRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type selectionResponse struct {
	Provider entities.LLMProvider              `json:"provider"`
	Model    string                            `json:"model"`
	Models   *entities.AvailableModelsResponse `json:"models,omitempty"`
}

type sourcesRequest struct {
	PDF          *bool   `json:"pdf"`
	DB           *bool   `json:"db"`
	Chat         *bool   `json:"chat"`
	CollectionID *string `json:"collection_id"`
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Message *presenter.MessageView `json:"message,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

type previewResponse struct {
	Source    entities.PdfSourceInfo `json:"source"`
	Page      int                    `json:"page"`
	Zoom      int                    `json:"zoom"`
	PageCount int                    `json:"page_count,omitempty"`
	ViewerURL string                 `json:"viewer_url"`
	HasPrev   bool                   `json:"has_prev"`
	HasNext   bool                   `json:"has_next"`
	Search    string                 `json:"search_text,omitempty"`
}

type notificationResponse struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Destructive bool   `json:"destructive,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	report := s.deps.System.Check(c.Request().Context())
	resp := healthResponse{
		Healthy:   report.Healthy(),
		LatencyMS: report.Latency.Milliseconds(),
		Backend:   report.Health,
	}
	status := http.StatusOK
	if report.Err != nil {
		resp.Error = report.Err.Error()
		status = http.StatusBadGateway
	}
	return c.JSON(status, resp)
}

func (s *Server) handleModels(c echo.Context) error {
	conv := s.deps.Conversation
	if conv.State().Models == nil || c.QueryParam("refresh") != "" {
		if err := conv.LoadModels(c.Request().Context()); err != nil {
			return s.errorJSON(c, "failed to load models", err)
		}
	}
	return c.JSON(http.StatusOK, selectionOf(conv.State()))
}

func (s *Server) handleSelect(c echo.Context) error {
	var req selectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	provider, err := entities.ParseLLMProvider(req.Provider)
	if err != nil {
		return s.errorJSON(c, "invalid provider", err)
	}

	conv := s.deps.Conversation
	if strings.TrimSpace(req.Model) == "" {
		err = conv.SelectProvider(provider)
	} else {
		err = conv.Select(entities.ModelSelection{Provider: provider, Model: req.Model})
	}
	if err != nil {
		return s.errorJSON(c, "invalid selection", err)
	}
	return c.JSON(http.StatusOK, selectionOf(conv.State()))
}

func selectionOf(st usecases.ConversationState) selectionResponse {
	return selectionResponse{
		Provider: st.Selection.Provider,
		Model:    st.Selection.Model,
		Models:   st.Models,
	}
}

func (s *Server) handleSources(c echo.Context) error {
	var req sourcesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	conv := s.deps.Conversation
	st := conv.State()
	toggles := st.Sources
	if req.PDF != nil {
		toggles.PDF = *req.PDF
	}
	if req.DB != nil {
		toggles.DB = *req.DB
	}
	if req.Chat != nil {
		toggles.Chat = *req.Chat
	}
	conv.SetSources(toggles)
	if req.CollectionID != nil {
		conv.SetCollection(strings.TrimSpace(*req.CollectionID))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"pdf":           toggles.PDF,
		"db":            toggles.DB,
		"chat":          toggles.Chat,
		"collection_id": conv.State().CollectionID,
	})
}

func (s *Server) handleAsk(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	msg, err := s.deps.Conversation.Ask(c.Request().Context(), req.Question)
	var resp askResponse
	if msg != nil {
		view := presenter.BuildMessage(*msg)
		resp.Message = &view
	}
	if err != nil {
		resp.Error = err.Error()
		return c.JSON(statusFor(err), resp)
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleMessages(c echo.Context) error {
	return c.JSON(http.StatusOK, presenter.BuildTranscript(s.deps.Conversation.Messages()))
}

func (s *Server) handleReset(c echo.Context) error {
	s.deps.Conversation.Reset()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListPDFs(c echo.Context) error {
	if err := s.deps.PDFs.Refresh(c.Request().Context()); err != nil {
		return s.errorJSON(c, "failed to fetch pdf collections", err)
	}
	return c.JSON(http.StatusOK, s.deps.PDFs.Collections())
}

func (s *Server) handleUploadPDFs(c echo.Context) error {
	form, err := s.multipartForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid upload", "details": err.Error()})
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "no files selected"})
	}

	files := make([]entities.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh, entities.UploadPDF)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid upload", "details": err.Error()})
		}
		if s.deps.Inspector != nil {
			pages, err := s.deps.Inspector.PageCount(f.Data)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{
					"error":   fmt.Sprintf("%s is not a readable PDF", f.Name),
					"details": err.Error(),
				})
			}
			f.Pages = pages
		}
		files = append(files, f)
	}

	resp, err := s.deps.PDFs.Upload(c.Request().Context(), files)
	if err != nil {
		return s.errorJSON(c, "upload failed", err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleDeletePDFs(c echo.Context) error {
	if err := s.deps.PDFs.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return s.errorJSON(c, "delete failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDownloadPDF(c echo.Context) error {
	var buf bytes.Buffer
	if _, err := s.deps.PDFs.Download(c.Request().Context(), c.Param("id"), c.Param("name"), &buf); err != nil {
		return s.errorJSON(c, "download failed", err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", c.Param("name")))
	return c.Blob(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) handleListChats(c echo.Context) error {
	if err := s.deps.Chats.Refresh(c.Request().Context()); err != nil {
		return s.errorJSON(c, "failed to fetch chat collections", err)
	}
	return c.JSON(http.StatusOK, s.deps.Chats.Collections())
}

func (s *Server) handleUploadChat(c echo.Context) error {
	form, err := s.multipartForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid upload", "details": err.Error()})
	}
	headers := form.File["file"]
	if len(headers) != 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "exactly one chat export is required"})
	}
	if platforms := form.Value["platform"]; len(platforms) > 0 && platforms[0] != "" {
		if err := s.deps.Chats.SetPlatform(entities.ChatPlatform(platforms[0])); err != nil {
			return s.errorJSON(c, "invalid platform", err)
		}
	}

	f, err := readUpload(headers[0], entities.UploadChat)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid upload", "details": err.Error()})
	}
	resp, err := s.deps.Chats.Upload(c.Request().Context(), f)
	if err != nil {
		return s.errorJSON(c, "chat upload failed", err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleDeleteChat(c echo.Context) error {
	if err := s.deps.Chats.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return s.errorJSON(c, "delete failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleTables(c echo.Context) error {
	if err := s.deps.Database.Refresh(c.Request().Context()); err != nil {
		return s.errorJSON(c, "failed to fetch database tables", err)
	}
	return c.JSON(http.StatusOK, s.deps.Database.Tables())
}

func (s *Server) handleOpenPreview(c echo.Context) error {
	var src entities.PdfSourceInfo
	if err := c.Bind(&src); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	st, err := s.deps.Preview.Open(c.Request().Context(), src)
	if err != nil {
		return s.errorJSON(c, "cannot open preview", err)
	}
	return c.JSON(http.StatusOK, previewOf(*st))
}

func (s *Server) handlePreview(c echo.Context) error {
	st, ok := s.deps.Preview.State()
	if !ok {
		return s.errorJSON(c, "no preview open", usecases.ErrNoPreview)
	}
	return c.JSON(http.StatusOK, previewOf(st))
}

func (s *Server) handleClosePreview(c echo.Context) error {
	s.deps.Preview.Close()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handlePreviewAction(c echo.Context) error {
	var (
		st  usecases.PreviewState
		err error
	)
	switch c.Param("action") {
	case "next":
		st, err = s.deps.Preview.NextPage()
	case "prev":
		st, err = s.deps.Preview.PrevPage()
	case "zoom-in":
		st, err = s.deps.Preview.ZoomIn()
	case "zoom-out":
		st, err = s.deps.Preview.ZoomOut()
	default:
		return c.JSON(http.StatusNotFound, map[string]string{"error": "unknown preview action"})
	}
	if err != nil {
		return s.errorJSON(c, "preview action failed", err)
	}
	return c.JSON(http.StatusOK, previewOf(st))
}

func (s *Server) handlePreviewText(c echo.Context) error {
	text, err := s.deps.Preview.PageText(c.Request().Context())
	if err != nil {
		return s.errorJSON(c, "failed to read page", err)
	}
	st, _ := s.deps.Preview.State()
	return c.JSON(http.StatusOK, map[string]any{"page": st.Page, "page_count": st.PageCount, "text": text})
}

func previewOf(st usecases.PreviewState) previewResponse {
	return previewResponse{
		Source:    st.Source,
		Page:      st.Page,
		Zoom:      st.Zoom,
		PageCount: st.PageCount,
		ViewerURL: st.ViewerURL(),
		HasPrev:   st.HasPrev(),
		HasNext:   st.HasNext(),
		Search:    st.SearchText(),
	}
}

func (s *Server) handleNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, notificationsOf(s.deps.Notices.Drain()))
}

func notificationsOf(ns []entities.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, notificationResponse{
			Title:       n.Title,
			Description: n.Description,
			Destructive: n.Variant == entities.VariantDestructive,
		})
	}
	return out
}

func (s *Server) multipartForm(c echo.Context) (*multipart.Form, error) {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxUploadSize)
	return c.MultipartForm()
}

func readUpload(fh *multipart.FileHeader, kind entities.UploadKind) (entities.UploadFile, error) {
	f, err := fh.Open()
	if err != nil {
		return entities.UploadFile{}, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return entities.UploadFile{}, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return entities.UploadFile{
		Name:    fh.Filename,
		Kind:    kind,
		Data:    data,
		ModTime: time.Now(),
	}, nil
}

func (s *Server) errorJSON(c echo.Context, msg string, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn(msg, "error", err)
	}
	return c.JSON(status, map[string]string{"error": msg, "details": err.Error()})
}

// statusFor maps use case and backend errors onto front end status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrInvalidQuestion),
		errors.Is(err, entities.ErrInvalidProvider),
		errors.Is(err, entities.ErrInvalidPlatform),
		errors.Is(err, usecases.ErrNoFileURL),
		errors.Is(err, usecases.ErrNoFileName):
		return http.StatusBadRequest
	case errors.Is(err, usecases.ErrNoPreview):
		return http.StatusNotFound
	case errors.Is(err, usecases.ErrSuperseded):
		return http.StatusConflict
	}
	var sc ports.StatusCarrier
	if errors.As(err, &sc) && sc.HTTPStatus() == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}
