package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/usecases"
	"github.com/0xcro3dile/docqa-go/internal/presenter"
)

type pageData struct {
	Health      healthResponse
	Selection   entities.ModelSelection
	Sources     usecases.SourceToggles
	Loading     bool
	Transcript  []presenter.MessageView
	PDFs        []entities.PdfCollection
	Chats       []entities.ChatCollection
	Platform    entities.ChatPlatform
	Notices     []notificationResponse
	ListsFailed bool
}

// handleIndex renders the chat page. Collection lists are refreshed on
// every load; failures are reported through the notification list.
func (s *Server) handleIndex(c echo.Context) error {
	ctx := c.Request().Context()

	report := s.deps.System.Check(ctx)
	data := pageData{
		Health: healthResponse{
			Healthy:   report.Healthy(),
			LatencyMS: report.Latency.Milliseconds(),
			Backend:   report.Health,
		},
		Platform: s.deps.Chats.Platform(),
	}
	if report.Err != nil {
		data.Health.Error = report.Err.Error()
	} else {
		pdfErr := s.deps.PDFs.Refresh(ctx)
		chatErr := s.deps.Chats.Refresh(ctx)
		data.ListsFailed = pdfErr != nil || chatErr != nil
	}

	st := s.deps.Conversation.State()
	data.Selection = st.Selection
	data.Sources = st.Sources
	data.Loading = st.Loading
	data.Transcript = presenter.BuildTranscript(st.Messages)
	data.PDFs = s.deps.PDFs.Collections()
	data.Chats = s.deps.Chats.Collections()
	data.Notices = notificationsOf(s.deps.Notices.Drain())

	return c.Render(http.StatusOK, "index.html", data)
}

// handleAskForm asks the posted question and redirects back to the page.
func (s *Server) handleAskForm(c echo.Context) error {
	question := c.FormValue("question")
	if _, err := s.deps.Conversation.Ask(c.Request().Context(), question); err != nil {
		s.logger.Debug("question from page failed", "error", err)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
