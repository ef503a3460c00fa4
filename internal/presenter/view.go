// Package presenter turns transcript messages into view models and text.
package presenter

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

// Display limits.
const (
	MaxSearchTerms  = 5
	MaxTableColumns = 6
	MaxTableRows    = 10
	MaxCellRunes    = 50
	// Tables with more rows start collapsed.
	CollapseAfterRows = 3
)

// PanelKind identifies a collapsible source panel.
type PanelKind string

const (
	PanelPDF  PanelKind = "pdf"
	PanelDB   PanelKind = "db"
	PanelChat PanelKind = "chat"
)

// MessageView is one rendered transcript entry.
type MessageView struct {
	ID             string        `json:"id"`
	Role           entities.Role `json:"role"`
	Content        string        `json:"content"`
	Failed         bool          `json:"failed,omitempty"`
	ModelBadge     string        `json:"model_badge,omitempty"`
	ProcessingTime string        `json:"processing_time,omitempty"`
	SearchTerms    []string      `json:"search_terms,omitempty"`
	MoreTerms      string        `json:"more_terms,omitempty"` // "+N more", empty when all terms are shown
	Panels         []Panel       `json:"panels,omitempty"`
}

// Panel is a collapsible group of sources.
type Panel struct {
	Kind      PanelKind   `json:"kind"`
	Title     string      `json:"title"`
	Collapsed bool        `json:"collapsed"`
	PDFs      []PDFEntry  `json:"pdfs,omitempty"`
	Table     *TableView  `json:"table,omitempty"`
	Chats     []ChatEntry `json:"chats,omitempty"`
}

// PDFEntry is one cited PDF page.
type PDFEntry struct {
	Label      string                 `json:"label"`
	PageBadge  string                 `json:"page_badge,omitempty"`
	ScoreBadge string                 `json:"score_badge,omitempty"`
	Preview    string                 `json:"preview,omitempty"`
	Link       string                 `json:"link,omitempty"`
	Viewable   bool                   `json:"viewable,omitempty"`
	Source     entities.PdfSourceInfo `json:"source,omitempty"`
}

// TableView is a truncated database result.
type TableView struct {
	Name       string     `json:"name"`
	CountBadge string     `json:"count_badge,omitempty"`
	AvgBadge   string     `json:"avg_badge,omitempty"`
	Headers    []string   `json:"headers,omitempty"`
	Keys       []string   `json:"keys,omitempty"`
	Rows       [][]string `json:"rows,omitempty"`
	Footer     string     `json:"footer,omitempty"` // "Showing 10 of N records" when rows were cut
}

// ChatEntry is one cited chat message.
type ChatEntry struct {
	Source       string `json:"source,omitempty"`
	Platform     string `json:"platform,omitempty"`
	Participants string `json:"participants,omitempty"`
	ScoreBadge   string `json:"score_badge,omitempty"`
	Preview      string `json:"preview,omitempty"`
}

// BuildMessage converts msg into its view model.
func BuildMessage(msg entities.Message) MessageView {
	v := MessageView{
		ID:      msg.ID,
		Role:    msg.Role,
		Content: msg.Content,
		Failed:  msg.Failed,
	}
	src := msg.Sources
	if src == nil {
		return v
	}

	v.ModelBadge = msg.ModelUsed
	if src.ProcessingTime > 0 {
		v.ProcessingTime = fmt.Sprintf("%.2fs", src.ProcessingTime)
	}
	terms := src.SearchTerms
	if len(terms) > MaxSearchTerms {
		v.MoreTerms = fmt.Sprintf("+%d more", len(terms)-MaxSearchTerms)
		terms = terms[:MaxSearchTerms]
	}
	v.SearchTerms = append([]string(nil), terms...)

	if p, ok := pdfPanel(src); ok {
		v.Panels = append(v.Panels, p)
	}

	names := make([]string, 0, len(src.DBResults))
	for name := range src.DBResults {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v.Panels = append(v.Panels, dbPanel(name, src.DBResults[name]))
	}

	if len(src.ChatResults) > 0 {
		p := Panel{Kind: PanelChat, Title: fmt.Sprintf("Chat Context (%d)", len(src.ChatResults)), Collapsed: true}
		for _, c := range src.ChatResults {
			p.Chats = append(p.Chats, ChatEntry{
				Source:       c.Source,
				Platform:     c.Platform,
				Participants: c.Participants,
				ScoreBadge:   scoreBadge(c.RelevanceScore),
				Preview:      c.ContentPreview,
			})
		}
		v.Panels = append(v.Panels, p)
	}
	return v
}

// BuildTranscript converts every message.
func BuildTranscript(msgs []entities.Message) []MessageView {
	out := make([]MessageView, len(msgs))
	for i, m := range msgs {
		out[i] = BuildMessage(m)
	}
	return out
}

func pdfPanel(src *entities.Attribution) (Panel, bool) {
	if len(src.PDFSourcesDetailed) > 0 {
		p := Panel{Kind: PanelPDF, Title: fmt.Sprintf("PDF Sources (%d)", len(src.PDFSourcesDetailed)), Collapsed: true}
		for _, s := range src.PDFSourcesDetailed {
			e := PDFEntry{
				Label:      s.FileName,
				ScoreBadge: scoreBadge(s.RelevanceScore),
				Preview:    s.ContentPreview,
				Link:       s.PageURL,
				Viewable:   s.FileURL != "",
				Source:     s,
			}
			if s.Page > 0 {
				e.PageBadge = fmt.Sprintf("%d", s.Page)
			}
			p.PDFs = append(p.PDFs, e)
		}
		return p, true
	}

	if len(src.PDFSources) > 0 {
		p := Panel{Kind: PanelPDF, Title: fmt.Sprintf("PDF Sources (%d)", len(src.PDFSources)), Collapsed: true}
		for _, name := range src.PDFSources {
			p.PDFs = append(p.PDFs, PDFEntry{Label: name})
		}
		return p, true
	}
	return Panel{}, false
}

func dbPanel(name string, res entities.DbTableResult) Panel {
	t := &TableView{Name: name}
	if res.RecordCount == 1 {
		t.CountBadge = "1 record"
	} else {
		t.CountBadge = fmt.Sprintf("%d records", res.RecordCount)
	}
	if res.AvgRelevanceScore != nil && *res.AvgRelevanceScore != 0 {
		t.AvgBadge = fmt.Sprintf("Avg: %.2f", *res.AvgRelevanceScore)
	}

	if len(res.Data) > 0 {
		for _, key := range res.Data[0].Columns() {
			if strings.Contains(key, "_vector") {
				continue
			}
			t.Keys = append(t.Keys, key)
			if len(t.Keys) == MaxTableColumns {
				break
			}
		}
		for _, key := range t.Keys {
			t.Headers = append(t.Headers, headerLabel(key))
		}
	}

	rows := res.Data
	if len(rows) > MaxTableRows {
		t.Footer = fmt.Sprintf("Showing %d of %d records", MaxTableRows, len(rows))
		rows = rows[:MaxTableRows]
	}
	for _, rec := range rows {
		cells := make([]string, len(t.Keys))
		for i, key := range t.Keys {
			cells[i] = formatCell(key, rec[key])
		}
		t.Rows = append(t.Rows, cells)
	}

	return Panel{
		Kind:      PanelDB,
		Title:     name,
		Collapsed: len(res.Data) > CollapseAfterRows,
		Table:     t,
	}
}

// headerLabel turns snake_case keys into Title Case labels.
func headerLabel(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func formatCell(key string, value any) string {
	if f, ok := value.(float64); ok && key == "relevance_score" {
		return fmt.Sprintf("%.2f", f)
	}
	if s, ok := value.(string); ok && (strings.Contains(key, "created_at") || strings.Contains(key, "updated_at")) {
		if ts := entities.ParseTimestamp(s); !ts.IsZero() {
			return ts.Date()
		}
	}

	var s string
	switch v := value.(type) {
	case nil:
		s = "null"
	case string:
		s = v
	case float64:
		s = fmt.Sprintf("%v", v)
	default:
		s = fmt.Sprint(v)
	}
	return truncate(s, MaxCellRunes)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

func scoreBadge(score float64) string {
	if score == 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", score)
}
