package presenter

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
)

// RenderOptions controls text rendering.
type RenderOptions struct {
	// Expand prints collapsed panels too.
	Expand bool
}

// Render writes v as plain text.
func Render(w io.Writer, v MessageView, opts RenderOptions) error {
	ew := &errWriter{w: w}

	switch v.Role {
	case entities.RoleUser:
		ew.printf("> %s\n", v.Content)
		return ew.err
	default:
		if v.Failed {
			ew.printf("! %s\n", v.Content)
			return ew.err
		}
		ew.printf("%s\n", v.Content)
	}

	var meta []string
	if v.ModelBadge != "" {
		meta = append(meta, "model: "+v.ModelBadge)
	}
	if v.ProcessingTime != "" {
		meta = append(meta, v.ProcessingTime)
	}
	if len(v.SearchTerms) > 0 {
		terms := strings.Join(v.SearchTerms, ", ")
		if v.MoreTerms != "" {
			terms += " " + v.MoreTerms
		}
		meta = append(meta, "terms: "+terms)
	}
	if len(meta) > 0 {
		ew.printf("  [%s]\n", strings.Join(meta, " | "))
	}

	for _, p := range v.Panels {
		renderPanel(ew, p, opts)
	}
	return ew.err
}

// RenderTranscript writes every message separated by blank lines.
func RenderTranscript(w io.Writer, views []MessageView, opts RenderOptions) error {
	for i, v := range views {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := Render(w, v, opts); err != nil {
			return err
		}
	}
	return nil
}

func renderPanel(ew *errWriter, p Panel, opts RenderOptions) {
	title := p.Title
	if p.Table != nil {
		title = fmt.Sprintf("%s (%s)", p.Title, p.Table.CountBadge)
		if p.Table.AvgBadge != "" {
			title += " " + p.Table.AvgBadge
		}
	}
	if p.Collapsed && !opts.Expand {
		ew.printf("  + %s\n", title)
		return
	}
	ew.printf("  - %s\n", title)

	switch p.Kind {
	case PanelPDF:
		for i, e := range p.PDFs {
			line := fmt.Sprintf("    %d. %s", i+1, e.Label)
			if e.PageBadge != "" {
				line += " p." + e.PageBadge
			}
			if e.ScoreBadge != "" {
				line += " score " + e.ScoreBadge
			}
			ew.printf("%s\n", line)
			if e.Preview != "" {
				ew.printf("       %s\n", e.Preview)
			}
			if e.Link != "" {
				ew.printf("       %s\n", e.Link)
			}
		}
	case PanelDB:
		renderTable(ew, p.Table)
	case PanelChat:
		for i, c := range p.Chats {
			line := fmt.Sprintf("    %d. %s", i+1, c.Source)
			if c.Platform != "" {
				line += " [" + c.Platform + "]"
			}
			if c.ScoreBadge != "" {
				line += " score " + c.ScoreBadge
			}
			ew.printf("%s\n", line)
			if c.Preview != "" {
				ew.printf("       %s\n", c.Preview)
			}
		}
	}
}

func renderTable(ew *errWriter, t *TableView) {
	if t == nil || len(t.Headers) == 0 {
		return
	}
	tw := tabwriter.NewWriter(ew, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "    %s\n", strings.Join(t.Headers, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintf(tw, "    %s\n", strings.Join(row, "\t"))
	}
	tw.Flush()
	if t.Footer != "" {
		ew.printf("    %s\n", t.Footer)
	}
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func (e *errWriter) printf(format string, args ...any) {
	fmt.Fprintf(e, format, args...)
}
