package web

import (
	"callnotes/internal/domain"
	"callnotes/internal/markdown"
	"callnotes/internal/session"
	"embed"
	"fmt"
	"html/template"
)

const (
	pageTemplate = "page.html"

	// loadingRefreshSeconds is how often the page polls while a request runs.
	loadingRefreshSeconds = 2
)

//go:embed templates/*.html
var templatesFS embed.FS

type pageView struct {
	Transcript     string
	Pane           domain.Pane
	Loading        bool
	ButtonDisabled bool
	ErrorMessage   string
	SummaryHTML    template.HTML
	RefreshSeconds int
}

func parseTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return tmpl, nil
}

// newPageView derives what the page shows from a snapshot. A summary that
// fails to render is shown as the generic failure, never as raw text.
func newPageView(s domain.Snapshot) (pageView, error) {
	view := pageView{
		Transcript:     s.Transcript,
		Pane:           s.Pane(),
		Loading:        s.State == domain.StateLoading,
		ErrorMessage:   s.ErrorMessage,
		RefreshSeconds: loadingRefreshSeconds,
	}
	// Blank input is disabled client-side only; without JS the submit is a
	// server-side no-op.
	view.ButtonDisabled = view.Loading

	if view.Pane != domain.PaneSummary {
		return view, nil
	}

	html, err := markdown.Render(s.Summary)
	if err != nil {
		view.Pane = domain.PaneError
		view.ErrorMessage = session.FailureMessage

		return view, err
	}
	view.SummaryHTML = html

	return view, nil
}
