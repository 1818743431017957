// internal/tui/markdown.go
package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

var (
	mdRendererMu sync.Mutex
	// Renderers are cached by style and wrap width. WithAutoStyle queries the terminal
	// and can block, so the style is fixed up front.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderMarkdown renders scene prose for the content pane. On any renderer error the
// source text is returned unchanged.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)

	mdRendererMu.Lock()
	r := mdRenderers[key]
	mdRendererMu.Unlock()

	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRendererMu.Lock()
		if existing := mdRenderers[key]; existing != nil {
			r = existing
		} else {
			mdRenderers[key] = rr
			r = rr
		}
		mdRendererMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("NOVEL_TUI_MD_STYLE"))) {
	case "light":
		return "light"
	case "notty", "ascii":
		return "notty"
	}
	return "dark"
}
