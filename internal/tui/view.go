// internal/tui/view.go
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Corphon/NovelForge/internal/manuscript"
	"github.com/Corphon/NovelForge/internal/models"
)

// renderTree draws the outline pane. The selected node of the focused level gets the
// cursor; its ancestors are drawn bold.
func renderTree(n *models.Novel, sel manuscript.Selection, focus manuscript.ItemType, width int) string {
	if n == nil {
		return mutedStyle.Render("loading…")
	}
	if len(n.Acts) == 0 {
		return mutedStyle.Render("No acts yet. Tab to act, then a to add one.")
	}
	actID, chapterID, sceneID := sel.IDs()

	var lines []string
	row := func(indent int, label string, selected, cursor bool) {
		text := truncate(strings.Repeat("  ", indent)+label, width)
		switch {
		case cursor:
			lines = append(lines, selectedStyle.Render(text))
		case selected:
			lines = append(lines, activeStyle.Render(text))
		default:
			lines = append(lines, text)
		}
	}

	for _, act := range models.SortedActs(n.Acts) {
		row(0, "▸ "+act.Title, act.ID == actID, focus == manuscript.ItemAct && act.ID == actID)
		for _, ch := range models.SortedChapters(act.Chapters) {
			row(1, "▸ "+ch.Title, ch.ID == chapterID, focus == manuscript.ItemChapter && ch.ID == chapterID)
			for _, sc := range models.SortedScenes(ch.Scenes) {
				label := fmt.Sprintf("• %s (%dw)", sc.DisplayTitle(), sc.WordCount)
				row(2, label, sc.ID == sceneID, focus == manuscript.ItemScene && sc.ID == sceneID)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// documentMarkdown is the prose of the selected scene, or a placeholder naming what
// is selected instead.
func documentMarkdown(sel manuscript.Selection) string {
	switch {
	case sel.Scene != nil:
		body := strings.TrimSpace(sel.Scene.Content)
		if body == "" {
			body = "_Empty scene. Press e to start writing._"
		}
		status := ""
		if sel.Scene.Status != "" {
			status = fmt.Sprintf(" · %s", sel.Scene.Status)
		}
		return fmt.Sprintf("# %s\n\n*%d words%s*\n\n%s", sel.Scene.DisplayTitle(), sel.Scene.WordCount, status, body)
	case sel.Chapter != nil:
		return fmt.Sprintf("# %s\n\n_No scenes yet._", sel.Chapter.Title)
	case sel.Act != nil:
		return fmt.Sprintf("# %s\n\n_No chapters yet._", sel.Act.Title)
	}
	return "_Nothing selected._"
}

// renderGrid lays out the chapters of the selected act as cards.
func renderGrid(sel manuscript.Selection, width int) string {
	if sel.Act == nil {
		return mutedStyle.Render("Select an act to see its chapters.")
	}
	chapters := models.SortedChapters(sel.Act.Chapters)
	if len(chapters) == 0 {
		return mutedStyle.Render(sel.Act.Title + " has no chapters.")
	}

	cardWidth := 24
	perRow := width / (cardWidth + 4)
	if perRow < 1 {
		perRow = 1
	}

	var rows []string
	var cards []string
	for _, ch := range chapters {
		words := 0
		for _, sc := range ch.Scenes {
			words += sc.WordCount
		}
		lines := []string{
			activeStyle.Render(truncate(ch.Title, cardWidth)),
			mutedStyle.Render(fmt.Sprintf("%d scenes · %d words", len(ch.Scenes), words)),
		}
		for _, sc := range models.SortedScenes(ch.Scenes) {
			lines = append(lines, truncate("• "+sc.DisplayTitle(), cardWidth))
		}
		style := cardStyle.Width(cardWidth)
		if sel.Chapter != nil && sel.Chapter.ID == ch.ID {
			style = style.BorderForeground(colorAccent)
		}
		cards = append(cards, style.Render(strings.Join(lines, "\n")))
		if len(cards) == perRow {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
			cards = nil
		}
	}
	if len(cards) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n")
}

func navigationLabel(nav manuscript.Navigation) string {
	if len(nav.Items) == 0 {
		return fmt.Sprintf("%s -/-", nav.Level)
	}
	return fmt.Sprintf("%s %d/%d", nav.Level, nav.Position(), len(nav.Items))
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r)) > width-1 {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
