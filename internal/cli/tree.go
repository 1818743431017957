// internal/cli/tree.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/manuscript"
	"github.com/Corphon/NovelForge/internal/models"
)

func newTreeCmd(app *App) *cobra.Command {
	var showIDs bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the act/chapter/scene outline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			n := ed.Novel()
			actID, chapterID, sceneID := ed.Selection().IDs()
			out := map[string]any{
				"novel": n,
				"selection": map[string]string{
					"actId":     actID,
					"chapterId": chapterID,
					"sceneId":   sceneID,
				},
			}
			return writeOut(cmd, app, out, func(w io.Writer) {
				printTree(w, n, ed.Selection(), showIDs)
			})
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", true, "Print node ids")
	return cmd
}

func printTree(w io.Writer, n *models.Novel, sel manuscript.Selection, showIDs bool) {
	actID, chapterID, sceneID := sel.IDs()
	fmt.Fprintf(w, "%s (%d words)\n", n.Title, n.WordCount())
	if len(n.Acts) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}

	line := func(depth int, selected bool, label, id string) {
		marker := "  "
		if selected {
			marker = "> "
		}
		fmt.Fprintf(w, "%s%s%s", strings.Repeat("  ", depth), marker, label)
		if showIDs {
			fmt.Fprintf(w, "  [%s]", id)
		}
		fmt.Fprintln(w)
	}
	for _, act := range models.SortedActs(n.Acts) {
		line(0, act.ID == actID, fmt.Sprintf("%d. %s", act.Order, act.Title), act.ID)
		for _, ch := range models.SortedChapters(act.Chapters) {
			line(1, ch.ID == chapterID, fmt.Sprintf("%d. %s", ch.Order, ch.Title), ch.ID)
			for _, sc := range models.SortedScenes(ch.Scenes) {
				line(2, sc.ID == sceneID, fmt.Sprintf("%d. %s (%d words)", sc.Order, sc.DisplayTitle(), sc.WordCount), sc.ID)
			}
		}
	}
}

func newShowCmd(app *App) *cobra.Command {
	var (
		render bool
		width  int
	)
	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show a scene's prose, or a chapter or act outline (default: the selected scene)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			id := ""
			if len(args) == 1 {
				id = args[0]
			} else if _, _, sceneID := ed.Selection().IDs(); sceneID != "" {
				id = sceneID
			} else {
				return writeErr(cmd, fmt.Errorf("nothing selected; pass an id"))
			}

			md, node, err := describeNode(ed, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, node, func(w io.Writer) {
				if render {
					if out, err := renderMarkdown(md, width); err == nil {
						fmt.Fprintln(w, out)
						return
					}
				}
				fmt.Fprintln(w, md)
			})
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render markdown for the terminal")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	return cmd
}

// describeNode returns a markdown rendition of any node and the node itself.
func describeNode(ed *manuscript.Editor, id string) (string, any, error) {
	p, ok := ed.Locate(id)
	if !ok {
		return "", nil, apperrors.NewNotFoundError(fmt.Sprintf("no act, chapter or scene with id %s", id), nil)
	}
	n := ed.Novel()
	for _, act := range n.Acts {
		if act.ID == p.ActID && p.Level == manuscript.ItemAct {
			var b strings.Builder
			fmt.Fprintf(&b, "# %s\n\n", act.Title)
			for _, ch := range models.SortedChapters(act.Chapters) {
				fmt.Fprintf(&b, "%d. %s (%d scenes)\n", ch.Order, ch.Title, len(ch.Scenes))
			}
			return b.String(), act, nil
		}
		for _, ch := range act.Chapters {
			if ch.ID == p.ChapterID && p.Level == manuscript.ItemChapter {
				var b strings.Builder
				fmt.Fprintf(&b, "# %s\n\n", ch.Title)
				for _, sc := range models.SortedScenes(ch.Scenes) {
					fmt.Fprintf(&b, "%d. %s (%d words)\n", sc.Order, sc.DisplayTitle(), sc.WordCount)
				}
				return b.String(), ch, nil
			}
			for _, sc := range ch.Scenes {
				if sc.ID == p.SceneID {
					body := sc.Content
					if strings.TrimSpace(body) == "" {
						body = "_(empty)_"
					}
					return fmt.Sprintf("# %s\n\n%s\n", sc.DisplayTitle(), body), sc, nil
				}
			}
		}
	}
	return "", nil, apperrors.NewNotFoundError(fmt.Sprintf("no act, chapter or scene with id %s", id), nil)
}

func renderMarkdown(md string, width int) (string, error) {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(envOr("NOVEL_MD_STYLE", "dark")),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
