// internal/cli/edit.go
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/manuscript"
	"github.com/Corphon/NovelForge/internal/models"
)

func locateOrFail(ed *manuscript.Editor, id string) (manuscript.Path, error) {
	p, ok := ed.Locate(id)
	if !ok {
		return p, apperrors.NewNotFoundError(fmt.Sprintf("no act, chapter or scene with id %s", id), nil)
	}
	return p, nil
}

// sourceContainer is the id of the container a node is dragged out of.
func sourceContainer(p manuscript.Path) string {
	switch p.Level {
	case manuscript.ItemScene:
		return p.ChapterID
	case manuscript.ItemChapter:
		return p.ActID
	}
	return ""
}

func newMoveCmd(app *App) *cobra.Command {
	var (
		onto   string
		up     bool
		down   bool
		by     int
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move an act, chapter or scene (drop it onto another node, or nudge it)",
		Long: strings.TrimSpace(`
Moves a node the way dragging it in the editor would.

  --onto <target>  drop onto a sibling (takes its position) or onto a container
                   (a chapter for scenes, an act for chapters: appended at the end)
  --up / --down    move one position, stepping into the neighbouring container at an edge
  --by N           move N positions (negative is up)
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			delta := by
			if up {
				delta = -1
			}
			if down {
				delta = 1
			}
			if onto == "" && delta == 0 {
				return writeErr(cmd, apperrors.NewValidationError("pass --onto, --up, --down or --by", nil))
			}
			if dryRun && onto == "" && (delta > 1 || delta < -1) {
				return writeErr(cmd, apperrors.NewValidationError("--dry-run plans a single step; use --up or --down", nil))
			}

			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			p, err := locateOrFail(ed, id)
			if err != nil {
				return writeErr(cmd, err)
			}

			nextEvent := func() (manuscript.DragEndEvent, bool, error) {
				if onto != "" {
					tp, err := locateOrFail(ed, onto)
					if err != nil {
						return manuscript.DragEndEvent{}, false, err
					}
					return manuscript.DragEndEvent{
						ActiveType:        p.Level,
						ActiveID:          id,
						SourceContainerID: sourceContainer(p),
						OverType:          tp.Level,
						OverID:            onto,
					}, true, nil
				}
				ev, ok := manuscript.NudgeEvent(ed.Novel(), p.Level, id, delta)
				return ev, ok, nil
			}

			steps := 1
			if onto == "" {
				steps = delta
				if steps < 0 {
					steps = -steps
				}
			}

			var plans []manuscript.ReorderPlan
			for i := 0; i < steps; i++ {
				ev, ok, err := nextEvent()
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					break
				}
				plan, err := ed.PlanDragEnd(ev)
				if err != nil {
					return writeErr(cmd, err)
				}
				if plan == nil {
					break
				}
				plans = append(plans, *plan)
				if dryRun {
					break
				}
				if err := ed.ApplyReorder(cmd.Context(), *plan); err != nil {
					return writeErr(cmd, err)
				}
				// Path may have changed container.
				if p, err = locateOrFail(ed, id); err != nil {
					return writeErr(cmd, err)
				}
			}

			if !dryRun {
				if err := app.remember(ed); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, plans, func(w io.Writer) {
				if len(plans) == 0 {
					fmt.Fprintln(w, "nothing to move")
					return
				}
				verb := "moved"
				if dryRun {
					verb = "would send"
				}
				for _, plan := range plans {
					fmt.Fprintf(w, "%s %s newOrder=%d", verb, plan.Endpoint(), plan.NewOrder)
					if plan.NewParentID != "" {
						fmt.Fprintf(w, " newParent=%s", plan.NewParentID)
					}
					fmt.Fprintln(w)
				}
				if onto == "" && len(plans) < steps && !dryRun {
					fmt.Fprintf(w, "stopped at the edge after %d of %d steps\n", len(plans), steps)
				}
			})
		},
	}
	cmd.Flags().StringVar(&onto, "onto", "", "Drop target id")
	cmd.Flags().BoolVar(&up, "up", false, "Move one position up")
	cmd.Flags().BoolVar(&down, "down", false, "Move one position down")
	cmd.Flags().IntVar(&by, "by", 0, "Move N positions (negative is up)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the reorder request without sending it")
	cmd.MarkFlagsMutuallyExclusive("onto", "up", "down", "by")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title...>",
		Short: "Rename an act, chapter or scene (an empty title clears a scene's title)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, title := args[0], strings.Join(args[1:], " ")

			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			p, err := locateOrFail(ed, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			switch p.Level {
			case manuscript.ItemAct:
				err = ed.RenameAct(cmd.Context(), id, title)
			case manuscript.ItemChapter:
				err = ed.RenameChapter(cmd.Context(), id, title)
			default:
				err = ed.RenameScene(cmd.Context(), id, title)
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			_, node, err := describeNode(ed, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, node, func(w io.Writer) {
				fmt.Fprintf(w, "renamed %s %s to %q\n", p.Level, id, strings.TrimSpace(title))
			})
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:       "add <act|chapter|scene> [title...]",
		Short:     "Add an act, chapter or scene and select it",
		Long:      "Chapters go into the selected act and scenes into the selected chapter unless --parent is given. A blank title gets a default.",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: []string{"act", "chapter", "scene"},
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLevel(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			title := strings.Join(args[1:], " ")

			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			actID, chapterID, _ := ed.Selection().IDs()
			var node any
			switch level {
			case manuscript.ItemAct:
				act, err := ed.AddAct(cmd.Context(), title)
				if err != nil {
					return writeErr(cmd, err)
				}
				ed.SelectAct(act.ID)
				node = act
			case manuscript.ItemChapter:
				if parent == "" {
					parent = actID
				}
				if parent == "" {
					return writeErr(cmd, apperrors.NewValidationError("no act selected; pass --parent", nil))
				}
				ch, err := ed.AddChapter(cmd.Context(), parent, title)
				if err != nil {
					return writeErr(cmd, err)
				}
				ed.SelectChapter(ch.ID)
				node = ch
			default:
				if parent == "" {
					parent = chapterID
				}
				if parent == "" {
					return writeErr(cmd, apperrors.NewValidationError("no chapter selected; pass --parent", nil))
				}
				sc, err := ed.AddScene(cmd.Context(), parent, title)
				if err != nil {
					return writeErr(cmd, err)
				}
				ed.SelectScene(sc.ID)
				node = sc
			}

			if err := app.remember(ed); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, node, func(w io.Writer) {
				sel := ed.Selection()
				switch level {
				case manuscript.ItemAct:
					fmt.Fprintf(w, "added act %q [%s]\n", sel.Act.Title, sel.Act.ID)
				case manuscript.ItemChapter:
					fmt.Fprintf(w, "added chapter %q [%s] to %s\n", sel.Chapter.Title, sel.Chapter.ID, sel.Act.Title)
				default:
					fmt.Fprintf(w, "added scene %q [%s] to %s\n", sel.Scene.DisplayTitle(), sel.Scene.ID, sel.Chapter.Title)
				}
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent act (for chapters) or chapter (for scenes)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an act, chapter or scene with everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			p, err := locateOrFail(ed, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			switch p.Level {
			case manuscript.ItemAct:
				err = ed.DeleteAct(cmd.Context(), id)
			case manuscript.ItemChapter:
				err = ed.DeleteChapter(cmd.Context(), id)
			default:
				err = ed.DeleteScene(cmd.Context(), id)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := app.remember(ed); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, p, func(w io.Writer) {
				fmt.Fprintf(w, "deleted %s %s\n", p.Level, id)
			})
		},
	}
}

func newWipeCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every act, chapter and scene of the novel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, apperrors.NewValidationError("wipe deletes the whole manuscript; pass --yes to confirm", nil))
			}
			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			if err := ed.DeleteAll(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			if err := app.remember(ed); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, ed.Novel(), func(w io.Writer) {
				fmt.Fprintf(w, "wiped %s\n", ed.Novel().Title)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm")
	return cmd
}

func newWriteCmd(app *App) *cobra.Command {
	var (
		file       string
		appendMode bool
	)
	cmd := &cobra.Command{
		Use:   "write [scene-id]",
		Short: "Replace a scene's prose with stdin or --file (default: the selected scene)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if file != "" {
				data, err = os.ReadFile(file)
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			sceneID := ""
			if len(args) == 1 {
				sceneID = args[0]
			} else if _, _, id := ed.Selection().IDs(); id != "" {
				sceneID = id
			} else {
				return writeErr(cmd, apperrors.NewValidationError("no scene selected; pass a scene id", nil))
			}

			content := string(data)
			if appendMode {
				if sc, ok := findSceneIn(ed.Novel(), sceneID); ok && sc.Content != "" {
					content = strings.TrimRight(sc.Content, "\n") + "\n\n" + content
				}
			}
			if err := ed.SaveSceneContent(cmd.Context(), sceneID, content); err != nil {
				return writeErr(cmd, err)
			}

			sc, _ := findSceneIn(ed.Novel(), sceneID)
			return writeOut(cmd, app, sc, func(w io.Writer) {
				fmt.Fprintf(w, "saved %s (%d words)\n", sc.DisplayTitle(), sc.WordCount)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read prose from a file instead of stdin")
	cmd.Flags().BoolVar(&appendMode, "append", false, "Append to the existing prose")
	return cmd
}

func findSceneIn(n *models.Novel, sceneID string) (models.Scene, bool) {
	if n == nil {
		return models.Scene{}, false
	}
	for _, a := range n.Acts {
		for _, c := range a.Chapters {
			for _, s := range c.Scenes {
				if s.ID == sceneID {
					return s, true
				}
			}
		}
	}
	return models.Scene{}, false
}
