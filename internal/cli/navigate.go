// internal/cli/navigate.go
package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/manuscript"
)

// selectionView is what select/next/prev print.
type selectionView struct {
	ActID      string                `json:"actId"`
	ChapterID  string                `json:"chapterId"`
	SceneID    string                `json:"sceneId"`
	Navigation manuscript.Navigation `json:"navigation"`
}

func newSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Select an act, chapter or scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			p, ok := ed.Locate(args[0])
			if !ok {
				return writeErr(cmd, apperrors.NewNotFoundError(fmt.Sprintf("no act, chapter or scene with id %s", args[0]), nil))
			}
			switch p.Level {
			case manuscript.ItemAct:
				ed.SelectAct(args[0])
			case manuscript.ItemChapter:
				ed.SelectChapter(args[0])
			default:
				ed.SelectScene(args[0])
			}
			if err := app.remember(ed); err != nil {
				return writeErr(cmd, err)
			}
			return printSelection(cmd, app, ed, p.Level)
		},
	}
}

func newStepCmd(app *App, name string, delta int) *cobra.Command {
	var level string
	short := "Select the next scene, chapter or act"
	if delta < 0 {
		short = "Select the previous scene, chapter or act"
	}
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			itemType, err := parseLevel(level)
			if err != nil {
				return writeErr(cmd, err)
			}
			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			if !step(ed, itemType, delta) {
				direction := "next"
				if delta < 0 {
					direction = "previous"
				}
				return writeErr(cmd, fmt.Errorf("no %s %s", direction, itemType))
			}
			if err := app.remember(ed); err != nil {
				return writeErr(cmd, err)
			}
			return printSelection(cmd, app, ed, itemType)
		},
	}
	cmd.Flags().StringVar(&level, "level", "scene", "Level to move at (scene|chapter|act)")
	return cmd
}

func parseLevel(s string) (manuscript.ItemType, error) {
	switch manuscript.ItemType(s) {
	case manuscript.ItemScene, manuscript.ItemChapter, manuscript.ItemAct:
		return manuscript.ItemType(s), nil
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("unknown level %q (want scene, chapter or act)", s), nil)
}

func step(ed *manuscript.Editor, level manuscript.ItemType, delta int) bool {
	switch level {
	case manuscript.ItemAct:
		if delta > 0 {
			return ed.NextAct()
		}
		return ed.PreviousAct()
	case manuscript.ItemChapter:
		if delta > 0 {
			return ed.NextChapter()
		}
		return ed.PreviousChapter()
	}
	if delta > 0 {
		return ed.NextScene()
	}
	return ed.PreviousScene()
}

func navigation(ed *manuscript.Editor, level manuscript.ItemType) manuscript.Navigation {
	switch level {
	case manuscript.ItemAct:
		return ed.ActNavigation()
	case manuscript.ItemChapter:
		return ed.ChapterNavigation()
	}
	return ed.SceneNavigation()
}

func printSelection(cmd *cobra.Command, app *App, ed *manuscript.Editor, level manuscript.ItemType) error {
	sel := ed.Selection()
	actID, chapterID, sceneID := sel.IDs()
	view := selectionView{ActID: actID, ChapterID: chapterID, SceneID: sceneID, Navigation: navigation(ed, level)}
	return writeOut(cmd, app, view, func(w io.Writer) {
		var parts []string
		if sel.Act != nil {
			parts = append(parts, sel.Act.Title)
		}
		if sel.Chapter != nil {
			parts = append(parts, sel.Chapter.Title)
		}
		if sel.Scene != nil {
			parts = append(parts, sel.Scene.DisplayTitle())
		}
		if len(parts) == 0 {
			fmt.Fprintln(w, "nothing selected")
			return
		}
		nav := view.Navigation
		fmt.Fprintf(w, "%s  (%s %d of %d)\n", strings.Join(parts, " / "), nav.Level, nav.Position(), len(nav.Items))
	})
}
