// internal/cli/novels.go
package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
)

func newNovelsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "novels",
		Short: "Novel commands",
	}
	cmd.AddCommand(newNovelsListCmd(app))
	cmd.AddCommand(newNovelsCreateCmd(app))
	cmd.AddCommand(newNovelsUseCmd(app))
	cmd.AddCommand(newNovelsDeleteCmd(app))
	return cmd
}

func newNovelsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List novels on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			novels, err := app.client().ListNovels(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, novels, func(w io.Writer) {
				if len(novels) == 0 {
					fmt.Fprintln(w, "no novels")
					return
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tACTS\tSCENES\tWORDS")
				for _, n := range novels {
					marker := ""
					if n.ID == app.session.NovelID {
						marker = " *"
					}
					fmt.Fprintf(tw, "%s\t%s%s\t%d\t%d\t%d\n", n.ID, n.Title, marker, n.Acts, n.Scenes, n.WordCount)
				}
				_ = tw.Flush()
			})
		},
	}
}

func newNovelsCreateCmd(app *App) *cobra.Command {
	var (
		title string
		use   bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a novel",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.client().CreateNovel(cmd.Context(), strings.TrimSpace(title))
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				*app.session = Session{NovelID: n.ID}
				if err := app.session.Save(app.SessionPath); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, n, func(w io.Writer) {
				fmt.Fprintf(w, "created novel %s (%s)\n", n.Title, n.ID)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Novel title")
	cmd.Flags().BoolVar(&use, "use", false, "Make it the current novel")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newNovelsUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <novel-id>",
		Short: "Make a novel current and select its first scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.cfg.NovelID = args[0]
			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()
			if err := app.remember(ed); err != nil {
				return writeErr(cmd, err)
			}
			n := ed.Novel()
			return writeOut(cmd, app, app.session, func(w io.Writer) {
				fmt.Fprintf(w, "using %s (%d words)\n", n.Title, n.WordCount())
			})
		},
	}
}

func newNovelsDeleteCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <novel-id>",
		Short: "Delete a novel with its characters and stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return writeErr(cmd, apperrors.NewValidationError("delete removes the novel for good; pass --yes to confirm", nil))
			}
			id := args[0]
			if err := app.client().DeleteNovel(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			if app.session.NovelID == id {
				*app.session = Session{}
				if err := app.session.Save(app.SessionPath); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]string{"id": id}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted novel %s\n", id)
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm")
	return cmd
}

func newStatsCmd(app *App) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show words written today, this month, and per day",
		RunE: func(cmd *cobra.Command, args []string) error {
			novelID, err := app.novelID()
			if err != nil {
				return writeErr(cmd, err)
			}
			stats, err := app.client().WritingStats(cmd.Context(), novelID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, stats, func(w io.Writer) {
				fmt.Fprintf(w, "total %d words, today %+d, this month %+d\n", stats.TotalWords, stats.TodayWords, stats.MonthWords)
				dates := slices.Sorted(maps.Keys(stats.DailyWords))
				if days >= 0 && len(dates) > days {
					dates = dates[len(dates)-days:]
				}
				for _, d := range dates {
					fmt.Fprintf(w, "  %s  %+d\n", d, stats.DailyWords[d])
				}
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "How many recent days to list")
	return cmd
}
