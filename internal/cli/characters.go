// internal/cli/characters.go
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Corphon/NovelForge/internal/models"
)

func newCharactersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "characters",
		Aliases: []string{"cast"},
		Short:   "Character commands",
	}
	cmd.AddCommand(newCharactersListCmd(app))
	cmd.AddCommand(newCharactersAddCmd(app))
	cmd.AddCommand(newCharactersMentionsCmd(app))
	cmd.AddCommand(newCharactersPOVCmd(app))
	return cmd
}

func newCharactersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the cast with relationships and POV scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			novelID, err := app.novelID()
			if err != nil {
				return writeErr(cmd, err)
			}
			cast, err := app.client().LoadCast(cmd.Context(), novelID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, cast, func(w io.Writer) {
				if len(cast.Characters) == 0 {
					fmt.Fprintln(w, "no characters")
					return
				}
				povScenes := map[string]int{}
				for _, a := range cast.POVAssignments {
					povScenes[a.CharacterID]++
				}
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tROLE\tPOV SCENES")
				for _, c := range cast.Characters {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Role, povScenes[c.ID])
				}
				_ = tw.Flush()
				for _, r := range cast.Relationships {
					fmt.Fprintf(w, "%s -[%s]-> %s\n", cast.CharacterName(r.FromID), r.Kind, cast.CharacterName(r.ToID))
				}
			})
		},
	}
}

func newCharactersAddCmd(app *App) *cobra.Command {
	var (
		name        string
		role        string
		description string
		aliases     []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a character",
		RunE: func(cmd *cobra.Command, args []string) error {
			novelID, err := app.novelID()
			if err != nil {
				return writeErr(cmd, err)
			}
			c, err := app.client().CreateCharacter(cmd.Context(), novelID, models.CreateCharacterRequest{
				Name:        strings.TrimSpace(name),
				Aliases:     aliases,
				Role:        role,
				Description: description,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, c, func(w io.Writer) {
				fmt.Fprintf(w, "added %s [%s]\n", c.Name, c.ID)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Character name")
	cmd.Flags().StringVar(&role, "role", "", "Role in the story")
	cmd.Flags().StringVar(&description, "description", "", "Short description")
	cmd.Flags().StringSliceVar(&aliases, "alias", nil, "Other names the character goes by (repeatable)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCharactersMentionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mentions <character-id>",
		Short: "List the scenes that mention a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			novelID, err := app.novelID()
			if err != nil {
				return writeErr(cmd, err)
			}
			mentions, err := app.client().Mentions(cmd.Context(), novelID, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, mentions, func(w io.Writer) {
				if len(mentions) == 0 {
					fmt.Fprintln(w, "no mentions")
					return
				}
				for _, m := range mentions {
					fmt.Fprintf(w, "%s (%dx)  %s\n", m.SceneTitle, m.Count, m.Excerpt)
				}
			})
		},
	}
}

func newCharactersPOVCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pov <scene-id> [character-id]",
		Short: "Set a scene's point-of-view character (omit the character to clear it)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sceneID, characterID := args[0], ""
			if len(args) == 2 {
				characterID = args[1]
			}
			ed, err := app.openEditor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer ed.Close()

			if err := ed.SetScenePOV(cmd.Context(), sceneID, characterID); err != nil {
				return writeErr(cmd, err)
			}
			assignment := models.POVAssignment{SceneID: sceneID, CharacterID: characterID}
			return writeOut(cmd, app, assignment, func(w io.Writer) {
				if characterID == "" {
					fmt.Fprintf(w, "cleared POV of %s\n", sceneID)
					return
				}
				fmt.Fprintf(w, "%s is now told by %s\n", sceneID, characterID)
			})
		},
	}
}
