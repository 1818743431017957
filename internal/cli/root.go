// internal/cli/root.go
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Corphon/NovelForge/internal/client"
	"github.com/Corphon/NovelForge/internal/config"
	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/manuscript"
	"github.com/Corphon/NovelForge/internal/utils"
)

type App struct {
	APIURL      string
	NovelID     string
	ConfigPath  string
	SessionPath string
	Debug       bool
	JSON        bool
	Timeout     time.Duration

	// HTTPClient overrides the transport, for tests.
	HTTPClient *http.Client

	cfg     *config.Config
	logger  *utils.Logger
	metrics *utils.MetricsCollector
	session *Session
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "novel",
		Short:        "Manuscript editor for NovelForge novels",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Pick a novel and look at its outline
  novel novels list
  novel --novel <id> tree

  # Walk the manuscript
  novel next
  novel prev --level chapter

  # Reorganise
  novel move <scene-id> --down
  novel move <chapter-id> --onto <act-id>
  novel rename <id> "A better title"

  # Interactive editor
  novel tui
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if app.logger != nil {
			if app.metrics != nil {
				app.logger.Debug("client metrics", app.metrics.GetMetrics())
			}
			_ = app.logger.Sync()
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api", envOr("NOVEL_API_URL", ""), "API base URL (default from config: http://localhost:8080)")
	cmd.PersistentFlags().StringVar(&app.NovelID, "novel", envOr("NOVEL_ID", ""), "Novel id (default: the novel of the current session)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("NOVEL_CONFIG", ""), "YAML config profile")
	cmd.PersistentFlags().StringVar(&app.SessionPath, "session", envOr("NOVEL_SESSION", ""), "Session file remembering the current selection")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Log requests to stderr")
	cmd.PersistentFlags().BoolVar(&app.JSON, "json", false, "Print JSON instead of text")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (default from config)")

	cmd.AddCommand(newNovelsCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newSelectCmd(app))
	cmd.AddCommand(newStepCmd(app, "next", 1))
	cmd.AddCommand(newStepCmd(app, "prev", -1))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newDeleteCmd(app))
	cmd.AddCommand(newWipeCmd(app))
	cmd.AddCommand(newWriteCmd(app))
	cmd.AddCommand(newCharactersCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// init resolves configuration: config file and environment, then flags.
func (app *App) init(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if app.ConfigPath != "" {
		cfg, err = config.LoadFile(app.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return writeErr(cmd, err)
	}
	if app.APIURL != "" {
		cfg.APIBaseURL = app.APIURL
	}
	if app.NovelID != "" {
		cfg.NovelID = app.NovelID
	}
	if app.Timeout > 0 {
		cfg.RequestTimeout = app.Timeout
	}
	app.cfg = cfg

	if app.Debug {
		zl, err := zap.NewDevelopment()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.logger = utils.NewLogger(zl)
	} else {
		app.logger = utils.NewLogger(zap.NewNop())
	}
	app.metrics = utils.NewMetricsCollector()

	if app.SessionPath == "" {
		app.SessionPath = defaultSessionPath()
	}
	app.session, err = LoadSession(app.SessionPath)
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}

func (app *App) client() *client.Client {
	return client.New(app.cfg.APIBaseURL, client.Options{
		Timeout:    app.cfg.RequestTimeout,
		HTTPClient: app.HTTPClient,
		Logger:     app.logger,
		Metrics:    app.metrics,
	})
}

// novelID picks the flag/config novel first, then the session's.
func (app *App) novelID() (string, error) {
	if app.cfg.NovelID != "" {
		return app.cfg.NovelID, nil
	}
	if app.session.NovelID != "" {
		return app.session.NovelID, nil
	}
	return "", errors.New("no novel selected; pass --novel or run `novel novels use <id>`")
}

// openEditor loads the novel and restores the session's selection when it belongs
// to the same novel.
func (app *App) openEditor(ctx context.Context) (*manuscript.Editor, error) {
	novelID, err := app.novelID()
	if err != nil {
		return nil, err
	}
	mode := manuscript.ViewMode(app.cfg.ViewMode)
	if app.session.NovelID == novelID && app.session.ViewMode != "" {
		mode = manuscript.ViewMode(app.session.ViewMode)
	}
	ed := manuscript.NewEditor(app.client(), novelID, manuscript.Options{ViewMode: mode, Logger: app.logger})
	if err := ed.Load(ctx); err != nil {
		ed.Close()
		return nil, err
	}
	if app.session.NovelID == novelID {
		app.session.Restore(ed)
	}
	return ed, nil
}

// remember stores the editor's selection as the session.
func (app *App) remember(ed *manuscript.Editor) error {
	app.session.Capture(ed)
	return app.session.Save(app.SessionPath)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// writeOut prints v as a {"data": v} JSON envelope with --json, otherwise runs text.
func writeOut(cmd *cobra.Command, app *App, v any, text func(w io.Writer)) error {
	if app.JSON || text == nil {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"data": v})
	}
	text(cmd.OutOrStdout())
	return nil
}

func writeErr(cmd *cobra.Command, err error) error {
	msg := apperrors.UserMessage(err)
	if code := apperrors.CodeOf(err); code != "UNKNOWN_ERROR" {
		msg = fmt.Sprintf("%s (%s)", msg, code)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), msg)
	return err
}
