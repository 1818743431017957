// internal/cli/cli_test.go
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Corphon/NovelForge/internal/api"
	"github.com/Corphon/NovelForge/internal/client"
	"github.com/Corphon/NovelForge/internal/models"
	"github.com/Corphon/NovelForge/internal/services"
	"github.com/Corphon/NovelForge/internal/storage"
	"github.com/Corphon/NovelForge/internal/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type harness struct {
	t       *testing.T
	srv     *httptest.Server
	client  *client.Client
	session string
	novelID string
	ids     map[string]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, k := range []string{"NOVEL_API_URL", "NOVEL_ID", "NOVEL_CONFIG", "NOVEL_SESSION", "NOVEL_VIEW_MODE"} {
		t.Setenv(k, "")
	}

	logger := utils.NewLogger(zap.NewNop())
	fs, err := storage.NewFileStorage(t.TempDir(), storage.Options{Logger: logger})
	require.NoError(t, err)
	locks := services.NewLockManager()
	ms := services.NewManuscriptService(fs, locks, logger)
	cs := services.NewCharacterService(fs, locks, ms, logger)
	stats := services.NewStatsService(fs, services.StatsOptions{Logger: logger})
	ms.SetWordRecorder(stats)
	router := api.NewRouter(api.NewHandler(ms, cs, stats, utils.NewMetricsCollector(), logger), api.RouterOptions{Debug: true, Logger: logger})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		_ = stats.Close()
		locks.Close()
		_ = fs.Close()
	})

	return &harness{
		t:       t,
		srv:     srv,
		client:  client.New(srv.URL, client.Options{HTTPClient: srv.Client(), Logger: logger}),
		session: filepath.Join(t.TempDir(), "session.yaml"),
		ids:     map[string]string{},
	}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	app := &App{HTTPClient: h.srv.Client()}
	cmd := newRootCmd(app)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", h.srv.URL, "--session", h.session}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, stderr, err := h.run("", args...)
	require.NoError(h.t, err, "novel %v\nstderr: %s", args, stderr)
	return out
}

// data runs a command with --json and returns the envelope's data.
func (h *harness) data(args ...string) map[string]any {
	h.t.Helper()
	out := h.mustRun(append([]string{"--json"}, args...)...)
	var env map[string]any
	require.NoError(h.t, json.Unmarshal([]byte(out), &env), out)
	data, ok := env["data"].(map[string]any)
	require.True(h.t, ok, "data is not an object: %s", out)
	return data
}

// seed builds Act1{Ch1{Sc1,Sc2},Ch2{Sc3}} with CLI commands only. Every add
// selects what it created, so each parent defaults from the session.
func (h *harness) seed() {
	h.t.Helper()
	h.novelID = h.data("novels", "create", "--title", "Harbour Lights", "--use")["id"].(string)
	steps := [][2]string{
		{"act", "Act1"},
		{"chapter", "Ch1"}, {"scene", "Sc1"}, {"scene", "Sc2"},
		{"chapter", "Ch2"}, {"scene", "Sc3"},
	}
	for _, s := range steps {
		h.ids[s[1]] = h.data("add", s[0], s[1])["id"].(string)
	}
}

func (h *harness) structure() *models.Novel {
	h.t.Helper()
	n, err := h.client.GetStructure(context.Background(), h.novelID)
	require.NoError(h.t, err)
	return n
}

func TestSeedAndTree(t *testing.T) {
	h := newHarness(t)
	h.seed()

	n := h.structure()
	require.Len(t, n.Acts, 1)
	require.Len(t, n.Acts[0].Chapters, 2)
	assert.Len(t, n.Acts[0].Chapters[0].Scenes, 2)
	assert.Equal(t, h.ids["Sc3"], n.Acts[0].Chapters[1].Scenes[0].ID)

	out := h.mustRun("tree")
	assert.Contains(t, out, "Harbour Lights (0 words)")
	assert.Contains(t, out, "1. Act1")
	assert.Contains(t, out, "> 1. Sc3 (0 words)  ["+h.ids["Sc3"]+"]")
	assert.NotContains(t, out, "> 2. Sc2")
}

func TestNavigationPersistsInSession(t *testing.T) {
	h := newHarness(t)
	h.seed()

	h.mustRun("select", h.ids["Sc1"])
	out := h.mustRun("next")
	assert.Contains(t, out, "Act1 / Ch1 / Sc2")
	assert.Contains(t, out, "(scene 2 of 2)")

	s, err := LoadSession(h.session)
	require.NoError(t, err)
	assert.Equal(t, h.novelID, s.NovelID)
	assert.Equal(t, h.ids["Sc2"], s.SceneID)
	assert.Equal(t, h.ids["Ch1"], s.ChapterID)

	out = h.mustRun("next")
	assert.Contains(t, out, "Ch2 / Sc3")

	sel := h.data("prev", "--level", "chapter")
	assert.Equal(t, h.ids["Ch1"], sel["chapterId"])

	_, stderr, err := h.run("", "prev", "--level", "act")
	assert.Error(t, err)
	assert.Contains(t, stderr, "no previous act")
}

func TestMoveDownStepsIntoNextChapter(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out := h.mustRun("move", h.ids["Sc2"], "--down")
	assert.Contains(t, out, "moved PUT /scenes/"+h.ids["Sc2"]+"/reorder newOrder=1 newParent="+h.ids["Ch2"])

	n := h.structure()
	ch1, ch2 := n.Acts[0].Chapters[0], n.Acts[0].Chapters[1]
	require.Len(t, ch1.Scenes, 1)
	require.Len(t, ch2.Scenes, 2)
	assert.Equal(t, h.ids["Sc2"], ch2.Scenes[0].ID)
	assert.Equal(t, 2, ch2.Scenes[1].Order)
}

func TestMoveOntoDryRunSendsNothing(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out := h.mustRun("--json", "move", h.ids["Sc1"], "--onto", h.ids["Sc3"], "--dry-run")
	var env struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "scene", env.Data[0]["type"])
	assert.Equal(t, float64(1), env.Data[0]["newOrder"])
	assert.Equal(t, h.ids["Ch2"], env.Data[0]["newParentId"])

	assert.Len(t, h.structure().Acts[0].Chapters[0].Scenes, 2)
}

func TestMoveNeedsADirection(t *testing.T) {
	h := newHarness(t)
	h.seed()

	_, stderr, err := h.run("", "move", h.ids["Sc1"])
	assert.Error(t, err)
	assert.Contains(t, stderr, "VALIDATION_ERROR")
}

func TestRenameWriteShow(t *testing.T) {
	h := newHarness(t)
	h.seed()

	h.mustRun("rename", h.ids["Ch1"], "Low", "Tide")
	assert.Equal(t, "Low Tide", h.structure().Acts[0].Chapters[0].Title)

	out, stderr, err := h.run("The gulls went quiet.", "write", h.ids["Sc1"])
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "saved Sc1 (4 words)")

	out = h.mustRun("show", h.ids["Sc1"])
	assert.Contains(t, out, "# Sc1")
	assert.Contains(t, out, "The gulls went quiet.")

	out = h.mustRun("show", h.ids["Ch1"])
	assert.Contains(t, out, "# Low Tide")
	assert.Contains(t, out, "1. Sc1 (4 words)")

	_, _, err = h.run("", "rename", h.ids["Act1"], "  ")
	assert.Error(t, err)
}

func TestDeleteAndWipe(t *testing.T) {
	h := newHarness(t)
	h.seed()

	h.mustRun("delete", h.ids["Sc1"])
	ch1 := h.structure().Acts[0].Chapters[0]
	require.Len(t, ch1.Scenes, 1)
	assert.Equal(t, 1, ch1.Scenes[0].Order)

	_, stderr, err := h.run("", "wipe")
	assert.Error(t, err)
	assert.Contains(t, stderr, "--yes")

	h.mustRun("wipe", "--yes")
	assert.Empty(t, h.structure().Acts)
	assert.Contains(t, h.mustRun("tree"), "(empty)")
}

func TestCharacterCommands(t *testing.T) {
	h := newHarness(t)
	h.seed()

	mara := h.data("characters", "add", "--name", "Mara", "--alias", "the captain")
	maraID := mara["id"].(string)

	_, stderr, err := h.run("Mara waited. The captain always waited.", "write", h.ids["Sc2"])
	require.NoError(t, err, stderr)

	out := h.mustRun("characters", "mentions", maraID)
	assert.Contains(t, out, "Sc2 (2x)")

	h.mustRun("characters", "pov", h.ids["Sc2"], maraID)
	out = h.mustRun("characters", "list")
	assert.Contains(t, out, "Mara")
	assert.Regexp(t, `Mara\s+1`, out)

	_, stderr, err = h.run("", "characters", "add", "--name", "MARA")
	assert.Error(t, err)
	assert.Contains(t, stderr, "CONFLICT")
}

func TestStatsCountWrittenWords(t *testing.T) {
	h := newHarness(t)
	h.seed()

	_, stderr, err := h.run("one two three", "write", h.ids["Sc1"])
	require.NoError(t, err, stderr)
	_, stderr, err = h.run(" four", "write", "--append", h.ids["Sc1"])
	require.NoError(t, err, stderr)

	out := h.mustRun("stats")
	assert.Contains(t, out, "total 4 words, today +4, this month +4")

	st := h.data("stats")
	assert.Equal(t, float64(4), st["totalWords"])
}

func TestNoNovelSelected(t *testing.T) {
	h := newHarness(t)

	_, stderr, err := h.run("", "tree")
	assert.Error(t, err)
	assert.Contains(t, stderr, "no novel selected")
}

func TestNovelsList(t *testing.T) {
	h := newHarness(t)
	h.seed()

	out := h.mustRun("novels", "list")
	assert.Contains(t, out, h.novelID)
	assert.Contains(t, out, "Harbour Lights *")
}

func TestNovelsDelete(t *testing.T) {
	h := newHarness(t)
	h.seed()

	_, stderr, err := h.run("", "novels", "delete", h.novelID)
	assert.Error(t, err)
	assert.Contains(t, stderr, "--yes")

	out := h.mustRun("novels", "delete", h.novelID, "--yes")
	assert.Contains(t, out, "deleted novel "+h.novelID)
	assert.Contains(t, h.mustRun("novels", "list"), "no novels")

	_, stderr, err = h.run("", "tree")
	assert.Error(t, err)
	assert.Contains(t, stderr, "no novel selected")

	_, stderr, err = h.run("", "novels", "delete", h.novelID, "--yes")
	assert.Error(t, err)
	assert.Contains(t, stderr, "NOT_FOUND")
}

func TestSessionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")

	s, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, Session{}, *s)

	s.NovelID, s.SceneID, s.ViewMode = "n1", "s1", "grid"
	require.NoError(t, s.Save(path))

	loaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, *s, *loaded)
}
