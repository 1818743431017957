package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Corphon/NovelForge/internal/config"
	"github.com/Corphon/NovelForge/internal/di"
	"github.com/Corphon/NovelForge/internal/services"
	"github.com/Corphon/NovelForge/internal/utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockServer struct {
	once           sync.Once
	stopped        chan struct{}
	ShutdownCalled bool
}

func newMockServer() *mockServer {
	return &mockServer{stopped: make(chan struct{})}
}

func (m *mockServer) ListenAndServe() error {
	<-m.stopped
	return http.ErrServerClosed
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	m.ShutdownCalled = true
	m.once.Do(func() { close(m.stopped) })
	return nil
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	cfg.LogDir = ""
	cfg.RateLimit = 0
	return cfg
}

func TestInitServicesRegistersEverything(t *testing.T) {
	a := New(testConfig(t), di.NewContainer(), utils.NewLogger(zap.NewNop()))
	require.NoError(t, a.InitServices())
	defer a.Cleanup()

	for _, name := range []string{di.Logger, di.Metrics, di.Storage, di.Locks, di.ManuscriptService, di.CharacterService, di.StatsService} {
		assert.NotNil(t, a.Container().Get(name), name)
	}
	_, ok := di.Lookup[*services.ManuscriptService](a.Container(), di.ManuscriptService)
	assert.True(t, ok)

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunStopsOnSignal(t *testing.T) {
	a := New(testConfig(t), di.NewContainer(), utils.NewLogger(zap.NewNop()))
	require.NoError(t, a.InitServices())
	srv := newMockServer()
	a.server = srv

	go func() {
		time.Sleep(50 * time.Millisecond)
		a.stopChan <- syscall.SIGTERM
	}()

	require.NoError(t, a.Run())
	assert.True(t, srv.ShutdownCalled)
}

func TestRunRequiresInit(t *testing.T) {
	a := New(testConfig(t), di.NewContainer(), utils.NewLogger(zap.NewNop()))
	assert.Error(t, a.Run())
}
