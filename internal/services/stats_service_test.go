// internal/services/stats_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Corphon/NovelForge/internal/models"
	"github.com/Corphon/NovelForge/internal/storage"
	"github.com/Corphon/NovelForge/internal/utils"
)

func newStatsFixture(t *testing.T) (*StatsService, *storage.FileStorage, *time.Time) {
	t.Helper()
	logger := utils.NewLogger(zap.NewNop())
	fs, err := storage.NewFileStorage(t.TempDir(), storage.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })

	now := time.Date(2026, 3, 31, 22, 0, 0, 0, time.UTC)
	s := NewStatsService(fs, StatsOptions{SaveInterval: time.Hour, Logger: logger})
	s.now = func() time.Time { return now }
	t.Cleanup(func() { _ = s.Close() })
	return s, fs, &now
}

func TestStatsRecordsNetWordsPerDayAndMonth(t *testing.T) {
	s, _, now := newStatsFixture(t)

	s.RecordWords("n1", 120)
	s.RecordWords("n1", -20)
	*now = now.Add(4 * time.Hour)
	s.RecordWords("n1", 50)
	s.RecordWords("n1", 0)

	st, err := s.Get("n1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2026-03-31": 100, "2026-04-01": 50}, st.DailyWords)
	assert.Equal(t, map[string]int{"2026-03": 100, "2026-04": 50}, st.MonthlyWords)
	assert.Equal(t, 50, st.TodayWords)
	assert.Equal(t, 50, st.MonthWords)

	st.DailyWords["2026-04-01"] = 9999
	again, err := s.Get("n1")
	require.NoError(t, err)
	assert.Equal(t, 50, again.DailyWords["2026-04-01"])
}

func TestStatsPruneOldDays(t *testing.T) {
	s, _, now := newStatsFixture(t)

	s.RecordWords("n1", 10)
	*now = now.Add(100 * 24 * time.Hour)
	s.RecordWords("n1", 5)

	st, err := s.Get("n1")
	require.NoError(t, err)
	assert.Len(t, st.DailyWords, 1)
	assert.Len(t, st.MonthlyWords, 2)
}

func TestStatsFlushPersists(t *testing.T) {
	s, fs, _ := newStatsFixture(t)

	s.RecordWords("n1", 42)
	assert.False(t, fs.FileExists(novelDir("n1"), statsFile))
	require.NoError(t, s.Flush())

	var stored models.WritingStats
	require.NoError(t, fs.LoadJSONFile(novelDir("n1"), statsFile, &stored))
	assert.Equal(t, 42, stored.DailyWords["2026-03-31"])

	reloaded := NewStatsService(fs, StatsOptions{SaveInterval: time.Hour, Logger: utils.NewLogger(zap.NewNop())})
	defer reloaded.Close()
	st, err := reloaded.Get("n1")
	require.NoError(t, err)
	assert.Equal(t, 42, st.MonthlyWords["2026-03"])
}

func TestStatsForgetDropsUnsavedWords(t *testing.T) {
	s, fs, _ := newStatsFixture(t)

	s.RecordWords("n1", 42)
	s.Forget("n1")
	require.NoError(t, s.Flush())
	assert.False(t, fs.DirExists(novelDir("n1")))

	st, err := s.Get("n1")
	require.NoError(t, err)
	assert.Empty(t, st.DailyWords)
}

func TestStatsRejectBadNovelID(t *testing.T) {
	s, _, _ := newStatsFixture(t)

	s.RecordWords("../x", 10)
	_, err := s.Get("../x")
	assert.Error(t, err)
}

func TestSceneEditsFeedStats(t *testing.T) {
	f := newFixture(t)
	s, _, _ := newStatsFixture(t)
	f.manuscript.SetWordRecorder(s)

	content := "The tide turned early."
	_, err := f.manuscript.UpdateScene(f.novel.ID, f.ids["Sc1"], models.UpdateSceneRequest{Content: &content})
	require.NoError(t, err)
	title := "Renamed"
	_, err = f.manuscript.UpdateScene(f.novel.ID, f.ids["Sc1"], models.UpdateSceneRequest{Title: &title})
	require.NoError(t, err)

	st, err := s.Get(f.novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, st.TodayWords)
}
