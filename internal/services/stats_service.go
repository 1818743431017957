// internal/services/stats_service.go
package services

import (
	"errors"
	"maps"
	"sync"
	"time"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
	"github.com/Corphon/NovelForge/internal/storage"
	"github.com/Corphon/NovelForge/internal/utils"
)

const (
	statsFile      = "stats.json"
	dayLayout      = "2006-01-02"
	monthLayout    = "2006-01"
	dailyRetention = 90 * 24 * time.Hour
)

// StatsService keeps a words-written history per novel. Updates land in memory
// and are flushed by a background saver, on Flush, and on Close.
type StatsService struct {
	storage *storage.FileStorage
	logger  *utils.Logger
	now     func() time.Time

	mutex sync.Mutex
	stats map[string]*models.WritingStats
	dirty map[string]bool

	saveInterval time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
	done         chan struct{}
}

// StatsOptions tunes NewStatsService.
type StatsOptions struct {
	// SaveInterval is how often dirty stats are written; 0 means 30s.
	SaveInterval time.Duration
	Logger       *utils.Logger
}

// NewStatsService creates the service and starts its periodic saver.
func NewStatsService(fs *storage.FileStorage, opts StatsOptions) *StatsService {
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = utils.GetLogger()
	}
	s := &StatsService{
		storage:      fs,
		logger:       opts.Logger,
		now:          time.Now,
		stats:        make(map[string]*models.WritingStats),
		dirty:        make(map[string]bool),
		saveInterval: opts.SaveInterval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go s.periodicSave()
	return s
}

// statsUnlocked returns the cached stats of a novel, loading them on first use.
func (s *StatsService) statsUnlocked(novelID string) (*models.WritingStats, error) {
	if st, ok := s.stats[novelID]; ok {
		return st, nil
	}
	st := &models.WritingStats{NovelID: novelID}
	if err := s.storage.LoadJSONFile(novelDir(novelID), statsFile, st); err != nil && !errors.Is(err, storage.ErrNotExist) {
		return nil, apperrors.NewProcessingError("load writing stats", err)
	}
	if st.DailyWords == nil {
		st.DailyWords = make(map[string]int)
	}
	if st.MonthlyWords == nil {
		st.MonthlyWords = make(map[string]int)
	}
	s.stats[novelID] = st
	return st, nil
}

// RecordWords adds a net word delta to today's and this month's totals.
func (s *StatsService) RecordWords(novelID string, delta int) {
	if delta == 0 || validNovelID(novelID) != nil {
		return
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	st, err := s.statsUnlocked(novelID)
	if err != nil {
		s.logger.Warn("writing stats unavailable", map[string]interface{}{"novel_id": novelID, "error": err})
		return
	}
	now := s.now().UTC()
	st.DailyWords[now.Format(dayLayout)] += delta
	st.MonthlyWords[now.Format(monthLayout)] += delta
	st.LastUpdated = now
	pruneDaily(st.DailyWords, now)
	s.dirty[novelID] = true
}

// pruneDaily drops daily entries older than the retention window. Monthly
// totals are kept forever.
func pruneDaily(daily map[string]int, now time.Time) {
	cutoff := now.Add(-dailyRetention).Format(dayLayout)
	for day := range daily {
		if day < cutoff {
			delete(daily, day)
		}
	}
}

// Get returns a copy of a novel's stats with today's and this month's totals
// filled in. TotalWords is left to the caller.
func (s *StatsService) Get(novelID string) (*models.WritingStats, error) {
	if err := validNovelID(novelID); err != nil {
		return nil, err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	st, err := s.statsUnlocked(novelID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	out := *st
	out.DailyWords = maps.Clone(st.DailyWords)
	out.MonthlyWords = maps.Clone(st.MonthlyWords)
	out.TodayWords = st.DailyWords[now.Format(dayLayout)]
	out.MonthWords = st.MonthlyWords[now.Format(monthLayout)]
	return &out, nil
}

// Forget drops a novel's cached stats without saving them.
func (s *StatsService) Forget(novelID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.stats, novelID)
	delete(s.dirty, novelID)
}

// Flush writes every dirty novel's stats now.
func (s *StatsService) Flush() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.flushUnlocked()
}

func (s *StatsService) flushUnlocked() error {
	var errs []error
	for novelID := range s.dirty {
		if err := s.storage.SaveJSONFile(novelDir(novelID), statsFile, s.stats[novelID]); err != nil {
			errs = append(errs, err)
			continue
		}
		delete(s.dirty, novelID)
	}
	return errors.Join(errs...)
}

func (s *StatsService) periodicSave() {
	defer close(s.done)
	ticker := time.NewTicker(s.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if err := s.Flush(); err != nil {
				s.logger.Warn("periodic stats save failed", map[string]interface{}{"error": err})
			}
		}
	}
}

// Close stops the saver and writes anything still pending.
func (s *StatsService) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
	return s.Flush()
}
