// internal/models/stats.go
package models

import "time"

// WritingStats is the words-written history of one novel. Daily keys are
// 2006-01-02 dates and monthly keys are 2006-01 months, both UTC. Counts are
// net: cutting prose lowers them.
type WritingStats struct {
	NovelID      string         `json:"novelId"`
	TotalWords   int            `json:"totalWords"`
	TodayWords   int            `json:"todayWords"`
	MonthWords   int            `json:"monthWords"`
	DailyWords   map[string]int `json:"dailyWords"`
	MonthlyWords map[string]int `json:"monthlyWords"`
	LastUpdated  time.Time      `json:"lastUpdated"`
}
