// internal/models/requests.go
package models

import (
	"encoding/json"
	"time"
)

// Envelope is the response wrapper every /api/novels endpoint returns.
type Envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Code      string          `json:"code,omitempty"`
	Message   string          `json:"message,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// RenameRequest is the body of PUT /acts|chapters|scenes/{id}.
type RenameRequest struct {
	Title string `json:"title"`
}

// ReorderActRequest is the body of PUT /acts/{id}/reorder.
type ReorderActRequest struct {
	NewOrder int `json:"newOrder"`
}

// ReorderChapterRequest is the body of PUT /chapters/{id}/reorder.
// NewActID is only set when the chapter moves to another act.
type ReorderChapterRequest struct {
	NewOrder int    `json:"newOrder"`
	NewActID string `json:"newActId,omitempty"`
}

// ReorderSceneRequest is the body of PUT /scenes/{id}/reorder.
// NewChapterID is only set when the scene moves to another chapter.
type ReorderSceneRequest struct {
	NewOrder     int    `json:"newOrder"`
	NewChapterID string `json:"newChapterId,omitempty"`
}

type CreateNovelRequest struct {
	Title string `json:"title"`
}

type CreateActRequest struct {
	Title string `json:"title"`
}

type CreateChapterRequest struct {
	ActID string `json:"actId"`
	Title string `json:"title"`
}

type CreateSceneRequest struct {
	ChapterID string `json:"chapterId"`
	Title     string `json:"title,omitempty"`
}

// UpdateSceneRequest carries a partial scene update; nil fields are left untouched.
// Title is handled by RenameRequest semantics when set.
type UpdateSceneRequest struct {
	Title          *string      `json:"title,omitempty"`
	Content        *string      `json:"content,omitempty"`
	Status         *SceneStatus `json:"status,omitempty"`
	POVCharacterID *string      `json:"povCharacterId,omitempty"`
}

// NovelSummary is one row of GET /api/novels.
type NovelSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Acts      int       `json:"acts"`
	Scenes    int       `json:"scenes"`
	WordCount int       `json:"wordCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}
