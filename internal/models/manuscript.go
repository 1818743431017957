// internal/models/manuscript.go
package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
)

// SceneStatus is the editorial state of a scene draft.
type SceneStatus string

const (
	SceneStatusDraft   SceneStatus = "draft"
	SceneStatusRevised SceneStatus = "revised"
	SceneStatusFinal   SceneStatus = "final"
)

// Valid reports whether s is one of the known statuses.
func (s SceneStatus) Valid() bool {
	switch s {
	case SceneStatusDraft, SceneStatusRevised, SceneStatusFinal:
		return true
	}
	return false
}

// Novel is the root aggregate: everything the editor knows about one manuscript.
type Novel struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Acts      []Act     `json:"acts"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Act is the top level of the manuscript tree.
type Act struct {
	ID       string    `json:"id"`
	NovelID  string    `json:"novelId,omitempty"`
	Title    string    `json:"title"`
	Order    int       `json:"order"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter belongs to exactly one Act, referenced by id.
type Chapter struct {
	ID     string  `json:"id"`
	ActID  string  `json:"actId"`
	Title  string  `json:"title"`
	Order  int     `json:"order"`
	Scenes []Scene `json:"scenes"`
}

// Scene is the leaf of the manuscript tree and carries the prose.
type Scene struct {
	ID             string      `json:"id"`
	ChapterID      string      `json:"chapterId"`
	Title          string      `json:"title,omitempty"`
	Order          int         `json:"order"`
	WordCount      int         `json:"wordCount"`
	Content        string      `json:"content,omitempty"`
	Status         SceneStatus `json:"status,omitempty"`
	POVCharacterID *string     `json:"povCharacterId,omitempty"`
	UpdatedAt      time.Time   `json:"updatedAt,omitempty"`
}

// DisplayTitle falls back to "Scene {order}" for untitled scenes.
func (s Scene) DisplayTitle() string {
	if strings.TrimSpace(s.Title) != "" {
		return s.Title
	}
	return fmt.Sprintf("Scene %d", s.Order)
}

// SortedActs returns a copy of acts ordered by Order. Equal orders keep input order.
func SortedActs(acts []Act) []Act {
	out := append([]Act(nil), acts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// SortedChapters returns a copy of chapters ordered by Order. Equal orders keep input order.
func SortedChapters(chapters []Chapter) []Chapter {
	out := append([]Chapter(nil), chapters...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// SortedScenes returns a copy of scenes ordered by Order. Equal orders keep input order.
func SortedScenes(scenes []Scene) []Scene {
	out := append([]Scene(nil), scenes...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// CountWords counts words in prose. Han and kana characters count one each since
// those scripts are written without spaces; everything else is split on whitespace.
// Punctuation only counts as part of a word it is attached to.
func CountWords(content string) int {
	n, inWord := 0, false
	for _, r := range content {
		switch {
		case IsUnspacedRune(r):
			n++
			inWord = false
		case unicode.IsSpace(r):
			inWord = false
		case inWord:
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
		default:
			n++
			inWord = true
		}
	}
	return n
}

// IsUnspacedRune reports whether r belongs to a script written without spaces
// between words (Han, Hiragana, Katakana).
func IsUnspacedRune(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana)
}

// WordCount sums the scene word counts of the whole novel.
func (n *Novel) WordCount() int {
	if n == nil {
		return 0
	}
	total := 0
	for _, a := range n.Acts {
		for _, c := range a.Chapters {
			for _, s := range c.Scenes {
				total += s.WordCount
			}
		}
	}
	return total
}

// Clone returns a deep copy of the novel so callers can hand it out without sharing slices.
func (n *Novel) Clone() *Novel {
	if n == nil {
		return nil
	}
	out := *n
	if n.Acts != nil {
		out.Acts = make([]Act, len(n.Acts))
		for i, a := range n.Acts {
			out.Acts[i] = a.Clone()
		}
	}
	return &out
}

// Clone deep-copies the act and its chapters.
func (a Act) Clone() Act {
	if a.Chapters != nil {
		chapters := make([]Chapter, len(a.Chapters))
		for i, c := range a.Chapters {
			chapters[i] = c.Clone()
		}
		a.Chapters = chapters
	}
	return a
}

// Clone deep-copies the chapter and its scenes.
func (c Chapter) Clone() Chapter {
	if c.Scenes != nil {
		scenes := make([]Scene, len(c.Scenes))
		for i, s := range c.Scenes {
			scenes[i] = s.Clone()
		}
		c.Scenes = scenes
	}
	return c
}

// Clone copies the scene, including its POV pointer.
func (s Scene) Clone() Scene {
	if s.POVCharacterID != nil {
		pov := *s.POVCharacterID
		s.POVCharacterID = &pov
	}
	return s
}
