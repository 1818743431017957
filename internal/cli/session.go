// internal/cli/session.go
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Corphon/NovelForge/internal/manuscript"
)

// Session is the selection carried between CLI invocations.
type Session struct {
	NovelID   string `yaml:"novel_id"`
	ActID     string `yaml:"act_id,omitempty"`
	ChapterID string `yaml:"chapter_id,omitempty"`
	SceneID   string `yaml:"scene_id,omitempty"`
	ViewMode  string `yaml:"view_mode,omitempty"`
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".novelforge", "session.yaml")
	}
	return filepath.Join(dir, "novelforge", "session.yaml")
}

// LoadSession reads the session file. A missing file is an empty session.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", path, err)
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	return &s, nil
}

func (s *Session) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return os.Rename(tmp, path)
}

// Restore selects the deepest remembered node that still exists.
func (s *Session) Restore(ed *manuscript.Editor) {
	switch {
	case s.SceneID != "" && ed.SelectScene(s.SceneID):
	case s.ChapterID != "" && ed.SelectChapter(s.ChapterID):
	case s.ActID != "" && ed.SelectAct(s.ActID):
	}
}

// Capture records the editor's novel, selection and view mode.
func (s *Session) Capture(ed *manuscript.Editor) {
	s.NovelID = ed.NovelID()
	s.ActID, s.ChapterID, s.SceneID = ed.Selection().IDs()
	s.ViewMode = string(ed.ViewMode())
}
