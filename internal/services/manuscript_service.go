// internal/services/manuscript_service.go
package services

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
	"github.com/Corphon/NovelForge/internal/storage"
	"github.com/Corphon/NovelForge/internal/utils"
)

const (
	novelsDir     = "novels"
	structureFile = "structure.json"
)

// ManuscriptService owns the act/chapter/scene tree of every novel on the server
// side. Each novel is one JSON document; every change is a locked
// read-modify-write of that document.
type ManuscriptService struct {
	storage *storage.FileStorage
	locks   *LockManager
	logger  *utils.Logger
	words   WordRecorder
	now     func() time.Time
}

// WordRecorder receives the net change in words each time scene prose is saved.
type WordRecorder interface {
	RecordWords(novelID string, delta int)
}

// NewManuscriptService creates the service.
func NewManuscriptService(fs *storage.FileStorage, locks *LockManager, logger *utils.Logger) *ManuscriptService {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &ManuscriptService{storage: fs, locks: locks, logger: logger, now: time.Now}
}

// SetWordRecorder registers r to hear about prose edits. Pass nil to stop.
func (s *ManuscriptService) SetWordRecorder(r WordRecorder) {
	s.words = r
}

func novelDir(novelID string) string {
	return path.Join(novelsDir, novelID)
}

func validNovelID(novelID string) error {
	if novelID == "" || strings.ContainsAny(novelID, `/\`) || novelID == "." || novelID == ".." {
		return apperrors.NewValidationError(fmt.Sprintf("invalid novel id %q", novelID), nil)
	}
	return nil
}

func (s *ManuscriptService) load(novelID string) (*models.Novel, error) {
	if err := validNovelID(novelID); err != nil {
		return nil, err
	}
	var n models.Novel
	if err := s.storage.LoadJSONFile(novelDir(novelID), structureFile, &n); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("novel %s not found", novelID), nil)
		}
		return nil, apperrors.NewProcessingError("load novel", err)
	}
	if n.Acts == nil {
		n.Acts = []models.Act{}
	}
	return &n, nil
}

func (s *ManuscriptService) save(n *models.Novel) error {
	n.UpdatedAt = s.now().UTC()
	if err := s.storage.SaveJSONFile(novelDir(n.ID), structureFile, n); err != nil {
		return apperrors.NewProcessingError("save novel", err)
	}
	return nil
}

// update runs fn against the stored novel under the novel's write lock and saves
// the result when fn succeeds.
func (s *ManuscriptService) update(novelID string, fn func(n *models.Novel) error) error {
	return s.locks.WithLock(novelID, func() error {
		n, err := s.load(novelID)
		if err != nil {
			return err
		}
		if err := fn(n); err != nil {
			return err
		}
		return s.save(n)
	})
}

// ListNovels summarises every stored novel.
func (s *ManuscriptService) ListNovels() ([]models.NovelSummary, error) {
	ids, err := s.storage.ListDirs(novelsDir)
	if err != nil {
		return nil, apperrors.NewProcessingError("list novels", err)
	}

	out := make([]models.NovelSummary, 0, len(ids))
	for _, id := range ids {
		n, err := s.GetStructure(id)
		if err != nil {
			s.logger.Warn("skipping unreadable novel", map[string]interface{}{"novel_id": id, "error": err})
			continue
		}
		summary := models.NovelSummary{ID: n.ID, Title: n.Title, Acts: len(n.Acts), WordCount: n.WordCount(), UpdatedAt: n.UpdatedAt}
		for _, a := range n.Acts {
			for _, c := range a.Chapters {
				summary.Scenes += len(c.Scenes)
			}
		}
		out = append(out, summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// CreateNovel stores a new, empty novel.
func (s *ManuscriptService) CreateNovel(req models.CreateNovelRequest) (*models.Novel, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("novel title is required", nil)
	}
	n := &models.Novel{ID: uuid.NewString(), Title: title, Acts: []models.Act{}}
	if err := s.locks.WithLock(n.ID, func() error { return s.save(n) }); err != nil {
		return nil, err
	}
	s.logger.Info("novel created", map[string]interface{}{"novel_id": n.ID, "title": title})
	return n, nil
}

// GetStructure returns the whole tree with every level sorted by order.
func (s *ManuscriptService) GetStructure(novelID string) (*models.Novel, error) {
	var out *models.Novel
	err := s.locks.WithReadLock(novelID, func() error {
		n, err := s.load(novelID)
		if err != nil {
			return err
		}
		sortTree(n)
		out = n
		return nil
	})
	return out, err
}

// DeleteStructure removes every act but keeps the novel.
func (s *ManuscriptService) DeleteStructure(novelID string) error {
	return s.update(novelID, func(n *models.Novel) error {
		n.Acts = []models.Act{}
		return nil
	})
}

// DeleteNovel removes a novel and everything stored with it.
func (s *ManuscriptService) DeleteNovel(novelID string) error {
	if err := validNovelID(novelID); err != nil {
		return err
	}
	// The cast document lives in the same directory under its own lock.
	err := s.locks.WithLock(castLockKey(novelID), func() error {
		return s.locks.WithLock(novelID, func() error { return s.removeNovelDir(novelID) })
	})
	if err != nil {
		return err
	}
	s.logger.Info("novel deleted", map[string]interface{}{"novel_id": novelID})
	return nil
}

func (s *ManuscriptService) removeNovelDir(novelID string) error {
	dir := novelDir(novelID)
	if !s.storage.DirExists(dir) {
		return apperrors.NewNotFoundError(fmt.Sprintf("novel %s not found", novelID), nil)
	}
	if err := s.storage.DeleteDir(dir); err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return apperrors.NewNotFoundError(fmt.Sprintf("novel %s not found", novelID), nil)
		}
		return apperrors.NewProcessingError("delete novel", err)
	}
	return nil
}

// CreateAct appends an act.
func (s *ManuscriptService) CreateAct(novelID string, req models.CreateActRequest) (*models.Act, error) {
	title, err := requireTitle("act", req.Title)
	if err != nil {
		return nil, err
	}
	var out models.Act
	err = s.update(novelID, func(n *models.Novel) error {
		act := models.Act{ID: uuid.NewString(), NovelID: n.ID, Title: title, Order: len(n.Acts) + 1, Chapters: []models.Chapter{}}
		n.Acts = append(n.Acts, act)
		out = act
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameAct changes an act's title.
func (s *ManuscriptService) RenameAct(novelID, actID, title string) (*models.Act, error) {
	title, err := requireTitle("act", title)
	if err != nil {
		return nil, err
	}
	var out models.Act
	err = s.update(novelID, func(n *models.Novel) error {
		act, err := actByID(n, actID)
		if err != nil {
			return err
		}
		act.Title = title
		out = act.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReorderAct moves an act to newOrder and renumbers all acts from 1.
func (s *ManuscriptService) ReorderAct(novelID, actID string, req models.ReorderActRequest) (*models.Act, error) {
	if req.NewOrder < 1 {
		return nil, apperrors.NewValidationError("newOrder must be at least 1", nil)
	}
	var out models.Act
	err := s.update(novelID, func(n *models.Novel) error {
		acts := models.SortedActs(n.Acts)
		idx := -1
		for i := range acts {
			if acts[i].ID == actID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperrors.NewNotFoundError(fmt.Sprintf("act %s not found", actID), nil)
		}
		moved := acts[idx]
		acts = append(acts[:idx], acts[idx+1:]...)
		acts = insertAt(acts, moved, req.NewOrder-1)
		for i := range acts {
			acts[i].Order = i + 1
		}
		n.Acts = acts
		a, _ := actByID(n, actID)
		out = a.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAct removes an act with everything under it.
func (s *ManuscriptService) DeleteAct(novelID, actID string) error {
	return s.update(novelID, func(n *models.Novel) error {
		if _, err := actByID(n, actID); err != nil {
			return err
		}
		kept := make([]models.Act, 0, len(n.Acts))
		for _, a := range models.SortedActs(n.Acts) {
			if a.ID != actID {
				kept = append(kept, a)
			}
		}
		for i := range kept {
			kept[i].Order = i + 1
		}
		n.Acts = kept
		return nil
	})
}

// CreateChapter appends a chapter to an act.
func (s *ManuscriptService) CreateChapter(novelID string, req models.CreateChapterRequest) (*models.Chapter, error) {
	title, err := requireTitle("chapter", req.Title)
	if err != nil {
		return nil, err
	}
	var out models.Chapter
	err = s.update(novelID, func(n *models.Novel) error {
		act, err := actByID(n, req.ActID)
		if err != nil {
			return err
		}
		ch := models.Chapter{ID: uuid.NewString(), ActID: act.ID, Title: title, Order: len(act.Chapters) + 1, Scenes: []models.Scene{}}
		act.Chapters = append(act.Chapters, ch)
		out = ch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameChapter changes a chapter's title.
func (s *ManuscriptService) RenameChapter(novelID, chapterID, title string) (*models.Chapter, error) {
	title, err := requireTitle("chapter", title)
	if err != nil {
		return nil, err
	}
	var out models.Chapter
	err = s.update(novelID, func(n *models.Novel) error {
		_, ch, err := chapterByID(n, chapterID)
		if err != nil {
			return err
		}
		ch.Title = title
		out = ch.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReorderChapter moves a chapter within its act or, with NewActID, into another act.
// Both the source and destination act are renumbered from 1.
func (s *ManuscriptService) ReorderChapter(novelID, chapterID string, req models.ReorderChapterRequest) (*models.Chapter, error) {
	if req.NewOrder < 1 {
		return nil, apperrors.NewValidationError("newOrder must be at least 1", nil)
	}
	var out models.Chapter
	err := s.update(novelID, func(n *models.Novel) error {
		src, ch, err := chapterByID(n, chapterID)
		if err != nil {
			return err
		}
		dest := src
		if req.NewActID != "" && req.NewActID != src.ID {
			if dest, err = actByID(n, req.NewActID); err != nil {
				return err
			}
		}

		moved := ch.Clone()
		moved.ActID = dest.ID
		src.Chapters = withoutChapter(src.Chapters, chapterID)
		dest.Chapters = insertAt(models.SortedChapters(dest.Chapters), moved, req.NewOrder-1)
		renumberChapters(src.Chapters)
		renumberChapters(dest.Chapters)

		_, c, _ := chapterByID(n, chapterID)
		out = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteChapter removes a chapter and its scenes.
func (s *ManuscriptService) DeleteChapter(novelID, chapterID string) error {
	return s.update(novelID, func(n *models.Novel) error {
		act, _, err := chapterByID(n, chapterID)
		if err != nil {
			return err
		}
		act.Chapters = withoutChapter(act.Chapters, chapterID)
		renumberChapters(act.Chapters)
		return nil
	})
}

// CreateScene appends a draft scene to a chapter.
func (s *ManuscriptService) CreateScene(novelID string, req models.CreateSceneRequest) (*models.Scene, error) {
	var out models.Scene
	err := s.update(novelID, func(n *models.Novel) error {
		_, ch, err := chapterByID(n, req.ChapterID)
		if err != nil {
			return err
		}
		sc := models.Scene{
			ID:        uuid.NewString(),
			ChapterID: ch.ID,
			Title:     strings.TrimSpace(req.Title),
			Order:     len(ch.Scenes) + 1,
			Status:    models.SceneStatusDraft,
			UpdatedAt: s.now().UTC(),
		}
		ch.Scenes = append(ch.Scenes, sc)
		out = sc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateScene applies a partial update. A title-only body is a rename.
func (s *ManuscriptService) UpdateScene(novelID, sceneID string, req models.UpdateSceneRequest) (*models.Scene, error) {
	if req.Status != nil && !req.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown scene status %q", *req.Status), nil)
	}
	var (
		out   models.Scene
		delta int
	)
	err := s.update(novelID, func(n *models.Novel) error {
		_, _, sc, err := sceneByID(n, sceneID)
		if err != nil {
			return err
		}
		if req.Title != nil {
			sc.Title = strings.TrimSpace(*req.Title)
		}
		if req.Content != nil {
			before := sc.WordCount
			sc.Content = *req.Content
			sc.WordCount = models.CountWords(sc.Content)
			delta = sc.WordCount - before
		}
		if req.Status != nil {
			sc.Status = *req.Status
		}
		if req.POVCharacterID != nil {
			if *req.POVCharacterID == "" {
				sc.POVCharacterID = nil
			} else {
				pov := *req.POVCharacterID
				sc.POVCharacterID = &pov
			}
		}
		sc.UpdatedAt = s.now().UTC()
		out = sc.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.words != nil && delta != 0 {
		s.words.RecordWords(novelID, delta)
	}
	return &out, nil
}

// ReorderScene moves a scene within its chapter or, with NewChapterID, into
// another chapter. Both chapters are renumbered from 1.
func (s *ManuscriptService) ReorderScene(novelID, sceneID string, req models.ReorderSceneRequest) (*models.Scene, error) {
	if req.NewOrder < 1 {
		return nil, apperrors.NewValidationError("newOrder must be at least 1", nil)
	}
	var out models.Scene
	err := s.update(novelID, func(n *models.Novel) error {
		_, src, sc, err := sceneByID(n, sceneID)
		if err != nil {
			return err
		}
		dest := src
		if req.NewChapterID != "" && req.NewChapterID != src.ID {
			if _, dest, err = chapterByID(n, req.NewChapterID); err != nil {
				return err
			}
		}

		moved := sc.Clone()
		moved.ChapterID = dest.ID
		src.Scenes = withoutScene(src.Scenes, sceneID)
		dest.Scenes = insertAt(models.SortedScenes(dest.Scenes), moved, req.NewOrder-1)
		renumberScenes(src.Scenes)
		renumberScenes(dest.Scenes)

		_, _, got, _ := sceneByID(n, sceneID)
		out = got.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteScene removes a scene.
func (s *ManuscriptService) DeleteScene(novelID, sceneID string) error {
	return s.update(novelID, func(n *models.Novel) error {
		_, ch, _, err := sceneByID(n, sceneID)
		if err != nil {
			return err
		}
		ch.Scenes = withoutScene(ch.Scenes, sceneID)
		renumberScenes(ch.Scenes)
		return nil
	})
}

// ClearPOV unassigns a character from every scene it narrates.
func (s *ManuscriptService) ClearPOV(novelID, characterID string) error {
	return s.update(novelID, func(n *models.Novel) error {
		for i := range n.Acts {
			for j := range n.Acts[i].Chapters {
				scenes := n.Acts[i].Chapters[j].Scenes
				for k := range scenes {
					if scenes[k].POVCharacterID != nil && *scenes[k].POVCharacterID == characterID {
						scenes[k].POVCharacterID = nil
					}
				}
			}
		}
		return nil
	})
}

func requireTitle(kind, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.NewValidationError(kind+" title is required", nil)
	}
	return title, nil
}

func actByID(n *models.Novel, actID string) (*models.Act, error) {
	for i := range n.Acts {
		if n.Acts[i].ID == actID {
			return &n.Acts[i], nil
		}
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("act %s not found", actID), nil)
}

func chapterByID(n *models.Novel, chapterID string) (*models.Act, *models.Chapter, error) {
	for i := range n.Acts {
		act := &n.Acts[i]
		for j := range act.Chapters {
			if act.Chapters[j].ID == chapterID {
				return act, &act.Chapters[j], nil
			}
		}
	}
	return nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("chapter %s not found", chapterID), nil)
}

func sceneByID(n *models.Novel, sceneID string) (*models.Act, *models.Chapter, *models.Scene, error) {
	for i := range n.Acts {
		act := &n.Acts[i]
		for j := range act.Chapters {
			ch := &act.Chapters[j]
			for k := range ch.Scenes {
				if ch.Scenes[k].ID == sceneID {
					return act, ch, &ch.Scenes[k], nil
				}
			}
		}
	}
	return nil, nil, nil, apperrors.NewNotFoundError(fmt.Sprintf("scene %s not found", sceneID), nil)
}

// insertAt inserts v at pos, clamped to the slice bounds.
func insertAt[T any](list []T, v T, pos int) []T {
	if pos < 0 {
		pos = 0
	}
	if pos > len(list) {
		pos = len(list)
	}
	list = append(list, v)
	copy(list[pos+1:], list[pos:])
	list[pos] = v
	return list
}

func withoutChapter(list []models.Chapter, id string) []models.Chapter {
	out := make([]models.Chapter, 0, len(list))
	for _, c := range models.SortedChapters(list) {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func withoutScene(list []models.Scene, id string) []models.Scene {
	out := make([]models.Scene, 0, len(list))
	for _, sc := range models.SortedScenes(list) {
		if sc.ID != id {
			out = append(out, sc)
		}
	}
	return out
}

func renumberChapters(list []models.Chapter) {
	for i := range list {
		list[i].Order = i + 1
	}
}

func renumberScenes(list []models.Scene) {
	for i := range list {
		list[i].Order = i + 1
	}
}

func sortTree(n *models.Novel) {
	n.Acts = models.SortedActs(n.Acts)
	for i := range n.Acts {
		n.Acts[i].Chapters = models.SortedChapters(n.Acts[i].Chapters)
		for j := range n.Acts[i].Chapters {
			n.Acts[i].Chapters[j].Scenes = models.SortedScenes(n.Acts[i].Chapters[j].Scenes)
		}
	}
}
