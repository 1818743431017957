// internal/manuscript/fake_backend_test.go
package manuscript

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
)

type call struct {
	Method string
	ID     string
	Body   interface{}
}

// fakeBackend keeps a novel in memory and records every call. Reorders renumber
// siblings contiguously, the way the server does.
type fakeBackend struct {
	mu     sync.Mutex
	novel  *models.Novel
	calls  []call
	nextID int

	// failNext makes the next non-GET call fail with this error.
	failNext error
	// block, when set, is received from before any non-GET call returns.
	block chan struct{}
	// structureGate, when set, is received from before GetStructure returns.
	structureGate chan struct{}
}

func newFakeBackend(n *models.Novel) *fakeBackend {
	return &fakeBackend{novel: n}
}

// sampleNovel builds Act1{Ch1{Sc1,Sc2}, Ch2{Sc3}}, Act2{Ch3{Sc4}}.
func sampleNovel() *models.Novel {
	return &models.Novel{
		ID:    "N1",
		Title: "Sample",
		Acts: []models.Act{
			{ID: "Act1", NovelID: "N1", Title: "Act One", Order: 1, Chapters: []models.Chapter{
				{ID: "Ch1", ActID: "Act1", Title: "Arrival", Order: 1, Scenes: []models.Scene{
					{ID: "Sc1", ChapterID: "Ch1", Title: "Dock", Order: 1},
					{ID: "Sc2", ChapterID: "Ch1", Title: "Market", Order: 2},
				}},
				{ID: "Ch2", ActID: "Act1", Title: "Storm", Order: 2, Scenes: []models.Scene{
					{ID: "Sc3", ChapterID: "Ch2", Title: "Squall", Order: 1},
				}},
			}},
			{ID: "Act2", NovelID: "N1", Title: "Act Two", Order: 2, Chapters: []models.Chapter{
				{ID: "Ch3", ActID: "Act2", Title: "Aftermath", Order: 1, Scenes: []models.Scene{
					{ID: "Sc4", ChapterID: "Ch3", Title: "Wreck", Order: 1},
				}},
			}},
		},
	}
}

func (f *fakeBackend) record(method, id string, body interface{}) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: method, ID: id, Body: body})
	block := f.block
	err := f.failNext
	f.failNext = nil
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return err
}

func (f *fakeBackend) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

// Writes returns every call except structure fetches.
func (f *fakeBackend) Writes() []call {
	var out []call
	for _, c := range f.Calls() {
		if c.Method != "GetStructure" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeBackend) count(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (f *fakeBackend) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-new-%d", prefix, f.nextID)
}

func (f *fakeBackend) GetStructure(ctx context.Context, novelID string) (*models.Novel, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{Method: "GetStructure", ID: novelID})
	gate := f.structureGate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.novel.Clone(), nil
}

func (f *fakeBackend) DeleteStructure(ctx context.Context, novelID string) error {
	if err := f.record("DeleteStructure", novelID, nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.novel.Acts = nil
	return nil
}

func (f *fakeBackend) RenameAct(ctx context.Context, novelID, actID, title string) (*models.Act, error) {
	if err := f.record("RenameAct", actID, models.RenameRequest{Title: title}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	act := findAct(f.novel, actID)
	act.Title = title
	out := act.Clone()
	return &out, nil
}

func (f *fakeBackend) RenameChapter(ctx context.Context, novelID, chapterID, title string) (*models.Chapter, error) {
	if err := f.record("RenameChapter", chapterID, models.RenameRequest{Title: title}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ch := findChapter(f.novel, chapterID)
	ch.Title = title
	out := ch.Clone()
	return &out, nil
}

func (f *fakeBackend) RenameScene(ctx context.Context, novelID, sceneID, title string) (*models.Scene, error) {
	if err := f.record("RenameScene", sceneID, models.RenameRequest{Title: title}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _, sc := findScene(f.novel, sceneID)
	sc.Title = title
	out := sc.Clone()
	return &out, nil
}

func (f *fakeBackend) ReorderAct(ctx context.Context, novelID, actID string, req models.ReorderActRequest) (*models.Act, error) {
	if err := f.record("ReorderAct", actID, req); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	acts := models.SortedActs(f.novel.Acts)
	idx := 0
	for i := range acts {
		if acts[i].ID == actID {
			idx = i
		}
	}
	moved := acts[idx]
	acts = append(acts[:idx], acts[idx+1:]...)
	pos := clampPos(req.NewOrder-1, len(acts))
	acts = append(acts[:pos], append([]models.Act{moved}, acts[pos:]...)...)
	for i := range acts {
		acts[i].Order = i + 1
	}
	f.novel.Acts = acts
	out := findAct(f.novel, actID).Clone()
	return &out, nil
}

func (f *fakeBackend) ReorderChapter(ctx context.Context, novelID, chapterID string, req models.ReorderChapterRequest) (*models.Chapter, error) {
	if err := f.record("ReorderChapter", chapterID, req); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	src, ch := findChapter(f.novel, chapterID)
	moved := ch.Clone()
	src.Chapters = removeChapter(src.Chapters, chapterID)
	dest := src
	if req.NewActID != "" {
		dest = findAct(f.novel, req.NewActID)
	}
	moved.ActID = dest.ID
	list := models.SortedChapters(dest.Chapters)
	pos := clampPos(req.NewOrder-1, len(list))
	list = append(list[:pos], append([]models.Chapter{moved}, list[pos:]...)...)
	dest.Chapters = list
	renumberChapters(src)
	renumberChapters(dest)
	_, out := findChapter(f.novel, chapterID)
	c := out.Clone()
	return &c, nil
}

func (f *fakeBackend) ReorderScene(ctx context.Context, novelID, sceneID string, req models.ReorderSceneRequest) (*models.Scene, error) {
	if err := f.record("ReorderScene", sceneID, req); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, src, sc := findScene(f.novel, sceneID)
	moved := sc.Clone()
	src.Scenes = removeScene(src.Scenes, sceneID)
	dest := src
	if req.NewChapterID != "" {
		_, dest = findChapter(f.novel, req.NewChapterID)
	}
	moved.ChapterID = dest.ID
	list := models.SortedScenes(dest.Scenes)
	pos := clampPos(req.NewOrder-1, len(list))
	list = append(list[:pos], append([]models.Scene{moved}, list[pos:]...)...)
	dest.Scenes = list
	renumberScenes(src)
	renumberScenes(dest)
	_, _, out := findScene(f.novel, sceneID)
	c := out.Clone()
	return &c, nil
}

func (f *fakeBackend) CreateAct(ctx context.Context, novelID string, req models.CreateActRequest) (*models.Act, error) {
	if err := f.record("CreateAct", "", req); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	act := models.Act{ID: f.newID("act"), NovelID: novelID, Title: req.Title, Order: len(f.novel.Acts) + 1}
	f.novel.Acts = append(f.novel.Acts, act)
	return &act, nil
}

func (f *fakeBackend) CreateChapter(ctx context.Context, novelID string, req models.CreateChapterRequest) (*models.Chapter, error) {
	if err := f.record("CreateChapter", req.ActID, req); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	act := findAct(f.novel, req.ActID)
	if act == nil {
		return nil, apperrors.NewNotFoundError("act not found", nil)
	}
	ch := models.Chapter{ID: f.newID("chapter"), ActID: act.ID, Title: req.Title, Order: len(act.Chapters) + 1}
	act.Chapters = append(act.Chapters, ch)
	return &ch, nil
}

func (f *fakeBackend) CreateScene(ctx context.Context, novelID string, req models.CreateSceneRequest) (*models.Scene, error) {
	if err := f.record("CreateScene", req.ChapterID, req); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ch := findChapter(f.novel, req.ChapterID)
	if ch == nil {
		return nil, apperrors.NewNotFoundError("chapter not found", nil)
	}
	sc := models.Scene{ID: f.newID("scene"), ChapterID: ch.ID, Title: req.Title, Order: len(ch.Scenes) + 1, Status: models.SceneStatusDraft}
	ch.Scenes = append(ch.Scenes, sc)
	return &sc, nil
}

func (f *fakeBackend) DeleteAct(ctx context.Context, novelID, actID string) error {
	if err := f.record("DeleteAct", actID, nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.novel.Acts[:0]
	for _, a := range f.novel.Acts {
		if a.ID != actID {
			kept = append(kept, a)
		}
	}
	f.novel.Acts = kept
	return nil
}

func (f *fakeBackend) DeleteChapter(ctx context.Context, novelID, chapterID string) error {
	if err := f.record("DeleteChapter", chapterID, nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	act, _ := findChapter(f.novel, chapterID)
	act.Chapters = removeChapter(act.Chapters, chapterID)
	renumberChapters(act)
	return nil
}

func (f *fakeBackend) DeleteScene(ctx context.Context, novelID, sceneID string) error {
	if err := f.record("DeleteScene", sceneID, nil); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ch, _ := findScene(f.novel, sceneID)
	ch.Scenes = removeScene(ch.Scenes, sceneID)
	renumberScenes(ch)
	return nil
}

func (f *fakeBackend) UpdateScene(ctx context.Context, novelID, sceneID string, req models.UpdateSceneRequest) (*models.Scene, error) {
	if err := f.record("UpdateScene", sceneID, req); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, _, sc := findScene(f.novel, sceneID)
	if req.Content != nil {
		sc.Content = *req.Content
		sc.WordCount = models.CountWords(sc.Content)
	}
	if req.POVCharacterID != nil {
		id := *req.POVCharacterID
		sc.POVCharacterID = &id
	}
	out := sc.Clone()
	return &out, nil
}

func clampPos(pos, n int) int {
	if pos < 0 {
		return 0
	}
	if pos > n {
		return n
	}
	return pos
}

func removeChapter(list []models.Chapter, id string) []models.Chapter {
	out := make([]models.Chapter, 0, len(list))
	for _, c := range models.SortedChapters(list) {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func removeScene(list []models.Scene, id string) []models.Scene {
	out := make([]models.Scene, 0, len(list))
	for _, s := range models.SortedScenes(list) {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

// renumberChapters numbers chapters by slice position; callers keep the slice in order.
func renumberChapters(a *models.Act) {
	for i := range a.Chapters {
		a.Chapters[i].Order = i + 1
	}
}

func renumberScenes(c *models.Chapter) {
	for i := range c.Scenes {
		c.Scenes[i].Order = i + 1
	}
}
