// internal/manuscript/mutations_test.go
package manuscript

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
)

func TestRenameSelectedChapterIsVisibleWithoutRefetch(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)
	require.True(t, ed.SelectChapter("Ch1"))

	require.NoError(t, ed.RenameChapter(context.Background(), "Ch1", "Prologue"))

	assert.Equal(t, "Prologue", ed.Selection().Chapter.Title)
	assert.Equal(t, []call{{Method: "RenameChapter", ID: "Ch1", Body: models.RenameRequest{Title: "Prologue"}}}, fb.Writes())
	assert.Equal(t, 1, fb.count("GetStructure"))
}

func TestRenamePatchesOnlyTarget(t *testing.T) {
	ed, _ := newTestEditor(t, sampleNovel(), ViewDocument)
	before := ed.Novel()

	require.NoError(t, ed.RenameScene(context.Background(), "Sc2", "Bazaar"))

	after := ed.Novel()
	_, _, sc := findScene(before, "Sc2")
	sc.Title = "Bazaar"
	assert.Equal(t, before, after)
}

func TestRenameActAndScene(t *testing.T) {
	ed, _ := newTestEditor(t, sampleNovel(), ViewDocument)

	require.NoError(t, ed.RenameAct(context.Background(), "Act1", "  Beginnings  "))
	assert.Equal(t, "Beginnings", ed.Selection().Act.Title)

	require.NoError(t, ed.RenameScene(context.Background(), "Sc1", ""))
	sc := ed.Selection().Scene
	assert.Equal(t, "", sc.Title)
	assert.Equal(t, "Scene 1", sc.DisplayTitle())
}

func TestRenameValidation(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)

	err := ed.RenameAct(context.Background(), "Act1", "   ")
	assert.True(t, apperrors.IsValidationError(err))

	err = ed.RenameChapter(context.Background(), "Sc1", "Wrong level")
	assert.True(t, apperrors.IsNotFoundError(err))

	err = ed.RenameScene(context.Background(), "ghost", "x")
	assert.True(t, apperrors.IsNotFoundError(err))

	assert.Empty(t, fb.Writes())
}

func TestRenameFailureLeavesTitle(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)
	fb.mu.Lock()
	fb.failNext = apperrors.NewRemoteError("title too long", "VALIDATION_ERROR", 400)
	fb.mu.Unlock()

	err := ed.RenameChapter(context.Background(), "Ch1", "Something")
	require.Error(t, err)
	assert.True(t, apperrors.IsRemoteError(err))
	assert.Equal(t, "Arrival", ed.Selection().Chapter.Title)
	assert.Equal(t, 1, fb.count("GetStructure"))
}

func TestAddNodesRefreshes(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)
	ctx := context.Background()

	act, err := ed.AddAct(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Act 3", act.Title)

	ch, err := ed.AddChapter(ctx, act.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "Chapter 1", ch.Title)

	sc, err := ed.AddScene(ctx, ch.ID, "Opening")
	require.NoError(t, err)
	assert.Equal(t, ch.ID, sc.ChapterID)

	assert.Equal(t, 4, fb.count("GetStructure"))
	p, ok := ed.Locate(sc.ID)
	require.True(t, ok)
	assert.Equal(t, Path{Level: ItemScene, ActID: act.ID, ChapterID: ch.ID, SceneID: sc.ID}, p)
	assert.False(t, ed.IsCreating())
}

func TestAddToUnknownParent(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)

	_, err := ed.AddChapter(context.Background(), "ghost", "x")
	assert.True(t, apperrors.IsNotFoundError(err))
	_, err = ed.AddScene(context.Background(), "ghost", "x")
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Empty(t, fb.Writes())
}

func TestConcurrentCreateRejected(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)
	block := make(chan struct{})
	fb.mu.Lock()
	fb.block = block
	fb.mu.Unlock()

	first := make(chan error, 1)
	go func() {
		_, err := ed.AddAct(context.Background(), "Coda")
		first <- err
	}()
	require.Eventually(t, ed.IsCreating, time.Second, time.Millisecond)

	_, err := ed.AddScene(context.Background(), "Ch1", "")
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, ed.IsDeleting())

	close(block)
	require.NoError(t, <-first)
	assert.Equal(t, 0, fb.count("CreateScene"))
}

func TestDeleteChapterClearsSelection(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)
	require.True(t, ed.SelectScene("Sc3"))

	require.NoError(t, ed.DeleteChapter(context.Background(), "Ch2"))
	assert.Equal(t, [3]string{"Act1", "", ""}, selectedIDs(ed))
	assert.Equal(t, 2, fb.count("GetStructure"))
	assert.False(t, ed.IsDeleting())
}

func TestDeleteActAndAll(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)
	ctx := context.Background()

	require.NoError(t, ed.DeleteAct(ctx, "Act2"))
	assert.Len(t, ed.Novel().Acts, 1)

	require.NoError(t, ed.DeleteAll(ctx))
	assert.Empty(t, ed.Novel().Acts)
	assert.Equal(t, [3]string{"", "", ""}, selectedIDs(ed))
	assert.Equal(t, 1, fb.count("DeleteStructure"))
}

func TestDeleteFailureRefreshesAndReports(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)
	fb.mu.Lock()
	fb.failNext = apperrors.NewNetworkError("server returned 502", 502, nil)
	fb.mu.Unlock()

	err := ed.DeleteScene(context.Background(), "Sc1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNetworkError(err))
	assert.Equal(t, 2, fb.count("GetStructure"))
	_, ok := ed.Locate("Sc1")
	assert.True(t, ok)
}

func TestSaveSceneContentPatchesInPlace(t *testing.T) {
	ed, fb := newTestEditor(t, sampleNovel(), ViewDocument)

	require.NoError(t, ed.SaveSceneContent(context.Background(), "Sc1", "The ship came in at dawn."))

	sc := ed.Selection().Scene
	assert.Equal(t, "The ship came in at dawn.", sc.Content)
	assert.Equal(t, 6, sc.WordCount)
	assert.Equal(t, 1, fb.count("GetStructure"))
}

func TestSetScenePOV(t *testing.T) {
	ed, _ := newTestEditor(t, sampleNovel(), ViewDocument)
	ctx := context.Background()

	require.NoError(t, ed.SetScenePOV(ctx, "Sc1", "char-1"))
	pov := ed.Selection().Scene.POVCharacterID
	require.NotNil(t, pov)
	assert.Equal(t, "char-1", *pov)

	require.NoError(t, ed.SetScenePOV(ctx, "Sc1", ""))
	assert.Nil(t, ed.Selection().Scene.POVCharacterID)
}
