// internal/models/manuscript_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedScenesIsStableAndCopies(t *testing.T) {
	in := []Scene{
		{ID: "c", Order: 2},
		{ID: "a", Order: 1},
		{ID: "b", Order: 1},
	}
	out := SortedScenes(in)

	ids := []string{out[0].ID, out[1].ID, out[2].ID}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Equal(t, "c", in[0].ID, "input must not be reordered")
}

func TestDisplayTitleFallsBackToOrder(t *testing.T) {
	assert.Equal(t, "Scene 4", Scene{Order: 4}.DisplayTitle())
	assert.Equal(t, "Scene 2", Scene{Order: 2, Title: "   "}.DisplayTitle())
	assert.Equal(t, "Harbour", Scene{Order: 1, Title: "Harbour"}.DisplayTitle())
}

func TestNovelWordCountAndClone(t *testing.T) {
	pov := "char-1"
	n := &Novel{ID: "n", Acts: []Act{{ID: "a", Chapters: []Chapter{{ID: "c", Scenes: []Scene{
		{ID: "s1", WordCount: 120, POVCharacterID: &pov},
		{ID: "s2", WordCount: 30},
	}}}}}}
	assert.Equal(t, 150, n.WordCount())

	cp := n.Clone()
	cp.Acts[0].Chapters[0].Scenes[0].Title = "changed"
	*cp.Acts[0].Chapters[0].Scenes[0].POVCharacterID = "char-2"
	assert.Empty(t, n.Acts[0].Chapters[0].Scenes[0].Title)
	assert.Equal(t, "char-1", pov)

	var nilNovel *Novel
	assert.Nil(t, nilNovel.Clone())
	assert.Zero(t, nilNovel.WordCount())
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"latin", "The gulls went quiet.", 4},
		{"contractions and commas", "Don't wait, Mara.", 3},
		{"stray dash", "Then — nothing.", 2},
		{"accented", "Zoë met Éva", 3},
		{"chinese", "然后李雷跑了。", 6},
		{"japanese kana", "すぐに来て", 5},
		{"mixed", "Mara 说：好。", 3},
		{"hangul uses spaces", "안녕 하세요", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.content))
		})
	}
}

func TestStructureJSONUsesWireNames(t *testing.T) {
	raw := `{"id":"n","title":"T","acts":[{"id":"a","title":"A","order":1,"chapters":[
		{"id":"c","actId":"a","title":"C","order":1,"scenes":[
			{"id":"s","chapterId":"c","order":1,"wordCount":12,"status":"draft","povCharacterId":"p"}]}]}]}`

	var n Novel
	require.NoError(t, json.Unmarshal([]byte(raw), &n))
	sc := n.Acts[0].Chapters[0].Scenes[0]
	assert.Equal(t, "c", sc.ChapterID)
	assert.Equal(t, 12, sc.WordCount)
	assert.Equal(t, SceneStatusDraft, sc.Status)
	require.NotNil(t, sc.POVCharacterID)
	assert.Equal(t, "p", *sc.POVCharacterID)
}

func TestReorderRequestOmitsUnchangedParent(t *testing.T) {
	b, err := json.Marshal(ReorderSceneRequest{NewOrder: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"newOrder":3}`, string(b))

	b, err = json.Marshal(ReorderSceneRequest{NewOrder: 1, NewChapterID: "Ch2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"newOrder":1,"newChapterId":"Ch2"}`, string(b))
}

func TestSceneStatusValid(t *testing.T) {
	assert.True(t, SceneStatusRevised.Valid())
	assert.False(t, SceneStatus("published").Valid())
}
