// internal/services/character_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/models"
)

func TestCharacterLifecycle(t *testing.T) {
	f := newFixture(t)
	cs := f.characters

	mara, err := cs.CreateCharacter(f.novel.ID, models.CreateCharacterRequest{Name: "Mara", Aliases: []string{" the Captain ", ""}})
	require.NoError(t, err)
	assert.Equal(t, []string{"the Captain"}, mara.Aliases)

	_, err = cs.CreateCharacter(f.novel.ID, models.CreateCharacterRequest{Name: "mara"})
	assert.True(t, apperrors.IsConflictError(err))

	role := "protagonist"
	updated, err := cs.UpdateCharacter(f.novel.ID, mara.ID, models.UpdateCharacterRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "protagonist", updated.Role)
	assert.Equal(t, "Mara", updated.Name)

	list, err := cs.ListCharacters(f.novel.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStatesAndRelationships(t *testing.T) {
	f := newFixture(t)
	cs := f.characters

	a, err := cs.CreateCharacter(f.novel.ID, models.CreateCharacterRequest{Name: "Mara"})
	require.NoError(t, err)
	b, err := cs.CreateCharacter(f.novel.ID, models.CreateCharacterRequest{Name: "Tobin"})
	require.NoError(t, err)

	_, err = cs.CreateState(f.novel.ID, a.ID, models.CreateStateRequest{Label: "Wounded", SceneID: f.ids["Sc2"]})
	require.NoError(t, err)
	_, err = cs.CreateState(f.novel.ID, a.ID, models.CreateStateRequest{Label: "Lost", SceneID: "nope"})
	assert.True(t, apperrors.IsNotFoundError(err))

	states, err := cs.ListStates(f.novel.ID, a.ID)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, f.ids["Sc2"], states[0].SceneID)

	rel, err := cs.CreateRelationship(f.novel.ID, models.CreateRelationshipRequest{FromID: a.ID, ToID: b.ID, Kind: "rival"})
	require.NoError(t, err)
	_, err = cs.CreateRelationship(f.novel.ID, models.CreateRelationshipRequest{FromID: a.ID, ToID: a.ID, Kind: "self"})
	assert.True(t, apperrors.IsValidationError(err))

	require.NoError(t, cs.DeleteRelationship(f.novel.ID, rel.ID))
	assert.True(t, apperrors.IsNotFoundError(cs.DeleteRelationship(f.novel.ID, rel.ID)))
}

func TestPOVAssignmentsLiveOnScenes(t *testing.T) {
	f := newFixture(t)
	cs := f.characters

	mara, err := cs.CreateCharacter(f.novel.ID, models.CreateCharacterRequest{Name: "Mara"})
	require.NoError(t, err)

	require.NoError(t, cs.AssignPOV(f.novel.ID, models.POVAssignment{SceneID: f.ids["Sc3"], CharacterID: mara.ID}))
	povs, err := cs.ListPOVAssignments(f.novel.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.POVAssignment{{SceneID: f.ids["Sc3"], CharacterID: mara.ID}}, povs)

	err = cs.AssignPOV(f.novel.ID, models.POVAssignment{SceneID: f.ids["Sc1"], CharacterID: "ghost"})
	assert.True(t, apperrors.IsNotFoundError(err))

	// Deleting the character clears its scenes.
	require.NoError(t, cs.DeleteCharacter(f.novel.ID, mara.ID))
	povs, err = cs.ListPOVAssignments(f.novel.ID)
	require.NoError(t, err)
	assert.Empty(t, povs)
}

func TestMentionsScanProse(t *testing.T) {
	f := newFixture(t)
	cs := f.characters

	mara, err := cs.CreateCharacter(f.novel.ID, models.CreateCharacterRequest{Name: "Mara", Aliases: []string{"the Captain"}})
	require.NoError(t, err)

	one := "Mara stood on the dock. The captain, everyone said, never slept. MARA laughed."
	two := "Tobin waited. Nobody named Maras here."
	_, err = f.manuscript.UpdateScene(f.novel.ID, f.ids["Sc1"], models.UpdateSceneRequest{Content: &one})
	require.NoError(t, err)
	_, err = f.manuscript.UpdateScene(f.novel.ID, f.ids["Sc3"], models.UpdateSceneRequest{Content: &two})
	require.NoError(t, err)

	mentions, err := cs.Mentions(f.novel.ID, mara.ID)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, f.ids["Sc1"], mentions[0].SceneID)
	assert.Equal(t, 3, mentions[0].Count)
	assert.Contains(t, mentions[0].Excerpt, "Mara stood on the dock")

	_, err = cs.Mentions(f.novel.ID, "")
	assert.True(t, apperrors.IsValidationError(err))
}

func TestMentionMatcherBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		char    models.Character
		content string
		want    int
	}{
		{"ascii name", models.Character{Name: "Mara"}, "Then Mara ran.", 1},
		{"ascii name inside word", models.Character{Name: "Mara"}, "A marathon, not Maras.", 0},
		{"trailing non-ascii letter", models.Character{Name: "Zoë"}, "Then Zoë ran. ZOË!", 2},
		{"leading non-ascii letter", models.Character{Name: "Éva"}, "Then Éva ran.", 1},
		{"non-ascii name inside word", models.Character{Name: "Éva"}, "Évanescent light.", 0},
		{"chinese prose", models.Character{Name: "李雷"}, "然后李雷跑了。李雷笑了。", 2},
		{"chinese name in english prose", models.Character{Name: "李雷"}, "Then 李雷 ran.", 1},
		{"latin name in chinese prose", models.Character{Name: "Mara"}, "然后Mara跑了。", 1},
		{"alias and longer name", models.Character{Name: "Mara", Aliases: []string{"Mara Lind"}}, "Mara Lind smiled at Mara.", 2},
		{"longer name rejected, short one kept", models.Character{Name: "Mara", Aliases: []string{"Mara Lind"}}, "Mara Lindqvist came.", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.char
			assert.Len(t, newMentionMatcher(&c).find(tt.content), tt.want)
		})
	}
}

func TestMentionsScanChineseProse(t *testing.T) {
	f := newFixture(t)
	cs := f.characters

	li, err := cs.CreateCharacter(f.novel.ID, models.CreateCharacterRequest{Name: "李雷"})
	require.NoError(t, err)
	prose := "然后李雷跑了。韩梅梅看着李雷。"
	_, err = f.manuscript.UpdateScene(f.novel.ID, f.ids["Sc2"], models.UpdateSceneRequest{Content: &prose})
	require.NoError(t, err)

	mentions, err := cs.Mentions(f.novel.ID, li.ID)
	require.NoError(t, err)
	require.Len(t, mentions, 1)
	assert.Equal(t, 2, mentions[0].Count)
	assert.Contains(t, mentions[0].Excerpt, "李雷")
}

func TestCastRequiresNovel(t *testing.T) {
	f := newFixture(t)

	_, err := f.characters.ListCharacters("missing")
	assert.True(t, apperrors.IsNotFoundError(err))
}
