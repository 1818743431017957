// internal/models/character.go
package models

import "time"

// Character is a profile in the novel's cast.
type Character struct {
	ID          string    `json:"id"`
	NovelID     string    `json:"novelId"`
	Name        string    `json:"name"`
	Aliases     []string  `json:"aliases,omitempty"`
	Role        string    `json:"role,omitempty"`
	Description string    `json:"description,omitempty"`
	Background  string    `json:"background,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CharacterState is a snapshot of how a character has evolved, anchored to the scene
// where the change happens.
type CharacterState struct {
	ID          string            `json:"id"`
	CharacterID string            `json:"characterId"`
	SceneID     string            `json:"sceneId,omitempty"`
	Label       string            `json:"label"`
	Notes       string            `json:"notes,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Relationship links two characters.
type Relationship struct {
	ID          string    `json:"id"`
	NovelID     string    `json:"novelId"`
	FromID      string    `json:"fromCharacterId"`
	ToID        string    `json:"toCharacterId"`
	Kind        string    `json:"kind"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// POVAssignment records which character narrates a scene.
type POVAssignment struct {
	SceneID     string `json:"sceneId"`
	CharacterID string `json:"characterId"`
}

// Mention is one occurrence of a character name in scene prose.
type Mention struct {
	CharacterID string `json:"characterId"`
	SceneID     string `json:"sceneId"`
	SceneTitle  string `json:"sceneTitle"`
	Count       int    `json:"count"`
	Excerpt     string `json:"excerpt,omitempty"`
}

type CreateCharacterRequest struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases,omitempty"`
	Role        string   `json:"role,omitempty"`
	Description string   `json:"description,omitempty"`
	Background  string   `json:"background,omitempty"`
}

type UpdateCharacterRequest struct {
	Name        *string   `json:"name,omitempty"`
	Aliases     *[]string `json:"aliases,omitempty"`
	Role        *string   `json:"role,omitempty"`
	Description *string   `json:"description,omitempty"`
	Background  *string   `json:"background,omitempty"`
}

type CreateStateRequest struct {
	SceneID    string            `json:"sceneId,omitempty"`
	Label      string            `json:"label"`
	Notes      string            `json:"notes,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type CreateRelationshipRequest struct {
	FromID      string `json:"fromCharacterId"`
	ToID        string `json:"toCharacterId"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
}

// Cast bundles the character-domain collections of one novel.
type Cast struct {
	Characters     []Character     `json:"characters"`
	Relationships  []Relationship  `json:"relationships"`
	POVAssignments []POVAssignment `json:"povAssignments"`
}

// CharacterName resolves an id to a display name, empty when unknown.
func (c *Cast) CharacterName(id string) string {
	if c == nil {
		return ""
	}
	for _, ch := range c.Characters {
		if ch.ID == id {
			return ch.Name
		}
	}
	return ""
}
