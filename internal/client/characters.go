// internal/client/characters.go
package client

import (
	"context"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/Corphon/NovelForge/internal/models"
)

func (c *Client) ListCharacters(ctx context.Context, novelID string) ([]models.Character, error) {
	var out []models.Character
	if err := c.do(ctx, http.MethodGet, novelPath(novelID, "characters"), "characters", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCharacter(ctx context.Context, novelID, characterID string) (*models.Character, error) {
	var out models.Character
	if err := c.do(ctx, http.MethodGet, novelPath(novelID, "characters", characterID), "characters_id", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCharacter(ctx context.Context, novelID string, req models.CreateCharacterRequest) (*models.Character, error) {
	var out models.Character
	if err := c.do(ctx, http.MethodPost, novelPath(novelID, "characters"), "characters", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateCharacter(ctx context.Context, novelID, characterID string, req models.UpdateCharacterRequest) (*models.Character, error) {
	var out models.Character
	if err := c.do(ctx, http.MethodPut, novelPath(novelID, "characters", characterID), "characters_id", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCharacter(ctx context.Context, novelID, characterID string) error {
	return c.do(ctx, http.MethodDelete, novelPath(novelID, "characters", characterID), "characters_id", nil, nil)
}

// ListStates returns a character's state snapshots, oldest first.
func (c *Client) ListStates(ctx context.Context, novelID, characterID string) ([]models.CharacterState, error) {
	var out []models.CharacterState
	if err := c.do(ctx, http.MethodGet, novelPath(novelID, "characters", characterID, "states"), "characters_states", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateState(ctx context.Context, novelID, characterID string, req models.CreateStateRequest) (*models.CharacterState, error) {
	var out models.CharacterState
	if err := c.do(ctx, http.MethodPost, novelPath(novelID, "characters", characterID, "states"), "characters_states", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListRelationships(ctx context.Context, novelID string) ([]models.Relationship, error) {
	var out []models.Relationship
	if err := c.do(ctx, http.MethodGet, novelPath(novelID, "relationships"), "relationships", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateRelationship(ctx context.Context, novelID string, req models.CreateRelationshipRequest) (*models.Relationship, error) {
	var out models.Relationship
	if err := c.do(ctx, http.MethodPost, novelPath(novelID, "relationships"), "relationships", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteRelationship(ctx context.Context, novelID, relationshipID string) error {
	return c.do(ctx, http.MethodDelete, novelPath(novelID, "relationships", relationshipID), "relationships_id", nil, nil)
}

func (c *Client) ListPOVAssignments(ctx context.Context, novelID string) ([]models.POVAssignment, error) {
	var out []models.POVAssignment
	if err := c.do(ctx, http.MethodGet, novelPath(novelID, "pov-assignments"), "pov_assignments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignPOV sets the narrating character of a scene; an empty character id clears it.
func (c *Client) AssignPOV(ctx context.Context, novelID string, req models.POVAssignment) error {
	return c.do(ctx, http.MethodPut, novelPath(novelID, "pov-assignments"), "pov_assignments", req, nil)
}

// Mentions lists the scenes whose prose names the character.
func (c *Client) Mentions(ctx context.Context, novelID, characterID string) ([]models.Mention, error) {
	path := novelPath(novelID, "mentions") + "?characterId=" + url.QueryEscape(characterID)
	var out []models.Mention
	if err := c.do(ctx, http.MethodGet, path, "mentions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadCast fetches characters, relationships and point-of-view assignments
// concurrently. The first failure cancels the others.
func (c *Client) LoadCast(ctx context.Context, novelID string) (*models.Cast, error) {
	cast := &models.Cast{}
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		chars, err := c.ListCharacters(egCtx, novelID)
		cast.Characters = chars
		return err
	})
	eg.Go(func() error {
		rels, err := c.ListRelationships(egCtx, novelID)
		cast.Relationships = rels
		return err
	})
	eg.Go(func() error {
		povs, err := c.ListPOVAssignments(egCtx, novelID)
		cast.POVAssignments = povs
		return err
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return cast, nil
}
