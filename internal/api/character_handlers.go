// internal/api/character_handlers.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Corphon/NovelForge/internal/models"
)

func (h *Handler) ListCharacters(c *gin.Context) {
	characters, err := h.CharacterService.ListCharacters(novelID(c))
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, characters)
}

func (h *Handler) GetCharacter(c *gin.Context) {
	character, err := h.CharacterService.GetCharacter(novelID(c), c.Param("id"))
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, character)
}

func (h *Handler) CreateCharacter(c *gin.Context) {
	var req models.CreateCharacterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	character, err := h.CharacterService.CreateCharacter(novelID(c), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Created(c, character)
}

func (h *Handler) UpdateCharacter(c *gin.Context) {
	var req models.UpdateCharacterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	character, err := h.CharacterService.UpdateCharacter(novelID(c), c.Param("id"), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, character)
}

func (h *Handler) DeleteCharacter(c *gin.Context) {
	if err := h.CharacterService.DeleteCharacter(novelID(c), c.Param("id")); err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, nil, "character deleted")
}

// ListStates returns a character's state history.
func (h *Handler) ListStates(c *gin.Context) {
	states, err := h.CharacterService.ListStates(novelID(c), c.Param("id"))
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, states)
}

func (h *Handler) CreateState(c *gin.Context) {
	var req models.CreateStateRequest
	if !h.bindJSON(c, &req) {
		return
	}
	state, err := h.CharacterService.CreateState(novelID(c), c.Param("id"), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Created(c, state)
}

func (h *Handler) ListRelationships(c *gin.Context) {
	relationships, err := h.CharacterService.ListRelationships(novelID(c))
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, relationships)
}

func (h *Handler) CreateRelationship(c *gin.Context) {
	var req models.CreateRelationshipRequest
	if !h.bindJSON(c, &req) {
		return
	}
	relationship, err := h.CharacterService.CreateRelationship(novelID(c), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Created(c, relationship)
}

func (h *Handler) DeleteRelationship(c *gin.Context) {
	if err := h.CharacterService.DeleteRelationship(novelID(c), c.Param("id")); err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, nil, "relationship deleted")
}

func (h *Handler) ListPOVAssignments(c *gin.Context) {
	assignments, err := h.CharacterService.ListPOVAssignments(novelID(c))
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, assignments)
}

// AssignPOV sets a scene's narrator; an empty characterId clears it.
func (h *Handler) AssignPOV(c *gin.Context) {
	var req models.POVAssignment
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.CharacterService.AssignPOV(novelID(c), req); err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, req)
}

// Mentions handles GET /mentions?characterId=.
func (h *Handler) Mentions(c *gin.Context) {
	characterID := c.Query("characterId")
	if characterID == "" {
		h.Response.BadRequest(c, ErrorMissingParam, "characterId query parameter is required")
		return
	}
	mentions, err := h.CharacterService.Mentions(novelID(c), characterID)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, mentions)
}
