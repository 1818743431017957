// internal/api/manuscript_handlers.go
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Corphon/NovelForge/internal/models"
)

func novelID(c *gin.Context) string {
	return c.Param("novelId")
}

// GetStructure returns the act/chapter/scene tree.
func (h *Handler) GetStructure(c *gin.Context) {
	novel, err := h.ManuscriptService.GetStructure(novelID(c))
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, novel)
}

// DeleteNovel removes a novel with its characters and stats.
func (h *Handler) DeleteNovel(c *gin.Context) {
	id := novelID(c)
	if err := h.ManuscriptService.DeleteNovel(id); err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.StatsService.Forget(id)
	h.Response.Success(c, nil, "novel deleted")
}

// DeleteStructure removes every act.
func (h *Handler) DeleteStructure(c *gin.Context) {
	if err := h.ManuscriptService.DeleteStructure(novelID(c)); err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, nil, "structure deleted")
}

// GetWritingStats returns the words-written history alongside the current total.
func (h *Handler) GetWritingStats(c *gin.Context) {
	novel, err := h.ManuscriptService.GetStructure(novelID(c))
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	stats, err := h.StatsService.Get(novel.ID)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	stats.TotalWords = novel.WordCount()
	h.Response.Success(c, stats)
}

// ===============================
// Acts
// ===============================

func (h *Handler) CreateAct(c *gin.Context) {
	var req models.CreateActRequest
	if !h.bindJSON(c, &req) {
		return
	}
	act, err := h.ManuscriptService.CreateAct(novelID(c), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Created(c, act)
}

// RenameAct handles PUT /acts/:id.
func (h *Handler) RenameAct(c *gin.Context) {
	var req models.RenameRequest
	if !h.bindJSON(c, &req) {
		return
	}
	act, err := h.ManuscriptService.RenameAct(novelID(c), c.Param("id"), req.Title)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, act)
}

func (h *Handler) ReorderAct(c *gin.Context) {
	var req models.ReorderActRequest
	if !h.bindJSON(c, &req) {
		return
	}
	act, err := h.ManuscriptService.ReorderAct(novelID(c), c.Param("id"), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, act)
}

func (h *Handler) DeleteAct(c *gin.Context) {
	if err := h.ManuscriptService.DeleteAct(novelID(c), c.Param("id")); err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, nil, "act deleted")
}

// ===============================
// Chapters
// ===============================

func (h *Handler) CreateChapter(c *gin.Context) {
	var req models.CreateChapterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ActID == "" {
		h.Response.BadRequest(c, ErrorMissingParam, "actId is required")
		return
	}
	chapter, err := h.ManuscriptService.CreateChapter(novelID(c), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Created(c, chapter)
}

// RenameChapter handles PUT /chapters/:id.
func (h *Handler) RenameChapter(c *gin.Context) {
	var req models.RenameRequest
	if !h.bindJSON(c, &req) {
		return
	}
	chapter, err := h.ManuscriptService.RenameChapter(novelID(c), c.Param("id"), req.Title)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, chapter)
}

func (h *Handler) ReorderChapter(c *gin.Context) {
	var req models.ReorderChapterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	chapter, err := h.ManuscriptService.ReorderChapter(novelID(c), c.Param("id"), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, chapter)
}

func (h *Handler) DeleteChapter(c *gin.Context) {
	if err := h.ManuscriptService.DeleteChapter(novelID(c), c.Param("id")); err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, nil, "chapter deleted")
}

// ===============================
// Scenes
// ===============================

func (h *Handler) CreateScene(c *gin.Context) {
	var req models.CreateSceneRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if req.ChapterID == "" {
		h.Response.BadRequest(c, ErrorMissingParam, "chapterId is required")
		return
	}
	scene, err := h.ManuscriptService.CreateScene(novelID(c), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Created(c, scene)
}

// UpdateScene handles PUT /scenes/:id. A body with only a title is a rename.
func (h *Handler) UpdateScene(c *gin.Context) {
	var req models.UpdateSceneRequest
	if !h.bindJSON(c, &req) {
		return
	}
	scene, err := h.ManuscriptService.UpdateScene(novelID(c), c.Param("id"), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, scene)
}

func (h *Handler) ReorderScene(c *gin.Context) {
	var req models.ReorderSceneRequest
	if !h.bindJSON(c, &req) {
		return
	}
	scene, err := h.ManuscriptService.ReorderScene(novelID(c), c.Param("id"), req)
	if err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, scene)
}

func (h *Handler) DeleteScene(c *gin.Context) {
	if err := h.ManuscriptService.DeleteScene(novelID(c), c.Param("id")); err != nil {
		h.Response.FromError(c, err)
		return
	}
	h.Response.Success(c, nil, "scene deleted")
}
