// internal/client/manuscript.go
package client

import (
	"context"
	"net/http"

	"github.com/Corphon/NovelForge/internal/models"
)

// ListNovels returns the novel index.
func (c *Client) ListNovels(ctx context.Context) ([]models.NovelSummary, error) {
	var out []models.NovelSummary
	if err := c.do(ctx, http.MethodGet, "/api/novels", "novels", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateNovel creates an empty novel.
func (c *Client) CreateNovel(ctx context.Context, title string) (*models.Novel, error) {
	var out models.Novel
	if err := c.do(ctx, http.MethodPost, "/api/novels", "novels", models.CreateNovelRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteNovel removes a novel and everything stored with it.
func (c *Client) DeleteNovel(ctx context.Context, novelID string) error {
	return c.do(ctx, http.MethodDelete, novelPath(novelID), "novels", nil, nil)
}

// GetStructure fetches the full act/chapter/scene tree.
func (c *Client) GetStructure(ctx context.Context, novelID string) (*models.Novel, error) {
	var out models.Novel
	if err := c.do(ctx, http.MethodGet, novelPath(novelID, "structure"), "structure", nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = novelID
	}
	return &out, nil
}

// WritingStats fetches the words-written history of a novel.
func (c *Client) WritingStats(ctx context.Context, novelID string) (*models.WritingStats, error) {
	var out models.WritingStats
	if err := c.do(ctx, http.MethodGet, novelPath(novelID, "stats"), "stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStructure removes every act of the novel.
func (c *Client) DeleteStructure(ctx context.Context, novelID string) error {
	return c.do(ctx, http.MethodDelete, novelPath(novelID, "structure"), "structure", nil, nil)
}

func (c *Client) RenameAct(ctx context.Context, novelID, actID, title string) (*models.Act, error) {
	var out models.Act
	if err := c.do(ctx, http.MethodPut, novelPath(novelID, "acts", actID), "acts_id", models.RenameRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenameChapter(ctx context.Context, novelID, chapterID, title string) (*models.Chapter, error) {
	var out models.Chapter
	if err := c.do(ctx, http.MethodPut, novelPath(novelID, "chapters", chapterID), "chapters_id", models.RenameRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenameScene(ctx context.Context, novelID, sceneID, title string) (*models.Scene, error) {
	var out models.Scene
	if err := c.do(ctx, http.MethodPut, novelPath(novelID, "scenes", sceneID), "scenes_id", models.RenameRequest{Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReorderAct(ctx context.Context, novelID, actID string, req models.ReorderActRequest) (*models.Act, error) {
	var out models.Act
	if err := c.do(ctx, http.MethodPut, novelPath(novelID, "acts", actID, "reorder"), "acts_reorder", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReorderChapter(ctx context.Context, novelID, chapterID string, req models.ReorderChapterRequest) (*models.Chapter, error) {
	var out models.Chapter
	if err := c.do(ctx, http.MethodPut, novelPath(novelID, "chapters", chapterID, "reorder"), "chapters_reorder", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReorderScene(ctx context.Context, novelID, sceneID string, req models.ReorderSceneRequest) (*models.Scene, error) {
	var out models.Scene
	if err := c.do(ctx, http.MethodPut, novelPath(novelID, "scenes", sceneID, "reorder"), "scenes_reorder", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAct(ctx context.Context, novelID string, req models.CreateActRequest) (*models.Act, error) {
	var out models.Act
	if err := c.do(ctx, http.MethodPost, novelPath(novelID, "acts"), "acts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateChapter(ctx context.Context, novelID string, req models.CreateChapterRequest) (*models.Chapter, error) {
	var out models.Chapter
	if err := c.do(ctx, http.MethodPost, novelPath(novelID, "chapters"), "chapters", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateScene(ctx context.Context, novelID string, req models.CreateSceneRequest) (*models.Scene, error) {
	var out models.Scene
	if err := c.do(ctx, http.MethodPost, novelPath(novelID, "scenes"), "scenes", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAct(ctx context.Context, novelID, actID string) error {
	return c.do(ctx, http.MethodDelete, novelPath(novelID, "acts", actID), "acts_id", nil, nil)
}

func (c *Client) DeleteChapter(ctx context.Context, novelID, chapterID string) error {
	return c.do(ctx, http.MethodDelete, novelPath(novelID, "chapters", chapterID), "chapters_id", nil, nil)
}

func (c *Client) DeleteScene(ctx context.Context, novelID, sceneID string) error {
	return c.do(ctx, http.MethodDelete, novelPath(novelID, "scenes", sceneID), "scenes_id", nil, nil)
}

// UpdateScene sends a partial scene update (content, status, point of view).
func (c *Client) UpdateScene(ctx context.Context, novelID, sceneID string, req models.UpdateSceneRequest) (*models.Scene, error) {
	var out models.Scene
	if err := c.do(ctx, http.MethodPut, novelPath(novelID, "scenes", sceneID), "scenes_id", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
