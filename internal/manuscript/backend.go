// internal/manuscript/backend.go
package manuscript

import (
	"context"

	"github.com/Corphon/NovelForge/internal/models"
)

// Backend is the remote side of the editor: the /api/novels/{novelId} REST surface.
// client.Client implements it; tests substitute an in-memory fake.
type Backend interface {
	GetStructure(ctx context.Context, novelID string) (*models.Novel, error)
	DeleteStructure(ctx context.Context, novelID string) error

	RenameAct(ctx context.Context, novelID, actID, title string) (*models.Act, error)
	RenameChapter(ctx context.Context, novelID, chapterID, title string) (*models.Chapter, error)
	RenameScene(ctx context.Context, novelID, sceneID, title string) (*models.Scene, error)

	ReorderAct(ctx context.Context, novelID, actID string, req models.ReorderActRequest) (*models.Act, error)
	ReorderChapter(ctx context.Context, novelID, chapterID string, req models.ReorderChapterRequest) (*models.Chapter, error)
	ReorderScene(ctx context.Context, novelID, sceneID string, req models.ReorderSceneRequest) (*models.Scene, error)

	CreateAct(ctx context.Context, novelID string, req models.CreateActRequest) (*models.Act, error)
	CreateChapter(ctx context.Context, novelID string, req models.CreateChapterRequest) (*models.Chapter, error)
	CreateScene(ctx context.Context, novelID string, req models.CreateSceneRequest) (*models.Scene, error)

	DeleteAct(ctx context.Context, novelID, actID string) error
	DeleteChapter(ctx context.Context, novelID, chapterID string) error
	DeleteScene(ctx context.Context, novelID, sceneID string) error

	UpdateScene(ctx context.Context, novelID, sceneID string, req models.UpdateSceneRequest) (*models.Scene, error)
}
