// internal/client/client_test.go
package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/Corphon/NovelForge/internal/errors"
	"github.com/Corphon/NovelForge/internal/manuscript"
	"github.com/Corphon/NovelForge/internal/models"
	"github.com/Corphon/NovelForge/internal/utils"
)

var _ manuscript.Backend = (*Client)(nil)

type captured struct {
	method    string
	path      string
	body      map[string]interface{}
	requestID string
}

func newTestServer(t *testing.T, register func(r *gin.Engine, seen chan<- captured)) (*Client, <-chan captured) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	seen := make(chan captured, 16)
	register(r, seen)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	c := New(srv.URL, Options{
		Timeout: 2 * time.Second,
		Logger:  utils.NewLogger(zap.NewNop()),
		Metrics: utils.NewMetricsCollector(),
	})
	return c, seen
}

func capture(c *gin.Context) captured {
	got := captured{method: c.Request.Method, path: c.Request.URL.Path, requestID: c.GetHeader(RequestIDHeader)}
	if c.Request.ContentLength > 0 {
		_ = json.NewDecoder(c.Request.Body).Decode(&got.body)
	}
	return got
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func TestReorderSceneSendsBodyAndDecodes(t *testing.T) {
	cl, seen := newTestServer(t, func(r *gin.Engine, seen chan<- captured) {
		r.PUT("/api/novels/:novelId/scenes/:sceneId/reorder", func(c *gin.Context) {
			seen <- capture(c)
			ok(c, models.Scene{ID: c.Param("sceneId"), ChapterID: "Ch2", Order: 1})
		})
	})

	sc, err := cl.ReorderScene(context.Background(), "N1", "Sc1", models.ReorderSceneRequest{NewOrder: 1, NewChapterID: "Ch2"})
	require.NoError(t, err)
	assert.Equal(t, "Ch2", sc.ChapterID)

	got := <-seen
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/api/novels/N1/scenes/Sc1/reorder", got.path)
	assert.Equal(t, map[string]interface{}{"newOrder": float64(1), "newChapterId": "Ch2"}, got.body)
	assert.NotEmpty(t, got.requestID)
}

func TestReorderWithinContainerOmitsParent(t *testing.T) {
	cl, seen := newTestServer(t, func(r *gin.Engine, seen chan<- captured) {
		r.PUT("/api/novels/:novelId/chapters/:chapterId/reorder", func(c *gin.Context) {
			seen <- capture(c)
			ok(c, models.Chapter{ID: c.Param("chapterId")})
		})
	})

	_, err := cl.ReorderChapter(context.Background(), "N1", "Ch2", models.ReorderChapterRequest{NewOrder: 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"newOrder": float64(1)}, (<-seen).body)
}

func TestSuccessFalseIsRemoteError(t *testing.T) {
	cl, _ := newTestServer(t, func(r *gin.Engine, _ chan<- captured) {
		r.PUT("/api/novels/:novelId/acts/:actId", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "title already used", "code": "CONFLICT"})
		})
	})

	_, err := cl.RenameAct(context.Background(), "N1", "Act1", "Dup")
	require.Error(t, err)
	assert.True(t, apperrors.IsRemoteError(err))
	assert.Equal(t, "title already used", apperrors.UserMessage(err))
	assert.Equal(t, "CONFLICT", apperrors.CodeOf(err))
	assert.Equal(t, int64(1), cl.Metrics().GetCounterValue("client_errors_CONFLICT"))
}

func TestNon2xxIsNetworkErrorWithServerMessage(t *testing.T) {
	cl, _ := newTestServer(t, func(r *gin.Engine, _ chan<- captured) {
		r.DELETE("/api/novels/:novelId/scenes/:sceneId", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "scene not found", "code": "NOT_FOUND"})
		})
		r.GET("/api/novels/:novelId/structure", func(c *gin.Context) {
			c.String(http.StatusBadGateway, "<html>bad gateway</html>")
		})
	})

	err := cl.DeleteScene(context.Background(), "N1", "ghost")
	require.Error(t, err)
	assert.True(t, apperrors.IsNetworkError(err))
	assert.Equal(t, "scene not found", apperrors.UserMessage(err))

	_, err = cl.GetStructure(context.Background(), "N1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNetworkError(err))
	assert.Contains(t, apperrors.UserMessage(err), "502")

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.StatusCode)
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	cl := New("http://127.0.0.1:1", Options{Timeout: time.Second, Logger: utils.NewLogger(zap.NewNop()), Metrics: utils.NewMetricsCollector()})

	_, err := cl.GetStructure(context.Background(), "N1")
	require.Error(t, err)
	assert.True(t, apperrors.IsNetworkError(err))
	assert.Equal(t, int64(1), cl.Metrics().GetCounterValue("client_responses_none"))
}

func TestGetStructureFillsMissingID(t *testing.T) {
	cl, _ := newTestServer(t, func(r *gin.Engine, _ chan<- captured) {
		r.GET("/api/novels/:novelId/structure", func(c *gin.Context) {
			ok(c, gin.H{"acts": []gin.H{{"id": "Act1", "title": "One", "order": 1, "chapters": []gin.H{}}}})
		})
	})

	n, err := cl.GetStructure(context.Background(), "N1")
	require.NoError(t, err)
	assert.Equal(t, "N1", n.ID)
	require.Len(t, n.Acts, 1)
	assert.Equal(t, int64(1), cl.Metrics().GetCounterValue("client_requests_GET_structure"))
}

func TestLoadCastRunsConcurrently(t *testing.T) {
	cl, _ := newTestServer(t, func(r *gin.Engine, _ chan<- captured) {
		r.GET("/api/novels/:novelId/characters", func(c *gin.Context) {
			ok(c, []models.Character{{ID: "c1", Name: "Mara"}})
		})
		r.GET("/api/novels/:novelId/relationships", func(c *gin.Context) {
			ok(c, []models.Relationship{{ID: "r1", FromID: "c1", ToID: "c2", Kind: "rival"}})
		})
		r.GET("/api/novels/:novelId/pov-assignments", func(c *gin.Context) {
			ok(c, []models.POVAssignment{{SceneID: "Sc1", CharacterID: "c1"}})
		})
	})

	cast, err := cl.LoadCast(context.Background(), "N1")
	require.NoError(t, err)
	assert.Equal(t, "Mara", cast.CharacterName("c1"))
	assert.Len(t, cast.Relationships, 1)
	assert.Len(t, cast.POVAssignments, 1)
}

func TestLoadCastFailsOnAnyError(t *testing.T) {
	cl, _ := newTestServer(t, func(r *gin.Engine, _ chan<- captured) {
		r.GET("/api/novels/:novelId/characters", func(c *gin.Context) { ok(c, []models.Character{}) })
		r.GET("/api/novels/:novelId/relationships", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "storage offline"})
		})
		r.GET("/api/novels/:novelId/pov-assignments", func(c *gin.Context) { ok(c, []models.POVAssignment{}) })
	})

	_, err := cl.LoadCast(context.Background(), "N1")
	require.Error(t, err)
	assert.Equal(t, "storage offline", apperrors.UserMessage(err))
}

func TestMentionsEscapesQuery(t *testing.T) {
	cl, _ := newTestServer(t, func(r *gin.Engine, _ chan<- captured) {
		r.GET("/api/novels/:novelId/mentions", func(c *gin.Context) {
			ok(c, []models.Mention{{CharacterID: c.Query("characterId"), SceneID: "Sc1", Count: 2}})
		})
	})

	got, err := cl.Mentions(context.Background(), "N1", "a b&c")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a b&c", got[0].CharacterID)
}
