package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill/internal/models"
	"quill/internal/repository"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// newIntegrationServer wires real repositories over sqlite, skipping the
// Prometheus registration done by NewServerWithDeps.
func newIntegrationServer(db *gorm.DB) *Server {
	postRepo := repository.NewPostRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	userRepo := repository.NewUserRepository(db)

	s := &Server{
		db:        db,
		userRepo:  userRepo,
		postRepo:  postRepo,
		groupRepo: groupRepo,
	}
	s.postService = service.NewPostService(postRepo, groupRepo)
	s.feedService = service.NewFeedService(postRepo, groupRepo, userRepo, 10)
	return s
}

// seedTimeline creates an author, a group, and n posts in that group with
// strictly increasing timestamps.
func seedTimeline(t *testing.T, db *gorm.DB, n int) (*models.User, *models.Group) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Username: "leo", Email: "leo@example.com", Password: "x"}
	require.NoError(t, db.WithContext(ctx).Create(user).Error)

	group := &models.Group{Title: "Super group", Slug: "supergroup", Description: "test group"}
	require.NoError(t, db.WithContext(ctx).Create(group).Error)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		post := &models.Post{
			Text:      fmt.Sprintf("entry %d", i),
			UserID:    user.ID,
			GroupID:   &group.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.WithContext(ctx).Create(post).Error)
	}

	return user, group
}

func TestGroupFeedPagination_Integration(t *testing.T) {
	db := setupIntegrationDB(t)
	s := newIntegrationServer(db)
	seedTimeline(t, db, 11)

	app := fiber.New()
	app.Get("/group/:slug", s.GroupFeed)

	t.Run("page one holds ten newest posts", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/group/supergroup", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		page := body["page"].(map[string]any)
		items := page["items"].([]any)
		require.Len(t, items, 10)
		assert.Equal(t, float64(2), page["total_pages"])
		assert.Equal(t, float64(11), page["total_items"])

		first := items[0].(map[string]any)
		assert.Equal(t, "entry 11", first["text"])
	})

	t.Run("page two holds the single oldest post", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/group/supergroup?page=2", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		body := decodeBody(t, resp)
		page := body["page"].(map[string]any)
		items := page["items"].([]any)
		require.Len(t, items, 1)

		only := items[0].(map[string]any)
		assert.Equal(t, "entry 1", only["text"])
	})

	t.Run("page beyond the end clamps to the last page", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/group/supergroup?page=50", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		body := decodeBody(t, resp)
		page := body["page"].(map[string]any)
		assert.Equal(t, float64(2), page["number"])
	})
}

func TestAuthoringFlow_Integration(t *testing.T) {
	db := setupIntegrationDB(t)
	s := newIntegrationServer(db)
	author, group := seedTimeline(t, db, 1)

	intruder := &models.User{Username: "mallory", Email: "mallory@example.com", Password: "x"}
	require.NoError(t, db.Create(intruder).Error)

	appFor := func(userID uint) *fiber.App {
		app := fiber.New()
		asUser(app, userID)
		app.Post("/create", s.CreatePost)
		app.Post("/posts/:id/edit", s.UpdatePost)
		app.Get("/profile/:username", s.Profile)
		return app
	}

	t.Run("create persists exactly one post by the caller", func(t *testing.T) {
		app := appFor(author.ID)

		resp, err := app.Test(jsonRequest(t, http.MethodPost, "/create", map[string]any{
			"text":     "fresh entry",
			"group_id": group.ID,
		}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/profile/leo", resp.Header.Get("Location"))

		var count int64
		require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", author.ID).Count(&count).Error)
		assert.Equal(t, int64(2), count)
	})

	t.Run("non-owner edit leaves the post untouched", func(t *testing.T) {
		var post models.Post
		require.NoError(t, db.Where("user_id = ?", author.ID).First(&post).Error)

		app := appFor(intruder.ID)
		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/posts/%d/edit", post.ID), map[string]any{"text": "hijacked"}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, fmt.Sprintf("/posts/%d", post.ID), resp.Header.Get("Location"))

		var reloaded models.Post
		require.NoError(t, db.First(&reloaded, post.ID).Error)
		assert.Equal(t, post.Text, reloaded.Text)
		assert.Equal(t, author.ID, reloaded.UserID)
	})

	t.Run("owner edit changes only the text", func(t *testing.T) {
		var post models.Post
		require.NoError(t, db.Where("user_id = ?", author.ID).First(&post).Error)

		app := appFor(author.ID)
		resp, err := app.Test(jsonRequest(t, http.MethodPost,
			fmt.Sprintf("/posts/%d/edit", post.ID), map[string]any{
				"text":     "revised entry",
				"group_id": group.ID,
			}))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

		var reloaded models.Post
		require.NoError(t, db.First(&reloaded, post.ID).Error)
		assert.Equal(t, "revised entry", reloaded.Text)
		assert.Equal(t, author.ID, reloaded.UserID)
	})

	t.Run("profile reflects the post count", func(t *testing.T) {
		app := appFor(author.ID)
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/leo", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, float64(2), body["posts_count"])
	})
}
