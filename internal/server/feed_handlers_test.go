package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// feedFixture builds n posts newest-first, the order repositories return them.
func feedFixture(n int, userID uint) []*models.Post {
	posts := make([]*models.Post, n)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range posts {
		posts[i] = &models.Post{
			ID:        uint(n - i),
			Text:      fmt.Sprintf("entry %d", n-i),
			UserID:    userID,
			User:      models.User{ID: userID, Username: "leo"},
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return posts
}

func TestIndex(t *testing.T) {
	t.Run("first page of eleven posts", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Get("/", s.Index)

		mocks.posts.On("ListAll", mock.Anything).Return(feedFixture(11, 1), nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		page := body["page"].(map[string]any)
		assert.Len(t, page["items"], 10)
		assert.Equal(t, float64(2), page["total_pages"])
		assert.Equal(t, float64(11), page["total_items"])
		assert.Equal(t, true, page["has_next"])
	})

	t.Run("second page holds the remainder", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Get("/", s.Index)

		mocks.posts.On("ListAll", mock.Anything).Return(feedFixture(11, 1), nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?page=2", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		body := decodeBody(t, resp)
		page := body["page"].(map[string]any)
		assert.Len(t, page["items"], 1)
		assert.Equal(t, false, page["has_next"])
		assert.Equal(t, true, page["has_prev"])
	})

	t.Run("garbage page parameter falls back to 1", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Get("/", s.Index)

		mocks.posts.On("ListAll", mock.Anything).Return(feedFixture(3, 1), nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/?page=banana", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		page := body["page"].(map[string]any)
		assert.Equal(t, float64(1), page["number"])
	})
}

func TestGroupFeed(t *testing.T) {
	t.Run("known slug", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Get("/group/:slug", s.GroupFeed)

		mocks.groups.On("GetBySlug", mock.Anything, "golang").
			Return(&models.Group{ID: 4, Title: "Go", Slug: "golang"}, nil)
		mocks.posts.On("ListByGroup", mock.Anything, uint(4)).Return(feedFixture(3, 1), nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/group/golang", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		group := body["group"].(map[string]any)
		assert.Equal(t, "golang", group["slug"])
		page := body["page"].(map[string]any)
		assert.Len(t, page["items"], 3)
	})

	t.Run("unknown slug returns 404", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Get("/group/:slug", s.GroupFeed)

		mocks.groups.On("GetBySlug", mock.Anything, "nope").
			Return(nil, models.NewNotFoundError("Group", "nope"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/group/nope", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, "NOT_FOUND", body["code"])
	})
}

func TestProfile(t *testing.T) {
	t.Run("known author with post count", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Get("/profile/:username", s.Profile)

		mocks.users.On("GetByUsername", mock.Anything, "leo").
			Return(&models.User{ID: 1, Username: "leo"}, nil)
		mocks.posts.On("ListByUser", mock.Anything, uint(1)).Return(feedFixture(11, 1), nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/leo", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		author := body["author"].(map[string]any)
		assert.Equal(t, "leo", author["username"])
		assert.Equal(t, float64(11), body["posts_count"])
	})

	t.Run("unknown author returns 404", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Get("/profile/:username", s.Profile)

		mocks.users.On("GetByUsername", mock.Anything, "ghost").
			Return(nil, models.NewNotFoundError("User", "ghost"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/profile/ghost", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPostDetail(t *testing.T) {
	t.Run("known post includes author post count", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Get("/posts/:id", s.PostDetail)

		mocks.posts.On("GetByID", mock.Anything, uint(5)).
			Return(&models.Post{ID: 5, Text: "hello", UserID: 1}, nil)
		mocks.posts.On("CountByUser", mock.Anything, uint(1)).Return(int64(14), nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/5", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		post := body["post"].(map[string]any)
		assert.Equal(t, "hello", post["text"])
		assert.Equal(t, float64(14), body["author_posts_count"])
	})

	t.Run("missing post returns 404", func(t *testing.T) {
		s, mocks := newTestServer()
		app := fiber.New()
		app.Get("/posts/:id", s.PostDetail)

		mocks.posts.On("GetByID", mock.Anything, uint(404)).
			Return(nil, models.NewNotFoundError("Post", uint(404)))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/404", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid id returns 400", func(t *testing.T) {
		s, _ := newTestServer()
		app := fiber.New()
		app.Get("/posts/:id", s.PostDetail)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/abc", nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
