package server

import (
	"time"

	"quill/internal/models"
	"quill/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

type groupDTO struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type authorDTO struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Bio      string `json:"bio,omitempty"`
}

type postDTO struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	AuthorID  uint      `json:"author_id"`
	Author    string    `json:"author,omitempty"`
	Group     *groupDTO `json:"group,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type pageDTO struct {
	Items      []postDTO `json:"items"`
	Number     int       `json:"number"`
	Size       int       `json:"size"`
	TotalItems int       `json:"total_items"`
	TotalPages int       `json:"total_pages"`
	HasNext    bool      `json:"has_next"`
	HasPrev    bool      `json:"has_prev"`
}

func toGroupDTO(group *models.Group) *groupDTO {
	if group == nil {
		return nil
	}
	return &groupDTO{
		ID:          group.ID,
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
}

func toAuthorDTO(user *models.User) authorDTO {
	return authorDTO{
		ID:       user.ID,
		Username: user.Username,
		Bio:      user.Bio,
	}
}

func toPostDTO(post *models.Post) postDTO {
	dto := postDTO{
		ID:        post.ID,
		Text:      post.Text,
		AuthorID:  post.UserID,
		Author:    post.User.Username,
		Group:     toGroupDTO(post.Group),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	return dto
}

func toPageDTO(page pagination.Page[*models.Post]) pageDTO {
	items := make([]postDTO, 0, len(page.Items))
	for _, post := range page.Items {
		items = append(items, toPostDTO(post))
	}
	return pageDTO{
		Items:      items,
		Number:     page.Number,
		Size:       page.Size,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
		HasNext:    page.HasNext(),
		HasPrev:    page.HasPrev(),
	}
}

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.feedService.Index(c.Context(), parsePage(c))
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"page": toPageDTO(page),
	})
}

// GroupFeed handles GET /group/:slug
func (s *Server) GroupFeed(c *fiber.Ctx) error {
	slug := c.Params("slug")

	group, page, err := s.feedService.GroupFeed(c.Context(), slug, parsePage(c))
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"group": toGroupDTO(group),
		"page":  toPageDTO(page),
	})
}

// Profile handles GET /profile/:username
func (s *Server) Profile(c *fiber.Ctx) error {
	username := c.Params("username")

	user, page, count, err := s.feedService.Profile(c.Context(), username, parsePage(c))
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"author":      toAuthorDTO(user),
		"posts_count": count,
		"page":        toPageDTO(page),
	})
}

// PostDetail handles GET /posts/:id
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, count, err := s.feedService.Detail(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"post":               toPostDTO(post),
		"author_posts_count": count,
	})
}
