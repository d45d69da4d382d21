package server

import (
	"errors"
	"fmt"

	"quill/internal/middleware"
	"quill/internal/models"
	"quill/internal/service"
	"quill/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// postFormRequest is the body accepted by both authoring endpoints,
// as JSON or as an urlencoded form.
type postFormRequest struct {
	Text    string `json:"text" form:"text"`
	GroupID *uint  `json:"group_id" form:"group_id"`
}

// flashCookieMaxAge keeps the warning around just long enough for the next render.
const flashCookieMaxAge = 30

// formContext builds the payload a client needs to render the post form:
// the declared field schema, the current values, and the group choices.
func (s *Server) formContext(c *fiber.Ctx, values postFormRequest, isEdit bool) (fiber.Map, error) {
	groups, err := s.groupRepo.List(c.Context())
	if err != nil {
		return nil, err
	}

	choices := make([]groupDTO, 0, len(groups))
	for i := range groups {
		choices = append(choices, *toGroupDTO(&groups[i]))
	}

	return fiber.Map{
		"is_edit": isEdit,
		"fields":  validation.PostFormSchema(),
		"values": fiber.Map{
			"text":     values.Text,
			"group_id": values.GroupID,
		},
		"group_choices": choices,
	}, nil
}

// setFlash stores a short-lived, user-visible warning for the next page load.
func setFlash(c *fiber.Ctx, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     "flash",
		Value:    message,
		Path:     "/",
		MaxAge:   flashCookieMaxAge,
		HTTPOnly: false,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// NewPostForm handles GET /create
func (s *Server) NewPostForm(c *fiber.Ctx) error {
	form, err := s.formContext(c, postFormRequest{}, false)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(form)
}

// CreatePost handles POST /create
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)

	var req postFormRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(ctx, service.CreatePostInput{
		UserID:  userID,
		Text:    req.Text,
		GroupID: req.GroupID,
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == "VALIDATION_ERROR" {
			// Echo the submitted values so the client can re-render the form.
			return s.renderFormError(c, req, false, appErr)
		}
		return respondAppError(c, err)
	}

	middleware.PostsCreated.Inc()

	author, err := s.userRepo.GetByID(ctx, post.UserID)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.Redirect("/profile/"+author.Username, fiber.StatusSeeOther)
}

// EditPostForm handles GET /posts/:id/edit
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, getErr := s.postRepo.GetByID(ctx, postID)
	if getErr != nil {
		return respondAppError(c, getErr)
	}

	// Non-authors are bounced to the detail page instead of seeing the form.
	if post.UserID != userID {
		middleware.PermissionDenials.Inc()
		setFlash(c, "You can only edit your own posts")
		return c.Redirect(fmt.Sprintf("/posts/%d", postID), fiber.StatusSeeOther)
	}

	form, formErr := s.formContext(c, postFormRequest{Text: post.Text, GroupID: post.GroupID}, true)
	if formErr != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, formErr)
	}
	form["post_id"] = post.ID
	return c.JSON(form)
}

// UpdatePost handles POST /posts/:id/edit
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := c.Locals("userID").(uint)
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req postFormRequest
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	_, updateErr := s.postService.UpdatePost(ctx, service.UpdatePostInput{
		UserID:  userID,
		PostID:  postID,
		Text:    req.Text,
		GroupID: req.GroupID,
	})
	if updateErr != nil {
		var appErr *models.AppError
		if errors.As(updateErr, &appErr) {
			switch appErr.Code {
			case "PERMISSION_DENIED":
				// The denial is a warning, not a fatal error: flash it and
				// send the caller to the post they tried to edit.
				middleware.PermissionDenials.Inc()
				setFlash(c, appErr.Message)
				return c.Redirect(fmt.Sprintf("/posts/%d", postID), fiber.StatusSeeOther)
			case "VALIDATION_ERROR":
				return s.renderFormError(c, req, true, appErr)
			}
		}
		return respondAppError(c, updateErr)
	}

	middleware.PostsEdited.Inc()

	return c.Redirect(fmt.Sprintf("/posts/%d", postID), fiber.StatusSeeOther)
}

// renderFormError writes a 400 carrying the validation message plus the full
// form context with the submitted values echoed back.
func (s *Server) renderFormError(c *fiber.Ctx, req postFormRequest, isEdit bool, appErr *models.AppError) error {
	form, err := s.formContext(c, req, isEdit)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	form["error"] = appErr.Message
	form["code"] = appErr.Code
	return c.Status(fiber.StatusBadRequest).JSON(form)
}
