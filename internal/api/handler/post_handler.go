package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/secureapi/secure-api/internal/api/metrics"
	"github.com/secureapi/secure-api/internal/core/ports"
)

// PostHandler serves the authenticated /api routes. Every method expects the
// principal bound by the Auth middleware.
type PostHandler struct {
	postService ports.PostService
}

func NewPostHandler(postService ports.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// Data returns the caller's display name and every registered username.
//
// @Summary      Current user overview
// @Tags         api
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dataResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/data [get]
func (h *PostHandler) Data(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	overview, err := h.postService.Overview(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDataResponse(overview))
}

// List returns every post, newest first.
//
// @Summary      List posts
// @Tags         api
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   postResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/posts [get]
func (h *PostHandler) List(c echo.Context) error {
	if _, err := principal(c); err != nil {
		return err
	}

	posts, err := h.postService.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPostListResponse(posts))
}

// Create stores a new post authored by the caller.
//
// @Summary      Create a post
// @Tags         api
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPostRequest  true  "Post title and content"
// @Success      201   {object}  postResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Bad Request", Message: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Bad Request", Message: err.Error()})
	}

	post, err := h.postService.CreatePost(c.Request().Context(), p, req.Title, req.Content)
	if err != nil {
		return err
	}

	metrics.PostsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toPostResponse(post))
}
