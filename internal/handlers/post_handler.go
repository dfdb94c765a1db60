package handlers

import (
	"log"
	"strconv"

	"blog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	service *services.PostService
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{
		service: service,
	}
}

// RegisterRoutes registers the post routes with the Fiber app. Reads are
// public; every write goes through the auth middleware.
func (h *PostHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	postRoutes := router.Group("/posts")
	postRoutes.Get("/", h.HandleListPosts)
	postRoutes.Get("/:id", h.HandleGetPostByID)
	postRoutes.Post("/", authRequired, h.HandleCreatePost)
	postRoutes.Put("/:id", authRequired, h.HandleUpdatePost)
	postRoutes.Delete("/:id", authRequired, h.HandleDeletePost)
}

// HandleListPosts returns one page of posts, optionally filtered by the
// search query parameter. Defaults: page 1, limit 10, no filter.
func (h *PostHandler) HandleListPosts(c *fiber.Ctx) error {
	search := c.Query("search")

	page, err := positiveIntQuery(c, "page", 1)
	if err != nil {
		return errorResponse(c, err)
	}
	limit, err := positiveIntQuery(c, "limit", 10)
	if err != nil {
		return errorResponse(c, err)
	}

	result, err := h.service.ListPosts(search, page, limit)
	if err != nil {
		log.Printf("Error listing posts: %v", err)
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

// HandleGetPostByID retrieves a single post by its ID.
func (h *PostHandler) HandleGetPostByID(c *fiber.Ctx) error {
	post, err := h.service.GetPostByID(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(post)
}

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	ImageURL string `json:"imageURL"`
}

// HandleCreatePost creates a new post authored by the authenticated user.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create post request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	username, _ := c.Locals("username").(string)
	post, err := h.service.CreatePost(req.Title, req.Content, req.ImageURL, username)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(post)
}

// UpdatePostRequest represents the request body for a partial update. Fields
// left out of the JSON stay nil and keep their stored values.
type UpdatePostRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	ImageURL *string `json:"imageURL"`
}

// HandleUpdatePost applies a partial update to a post owned by the caller.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update post request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	username, _ := c.Locals("username").(string)
	patch := services.PostPatch{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
	}
	post, err := h.service.UpdatePost(c.Params("id"), patch, username)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(post)
}

// HandleDeletePost deletes a post owned by the caller.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	username, _ := c.Locals("username").(string)
	if err := h.service.DeletePost(c.Params("id"), username); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post deleted successfully",
	})
}

// positiveIntQuery parses a query parameter that must be a positive integer
// when present.
func positiveIntQuery(c *fiber.Ctx, name string, defaultValue int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, &services.ValidationError{Fields: map[string]string{
			name: "must be a positive integer",
		}}
	}
	return value, nil
}
