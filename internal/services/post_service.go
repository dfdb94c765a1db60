package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"blog/internal/models"
	"blog/internal/repositories"
	"blog/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
)

// PostPatch carries the fields a PUT may change. A nil field is left
// untouched; a non-nil field replaces the stored value and is re-validated.
type PostPatch struct {
	Title    *string
	Content  *string
	ImageURL *string
}

// PostService handles business logic related to posts: validation, the
// ownership gate on mutations, pagination, and lifecycle events.
type PostService struct {
	postRepo repositories.PostRepository
	mqClient *rabbitmq.Client
	validate *validator.Validate
}

// NewPostService creates a new PostService. mqClient may be nil, in which
// case lifecycle events are skipped.
func NewPostService(postRepo repositories.PostRepository, mqClient *rabbitmq.Client) *PostService {
	return &PostService{
		postRepo: postRepo,
		mqClient: mqClient,
		validate: validator.New(),
	}
}

// CreatePost validates and stores a new post. The author is always the
// verified identity of the caller, never client input.
func (s *PostService) CreatePost(title, content, imageURL, authorUsername string) (*models.Post, error) {
	post := &models.Post{
		Title:          title,
		Content:        content,
		ImageURL:       imageURL,
		Slug:           slug.Make(title),
		AuthorUsername: authorUsername,
		CreatedAt:      time.Now(),
	}
	if err := s.validatePost(post); err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.publishEvent("post.created", post)
	return post, nil
}

// GetPostByID retrieves a single post by its ID.
func (s *PostService) GetPostByID(id string) (*models.Post, error) {
	return s.postRepo.GetByID(id)
}

// ListPosts returns one page of posts, newest first, optionally filtered by
// a case-insensitive substring over title and author username. A page past
// the end yields empty posts with correct totals.
func (s *PostService) ListPosts(search string, page, pageSize int) (*models.PostPage, error) {
	if page < 1 || pageSize < 1 {
		return nil, &ValidationError{Fields: map[string]string{
			"page": "page and limit must be positive integers",
		}}
	}

	// Guard the multiplication: a huge page number must behave like any
	// other out-of-range page, not overflow into a negative offset.
	offset := math.MaxInt
	if page-1 <= math.MaxInt/pageSize {
		offset = (page - 1) * pageSize
	}
	posts, total, err := s.postRepo.List(search, offset, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &models.PostPage{
		Posts: posts,
		Total: total,
		Page:  page,
		Pages: pages,
	}, nil
}

// UpdatePost applies a partial update to a post owned by username. The
// existence check runs before the ownership check, so a missing post is
// reported as not found even to a non-owner. Author and creation time are
// never modified.
func (s *PostService) UpdatePost(id string, patch PostPatch, username string) (*models.Post, error) {
	existing, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing.AuthorUsername != username {
		return nil, fmt.Errorf("post %s: %w", id, ErrForbidden)
	}

	if patch.Title != nil {
		existing.Title = *patch.Title
		existing.Slug = slug.Make(*patch.Title)
	}
	if patch.Content != nil {
		existing.Content = *patch.Content
	}
	if patch.ImageURL != nil {
		existing.ImageURL = *patch.ImageURL
	}

	if err := s.validatePost(existing); err != nil {
		return nil, err
	}
	if err := s.postRepo.Update(existing); err != nil {
		return nil, err
	}

	s.publishEvent("post.updated", existing)
	return existing, nil
}

// DeletePost removes a post owned by username. Deleting an id that no
// longer exists reports not found, same as the first existence check.
func (s *PostService) DeletePost(id, username string) error {
	existing, err := s.postRepo.GetByID(id)
	if err != nil {
		return err
	}
	if existing.AuthorUsername != username {
		return fmt.Errorf("post %s: %w", id, ErrForbidden)
	}

	if err := s.postRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent("post.deleted", existing)
	return nil
}

// validatePost runs the struct constraints and converts failures into the
// field-keyed ValidationError the handler layer reports.
func (s *PostService) validatePost(post *models.Post) error {
	err := s.validate.Struct(post)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate post: %w", err)
	}

	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Fields: fields}
}

// publishEvent emits a post lifecycle event. Publishing is best-effort; a
// broker failure is logged and never fails the request.
func (s *PostService) publishEvent(event string, post *models.Post) {
	if s.mqClient == nil {
		return
	}
	payload := map[string]interface{}{
		"event":   event,
		"post_id": post.ID,
		"slug":    post.Slug,
		"author":  post.AuthorUsername,
	}
	if err := s.mqClient.PublishPostEvent(payload); err != nil {
		log.Printf("Warning: failed to publish %s event for post %s: %v", event, post.ID, err)
	}
}
