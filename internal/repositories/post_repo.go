package repositories

import "blog/internal/models"

// PostRepository defines the interface for post data access.
//
// Update overwrites the stored record with the given one (last-write-wins;
// there is no optimistic-concurrency token). List applies a case-insensitive
// substring filter over title and author username when search is non-empty,
// orders by created_at descending with id ascending as tiebreaker, and
// returns the page alongside the total match count.
type PostRepository interface {
	Create(post *models.Post) error
	GetByID(id string) (*models.Post, error)
	Update(post *models.Post) error
	Delete(id string) error
	List(search string, offset, limit int) ([]models.Post, int64, error)
}
