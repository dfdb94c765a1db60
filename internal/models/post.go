package models

import "time"

// Post represents a blog post. AuthorUsername is set once at creation from
// the authenticated identity and is never writable through the API.
type Post struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title          string    `json:"title" gorm:"type:varchar(120)" validate:"required,min=5,max=120"`
	Content        string    `json:"content" validate:"required,min=50"`
	ImageURL       string    `json:"imageURL" validate:"omitempty,url"`
	Slug           string    `json:"slug" gorm:"index;type:varchar(160)"`
	AuthorUsername string    `json:"author" gorm:"index;type:varchar(100)" validate:"required"`
	CreatedAt      time.Time `json:"created_at"`
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts []Post `json:"posts"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Pages int    `json:"pages"`
}
