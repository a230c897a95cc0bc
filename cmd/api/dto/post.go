package dto

import "time"

// PostDTO exposes the fields a blog reader needs.
// Generation internals (model name, thumbnail prompts) are left to AdminPostDTO.
type PostDTO struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Content         string    `json:"content"`
	Excerpt         string    `json:"excerpt"`
	Tags            []string  `json:"tags"`
	Thumbnails      []string  `json:"thumbnails"`
	CoverImage      string    `json:"cover_image"`
	Author          string    `json:"author"`
	PublishedAt     time.Time `json:"published_at"`
	ReadingTime     int       `json:"reading_time"`
	MetaDescription string    `json:"meta_description,omitempty"`
}

// PaginationPostDTO is for swagger
// swagger:model PaginationPostDTO
type PaginationPostDTO struct {
	Data     []PostDTO `json:"data"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Total    int64     `json:"total"`
}
