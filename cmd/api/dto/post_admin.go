package dto

import "time"

// AdminPostDTO is a full representation of a post for admins.
type AdminPostDTO struct {
	PostDTO
	Status        string               `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	AuthorID      string               `json:"author_id"`
	GeneratedByAI bool                 `json:"generated_by_ai"`
	AIModelUsed   string               `json:"ai_model_used"`
	Metadata      AdminPostMetadataDTO `json:"metadata"`
}

type AdminPostMetadataDTO struct {
	ImageCount            int      `json:"image_count"`
	ThumbnailDescriptions []string `json:"thumbnail_descriptions"`
	Keywords              []string `json:"keywords"`
}

// AdminUpdatePostRequestDTO 는 관리자 포스트 수정 요청이다. nil 필드는 변경하지 않는다.
type AdminUpdatePostRequestDTO struct {
	Title           *string   `json:"title"`
	Content         *string   `json:"content"`
	Excerpt         *string   `json:"excerpt"`
	Tags            *[]string `json:"tags"`
	Thumbnails      *[]string `json:"thumbnails"`
	Status          *string   `json:"status" example:"published"`
	MetaDescription *string   `json:"meta_description"`
}

// PaginationAdminPostDTO is for swagger
// swagger:model PaginationAdminPostDTO
type PaginationAdminPostDTO struct {
	Data     []AdminPostDTO `json:"data"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	Total    int64          `json:"total"`
}
