package services

import (
	"context"
	"errors"

	"marlang/cmd/api/dto"
	"marlang/models"
	"marlang/repositories"
)

var ErrPostNotFound = errors.New("post not found")

// PostReader 는 공개 포스트 조회에 필요한 저장소 메서드만 모은 것이다.
type PostReader interface {
	ListPosts(ctx context.Context, f repositories.PostFilter) ([]models.Post, int64, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
}

// PostService encapsulates read access to published posts and DTO mapping.
// Draft posts are invisible here.
type PostService struct {
	posts PostReader
}

func NewPostService(posts PostReader) *PostService {
	return &PostService{posts: posts}
}

type ListPostsInput struct {
	Page     int
	PageSize int
	Tag      string
}

func (s *PostService) List(ctx context.Context, in ListPostsInput) (dto.Pagination[dto.PostDTO], error) {
	f := repositories.PostFilter{
		Page:     in.Page,
		PageSize: in.PageSize,
		Status:   models.PostStatusPublished,
		Tag:      in.Tag,
	}.Normalize()

	items, total, err := s.posts.ListPosts(ctx, f)
	if err != nil {
		return dto.Pagination[dto.PostDTO]{}, err
	}
	out := make([]dto.PostDTO, 0, len(items))
	for _, p := range items {
		out = append(out, mapPost(p))
	}
	return dto.Pagination[dto.PostDTO]{
		Data:     out,
		Page:     f.Page,
		PageSize: f.PageSize,
		Total:    total,
	}, nil
}

// GetByID loads a published post by id.
func (s *PostService) GetByID(ctx context.Context, id string) (*dto.PostDTO, error) {
	p, err := s.posts.GetPost(ctx, id)
	return s.published(p, err)
}

func (s *PostService) GetBySlug(ctx context.Context, slug string) (*dto.PostDTO, error) {
	p, err := s.posts.GetPostBySlug(ctx, slug)
	return s.published(p, err)
}

func (s *PostService) published(p *models.Post, err error) (*dto.PostDTO, error) {
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Status != models.PostStatusPublished {
		return nil, ErrPostNotFound
	}
	d := mapPost(*p)
	return &d, nil
}

func mapPost(p models.Post) dto.PostDTO {
	return dto.PostDTO{
		ID:              p.ID,
		Title:           p.Title,
		Slug:            p.Slug,
		Content:         p.Content,
		Excerpt:         p.Excerpt,
		Tags:            nonNil(p.Tags),
		Thumbnails:      nonNil(p.Thumbnails),
		CoverImage:      p.CoverImage(),
		Author:          p.Author,
		PublishedAt:     p.PublishedAt,
		ReadingTime:     p.Metadata.ReadingTime,
		MetaDescription: p.Metadata.MetaDescription,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
