package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marlang/cmd/api/dto"
	"marlang/models"
	"marlang/repositories"
)

var (
	ErrInvalidStatus = errors.New("invalid post status")
	ErrEmptyUpdate   = errors.New("no fields to update")
	ErrAdminNotFound = errors.New("admin not found")
	ErrSelfRemoval   = errors.New("admins cannot remove themselves")
)

// AdminService encapsulates business logic for admin operations.
type AdminService struct {
	posts  repositories.PostStore
	admins repositories.AdminStore
	now    func() time.Time
}

func NewAdminService(posts repositories.PostStore, admins repositories.AdminStore) *AdminService {
	return &AdminService{posts: posts, admins: admins, now: time.Now}
}

// -------------------- Posts --------------------

type AdminListPostsInput struct {
	Page     int
	PageSize int
	Status   string
	Tag      string
}

// ListPosts retrieves a paginated list of posts of any status for admin.
func (s *AdminService) ListPosts(ctx context.Context, in AdminListPostsInput) (dto.Pagination[dto.AdminPostDTO], error) {
	status := models.PostStatus(in.Status)
	if status != "" && !status.Valid() {
		return dto.Pagination[dto.AdminPostDTO]{}, ErrInvalidStatus
	}
	f := repositories.PostFilter{
		Page:     in.Page,
		PageSize: in.PageSize,
		Status:   status,
		Tag:      in.Tag,
	}.Normalize()

	items, total, err := s.posts.ListPosts(ctx, f)
	if err != nil {
		return dto.Pagination[dto.AdminPostDTO]{}, err
	}

	out := make([]dto.AdminPostDTO, 0, len(items))
	for _, p := range items {
		out = append(out, mapAdminPost(p))
	}
	return dto.Pagination[dto.AdminPostDTO]{
		Data:     out,
		Page:     f.Page,
		PageSize: f.PageSize,
		Total:    total,
	}, nil
}

// UpdatePost applies the non-nil fields of req and returns the updated post.
func (s *AdminService) UpdatePost(ctx context.Context, id string, req dto.AdminUpdatePostRequestDTO) (*dto.AdminPostDTO, error) {
	fields := map[string]any{}
	if req.Title != nil {
		fields["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.Excerpt != nil {
		fields["excerpt"] = strings.TrimSpace(*req.Excerpt)
	}
	if req.Tags != nil {
		fields["tags"] = *req.Tags
		fields["metadata.keywords"] = *req.Tags
	}
	if req.Thumbnails != nil {
		fields["thumbnails"] = *req.Thumbnails
		fields["metadata.imageCount"] = len(*req.Thumbnails)
	}
	if req.MetaDescription != nil {
		fields["metadata.metaDescription"] = *req.MetaDescription
	}
	if req.Status != nil {
		status := models.PostStatus(*req.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		fields["status"] = string(status)
	}
	if len(fields) == 0 {
		return nil, ErrEmptyUpdate
	}
	fields["updatedAt"] = s.now().UTC()

	if err := s.posts.UpdatePost(ctx, id, fields); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	p, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	d := mapAdminPost(*p)
	return &d, nil
}

// DeletePost deletes a post by its ID.
func (s *AdminService) DeletePost(ctx context.Context, id string) error {
	err := s.posts.DeletePost(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrPostNotFound
	}
	return err
}

// -------------------- Admins --------------------

func (s *AdminService) ListAdmins(ctx context.Context) ([]dto.AdminDTO, error) {
	admins, err := s.admins.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AdminDTO, 0, len(admins))
	for _, a := range admins {
		out = append(out, mapAdmin(a))
	}
	return out, nil
}

// AddAdmin registers uid as an admin. Re-adding an existing uid overwrites its email.
func (s *AdminService) AddAdmin(ctx context.Context, req dto.AddAdminRequestDTO, addedBy string) (*dto.AdminDTO, error) {
	a := models.Admin{
		UID:       strings.TrimSpace(req.UID),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		AddedBy:   addedBy,
		CreatedAt: s.now().UTC(),
	}
	if a.UID == "" {
		return nil, fmt.Errorf("uid is required")
	}
	if err := s.admins.PutAdmin(ctx, a); err != nil {
		return nil, err
	}
	d := mapAdmin(a)
	return &d, nil
}

func (s *AdminService) RemoveAdmin(ctx context.Context, uid, caller string) error {
	if uid == caller {
		return ErrSelfRemoval
	}
	err := s.admins.DeleteAdmin(ctx, uid)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrAdminNotFound
	}
	return err
}

func mapAdminPost(p models.Post) dto.AdminPostDTO {
	return dto.AdminPostDTO{
		PostDTO:       mapPost(p),
		Status:        string(p.Status),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		AuthorID:      p.AuthorID,
		GeneratedByAI: p.GeneratedByAI,
		AIModelUsed:   p.AIModelUsed,
		Metadata: dto.AdminPostMetadataDTO{
			ImageCount:            p.Metadata.ImageCount,
			ThumbnailDescriptions: nonNil(p.Metadata.ThumbnailDescriptions),
			Keywords:              nonNil(p.Metadata.Keywords),
		},
	}
}

func mapAdmin(a models.Admin) dto.AdminDTO {
	return dto.AdminDTO{
		UID:       a.UID,
		Email:     a.Email,
		AddedBy:   a.AddedBy,
		CreatedAt: a.CreatedAt,
	}
}
