package repositories

import (
	"context"
	"errors"
	"strings"

	"marlang/agent"
	"marlang/models"
)

// ErrNotFound is returned by lookups by id or slug when nothing matches.
var ErrNotFound = errors.New("not found")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PostFilter selects a page of posts ordered by publishedAt desc.
// Zero Status means any status. Tag matches one element of tags exactly
// (case-sensitive) on every backend, since Firestore array-contains can do
// nothing else.
type PostFilter struct {
	Page     int
	PageSize int
	Status   models.PostStatus
	Tag      string
}

// Normalize clamps paging values to sane bounds.
func (f PostFilter) Normalize() PostFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	f.Tag = strings.TrimSpace(f.Tag)
	return f
}

func (f PostFilter) Skip() int {
	return (f.Page - 1) * f.PageSize
}

// AgentStore adds whole-document writes to the runner's view of the agent.
type AgentStore interface {
	agent.AgentStore
	PutAgent(ctx context.Context, cfg *models.AgentConfig) error
	AgentExists(ctx context.Context, id string) (bool, error)
}

type PostStore interface {
	agent.PostStore
	ListPosts(ctx context.Context, f PostFilter) ([]models.Post, int64, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*models.Post, error)
	// UpdatePost sets top-level or dotted camelCase fields.
	UpdatePost(ctx context.Context, id string, fields map[string]any) error
	DeletePost(ctx context.Context, id string) error
}

type AdminStore interface {
	ListAdmins(ctx context.Context) ([]models.Admin, error)
	IsAdmin(ctx context.Context, uid string) (bool, error)
	PutAdmin(ctx context.Context, a models.Admin) error
	DeleteAdmin(ctx context.Context, uid string) error
}

// Store bundles every collection a backend provides.
type Store interface {
	AgentStore
	PostStore
	AdminStore
	agent.AILogStore
	Close(ctx context.Context) error
}
