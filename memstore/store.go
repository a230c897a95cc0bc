package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"marlang/agent"
	"marlang/models"
	"marlang/repositories"
)

// Store keeps every collection in process memory. It backs tests and the
// "memory" store driver.
type Store struct {
	mu     sync.RWMutex
	agents map[string]models.AgentConfig
	posts  map[string]models.Post
	admins map[string]models.Admin
	logs   []models.AILog
}

func New() *Store {
	return &Store{
		agents: make(map[string]models.AgentConfig),
		posts:  make(map[string]models.Post),
		admins: make(map[string]models.Admin),
	}
}

func (s *Store) Close(ctx context.Context) error { return nil }

// -------------------- Agents --------------------

func (s *Store) GetAgent(ctx context.Context, id string) (*models.AgentConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.agents[id]
	if !ok {
		return nil, agent.ErrAgentNotFound
	}
	cfg.ID = id
	return &cfg, nil
}

func (s *Store) AgentExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.agents[id]
	return ok, nil
}

func (s *Store) PutAgent(ctx context.Context, cfg *models.AgentConfig) error {
	if cfg == nil || cfg.ID == "" {
		return errors.New("agent id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.agents[cfg.ID] = *cfg
	return nil
}

// MergeUpdateAgent creates the document when it does not exist, like a
// merge write in a document database.
func (s *Store) MergeUpdateAgent(ctx context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.agents[id]
	cur.ID = id
	var next models.AgentConfig
	if err := mergePaths(cur, fields, &next); err != nil {
		return err
	}
	next.ID = id
	s.agents[id] = next
	return nil
}

// -------------------- Posts --------------------

func (s *Store) CreatePost(ctx context.Context, p *models.Post) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Slug != "" {
		for _, other := range s.posts {
			if other.Slug == p.Slug {
				return "", errors.New("duplicate slug: " + p.Slug)
			}
		}
	}
	id := primitive.NewObjectID().Hex()
	cp := *p
	cp.ID = id
	s.posts[id] = cp
	return id, nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListPosts(ctx context.Context, f repositories.PostFilter) ([]models.Post, int64, error) {
	f = f.Normalize()

	s.mu.RLock()
	matched := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Tag != "" && !contains(p.Tags, f.Tag) {
			continue
		}
		matched = append(matched, p)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].PublishedAt.Equal(matched[j].PublishedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	total := int64(len(matched))
	start := f.Skip()
	if start >= len(matched) {
		return []models.Post{}, total, nil
	}
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.Slug == slug {
			cp := p
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *Store) UpdatePost(ctx context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	var next models.Post
	if err := mergePaths(cur, fields, &next); err != nil {
		return err
	}
	next.ID = id
	s.posts[id] = next
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

// Posts returns a snapshot of every stored post. Test helper.
func (s *Store) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	return out
}

// -------------------- Admins --------------------

func (s *Store) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Admin, 0, len(s.admins))
	for _, a := range s.admins {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) IsAdmin(ctx context.Context, uid string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.admins[uid]
	return ok, nil
}

func (s *Store) PutAdmin(ctx context.Context, a models.Admin) error {
	if a.UID == "" {
		return errors.New("admin uid is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.admins[a.UID] = a
	return nil
}

func (s *Store) DeleteAdmin(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.admins[uid]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.admins, uid)
	return nil
}

// -------------------- AI logs --------------------

func (s *Store) InsertAILog(ctx context.Context, log models.AILog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if log.ID == "" {
		log.ID = primitive.NewObjectID().Hex()
	}
	s.logs = append(s.logs, log)
	return nil
}

// AILogs returns the recorded logs in insertion order. Test helper.
func (s *Store) AILogs() []models.AILog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]models.AILog(nil), s.logs...)
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

var _ repositories.Store = (*Store)(nil)
