package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"marlang/agent"
	"marlang/models"
	"marlang/repositories"
)

// Store implements repositories.Store on Cloud Firestore. Collection and
// field names match the Mongo backend.
type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) agents() *firestore.CollectionRef { return s.client.Collection("aiAgents") }
func (s *Store) posts() *firestore.CollectionRef  { return s.client.Collection("posts") }
func (s *Store) admins() *firestore.CollectionRef { return s.client.Collection("admins") }
func (s *Store) aiLogs() *firestore.CollectionRef { return s.client.Collection("ai_logs") }

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func toUpdates(fields map[string]any) []firestore.Update {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ups := make([]firestore.Update, 0, len(keys))
	for _, k := range keys {
		ups = append(ups, firestore.Update{Path: k, Value: fields[k]})
	}
	return ups
}

// nest turns dotted paths into nested maps for a merge Set.
func nest(fields map[string]any) map[string]any {
	out := map[string]any{}
	for path, v := range fields {
		keys := strings.Split(path, ".")
		m := out
		for _, k := range keys[:len(keys)-1] {
			next, ok := m[k].(map[string]any)
			if !ok {
				next = map[string]any{}
				m[k] = next
			}
			m = next
		}
		m[keys[len(keys)-1]] = v
	}
	return out
}

// ─────────────────────────────────────────
// Agents
// ─────────────────────────────────────────

func (s *Store) GetAgent(ctx context.Context, id string) (*models.AgentConfig, error) {
	snap, err := s.agents().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, agent.ErrAgentNotFound
		}
		return nil, fmt.Errorf("firestore GetAgent: %w", err)
	}

	var cfg models.AgentConfig
	if err := snap.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("firestore GetAgent decode: %w", err)
	}
	cfg.ID = id
	return &cfg, nil
}

func (s *Store) AgentExists(ctx context.Context, id string) (bool, error) {
	_, err := s.agents().Doc(id).Get(ctx)
	if isNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// MergeUpdateAgent updates the dotted paths in place; a missing document is
// created with a merge write instead.
func (s *Store) MergeUpdateAgent(ctx context.Context, id string, fields map[string]any) error {
	_, err := s.agents().Doc(id).Update(ctx, toUpdates(fields))
	if isNotFound(err) {
		_, err = s.agents().Doc(id).Set(ctx, nest(fields), firestore.MergeAll)
	}
	if err != nil {
		return fmt.Errorf("firestore MergeUpdateAgent: %w", err)
	}
	return nil
}

func (s *Store) PutAgent(ctx context.Context, cfg *models.AgentConfig) error {
	if cfg.ID == "" {
		return errors.New("agent id is required")
	}
	doc := *cfg
	doc.UpdatedAt = time.Now()
	if _, err := s.agents().Doc(cfg.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore PutAgent: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// Posts
// ─────────────────────────────────────────

func (s *Store) CreatePost(ctx context.Context, p *models.Post) (string, error) {
	ref := s.posts().NewDoc()
	if _, err := ref.Create(ctx, p); err != nil {
		return "", fmt.Errorf("firestore CreatePost: %w", err)
	}
	return ref.ID, nil
}

func (s *Store) SlugExists(ctx context.Context, slug string) (bool, error) {
	iter := s.posts().Where("slug", "==", slug).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("firestore SlugExists: %w", err)
	}
	return true, nil
}

func (s *Store) ListPosts(ctx context.Context, f repositories.PostFilter) ([]models.Post, int64, error) {
	f = f.Normalize()

	q := s.posts().Query
	if f.Status != "" {
		q = q.Where("status", "==", string(f.Status))
	}
	if f.Tag != "" {
		q = q.Where("tags", "array-contains", f.Tag)
	}

	total, err := count(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	iter := q.OrderBy("publishedAt", firestore.Desc).Offset(f.Skip()).Limit(f.PageSize).Documents(ctx)
	defer iter.Stop()

	out := []models.Post{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("firestore ListPosts: %w", err)
		}
		var p models.Post
		if err := snap.DataTo(&p); err != nil {
			return nil, 0, fmt.Errorf("decode post: %w", err)
		}
		p.ID = snap.Ref.ID
		out = append(out, p)
	}
	return out, total, nil
}

func count(ctx context.Context, q firestore.Query) (int64, error) {
	iter := q.Select().Documents(ctx)
	defer iter.Stop()

	var n int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			return n, nil
		}
		if err != nil {
			return 0, fmt.Errorf("firestore count: %w", err)
		}
		n++
	}
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	snap, err := s.posts().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("firestore GetPost: %w", err)
	}
	var p models.Post
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	p.ID = id
	return &p, nil
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	iter := s.posts().Where("slug", "==", slug).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("firestore GetPostBySlug: %w", err)
	}
	var p models.Post
	if err := snap.DataTo(&p); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	p.ID = snap.Ref.ID
	return &p, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, fields map[string]any) error {
	all := map[string]any{"updatedAt": time.Now()}
	for k, v := range fields {
		all[k] = v
	}
	_, err := s.posts().Doc(id).Update(ctx, toUpdates(all))
	if isNotFound(err) {
		return repositories.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("firestore UpdatePost: %w", err)
	}
	return nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	_, err := s.posts().Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return repositories.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("firestore DeletePost: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// Admins
// ─────────────────────────────────────────

func (s *Store) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	iter := s.admins().OrderBy("createdAt", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	out := []models.Admin{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore ListAdmins: %w", err)
		}
		var a models.Admin
		if err := snap.DataTo(&a); err != nil {
			return nil, fmt.Errorf("decode admin: %w", err)
		}
		a.UID = snap.Ref.ID
		out = append(out, a)
	}
	return out, nil
}

func (s *Store) IsAdmin(ctx context.Context, uid string) (bool, error) {
	_, err := s.admins().Doc(uid).Get(ctx)
	if isNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) PutAdmin(ctx context.Context, a models.Admin) error {
	if a.UID == "" {
		return errors.New("admin uid is required")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if _, err := s.admins().Doc(a.UID).Set(ctx, a); err != nil {
		return fmt.Errorf("firestore PutAdmin: %w", err)
	}
	return nil
}

func (s *Store) DeleteAdmin(ctx context.Context, uid string) error {
	_, err := s.admins().Doc(uid).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return repositories.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("firestore DeleteAdmin: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// AI logs
// ─────────────────────────────────────────

func (s *Store) InsertAILog(ctx context.Context, log models.AILog) error {
	if log.RequestedAt.IsZero() {
		log.RequestedAt = time.Now()
	}
	if _, _, err := s.aiLogs().Add(ctx, log); err != nil {
		return fmt.Errorf("firestore InsertAILog: %w", err)
	}
	return nil
}

var _ repositories.Store = (*Store)(nil)
