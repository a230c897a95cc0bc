package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marlang/agent"
	"marlang/models"
)

// AgentRepository stores persona documents keyed by agent id.
// Collection: aiAgents
type AgentRepository struct {
	col *mongo.Collection
}

func NewAgentRepository(db *mongo.Database) *AgentRepository {
	return &AgentRepository{col: db.Collection("aiAgents")}
}

func (r *AgentRepository) GetAgent(ctx context.Context, id string) (*models.AgentConfig, error) {
	var cfg models.AgentConfig
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&cfg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, agent.ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}
	cfg.ID = id
	return &cfg, nil
}

func (r *AgentRepository) AgentExists(ctx context.Context, id string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	return n > 0, err
}

// MergeUpdateAgent $sets the dotted fields, creating the document if needed.
// There is no version check: concurrent writers race and the last one wins.
func (r *AgentRepository) MergeUpdateAgent(ctx context.Context, id string, fields map[string]any) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set}, options.Update().SetUpsert(true))
	return err
}

// PutAgent replaces the whole document.
func (r *AgentRepository) PutAgent(ctx context.Context, cfg *models.AgentConfig) error {
	if cfg.ID == "" {
		return errors.New("agent id is required")
	}
	doc := *cfg
	doc.UpdatedAt = time.Now()
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": cfg.ID}, doc, options.Replace().SetUpsert(true))
	return err
}
