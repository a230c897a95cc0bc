package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore bundles the Mongo repositories behind the Store interface.
type MongoStore struct {
	*AgentRepository
	*PostRepository
	*AdminRepository
	*AILogRepository

	client *mongo.Client
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{
		AgentRepository: NewAgentRepository(db),
		PostRepository:  NewPostRepository(db),
		AdminRepository: NewAdminRepository(db),
		AILogRepository: NewAILogRepository(db),
		client:          client,
	}
}

func (s *MongoStore) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
