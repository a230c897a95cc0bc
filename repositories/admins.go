package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marlang/models"
)

type AdminRepository struct {
	col *mongo.Collection
}

func NewAdminRepository(db *mongo.Database) *AdminRepository {
	return &AdminRepository{col: db.Collection("admins")}
}

func (r *AdminRepository) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Admin{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AdminRepository) IsAdmin(ctx context.Context, uid string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"_id": uid}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return err == nil, err
}

func (r *AdminRepository) PutAdmin(ctx context.Context, a models.Admin) error {
	if a.UID == "" {
		return errors.New("admin uid is required")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.UID}, a, options.Replace().SetUpsert(true))
	return err
}

func (r *AdminRepository) DeleteAdmin(ctx context.Context, uid string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
