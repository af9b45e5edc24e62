// internal/app/store/groupposts/grouppoststore.go
package grouppoststore

import (
	"context"
	"time"

	"github.com/driftwoodapp/driftwood/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_posts")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupPost, error) {
	var p models.GroupPost
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.GroupPost{}, err
	}
	return p, nil
}

func (s *Store) Create(ctx context.Context, p models.GroupPost) (models.GroupPost, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.GroupPost{}, err
	}
	return p, nil
}

// ListByGroup returns the newest posts in a group, capped at limit.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID, limit int64) ([]models.GroupPost, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.GroupPost
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// AddLike adds uid to the group post's likes set.
func (s *Store) AddLike(ctx context.Context, postID primitive.ObjectID, uid string) (bool, error) {
	res, err := s.c.UpdateByID(ctx, postID, bson.M{"$addToSet": bson.M{"likes": uid}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RemoveLike removes uid from the group post's likes set.
func (s *Store) RemoveLike(ctx context.Context, postID primitive.ObjectID, uid string) (bool, error) {
	res, err := s.c.UpdateByID(ctx, postID, bson.M{"$pull": bson.M{"likes": uid}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// Delete removes a group post by ID. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByGroup removes all posts belonging to a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
