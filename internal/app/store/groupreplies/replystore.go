// internal/app/store/groupreplies/replystore.go
package replystore

import (
	"context"
	"time"

	"github.com/driftwoodapp/driftwood/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store covers the flat group_replies collection. Every reply carries the
// root comment id; replies to replies additionally carry parent_reply_id,
// which is what allows arbitrary nesting depth.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_replies")}
}

func (s *Store) Create(ctx context.Context, r models.GroupReply) (models.GroupReply, error) {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.GroupReply{}, err
	}
	return r, nil
}

// ListByComment returns the whole reply thread for a comment, at any depth.
func (s *Store) ListByComment(ctx context.Context, commentID primitive.ObjectID) ([]models.GroupReply, error) {
	cur, err := s.c.Find(ctx, bson.M{"comment_id": commentID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var replies []models.GroupReply
	if err := cur.All(ctx, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

// DeleteByComment removes every reply in a comment's thread, at any depth.
// Returns the number of documents deleted.
func (s *Store) DeleteByComment(ctx context.Context, commentID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"comment_id": commentID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Delete removes one reply. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
