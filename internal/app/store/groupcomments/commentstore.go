// internal/app/store/groupcomments/commentstore.go
package commentstore

import (
	"context"
	"time"

	"github.com/driftwoodapp/driftwood/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store covers the flat group_comments collection. Group comments are
// standalone documents referencing their post by id, never embedded.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_comments")}
}

func (s *Store) Create(ctx context.Context, c models.GroupComment) (models.GroupComment, error) {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.GroupComment{}, err
	}
	return c, nil
}

// ListByPost returns all comments on a group post.
func (s *Store) ListByPost(ctx context.Context, postID primitive.ObjectID) ([]models.GroupComment, error) {
	cur, err := s.c.Find(ctx, bson.M{"post_id": postID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var comments []models.GroupComment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes one comment. Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByPost removes all comments referencing a group post.
// Returns the number of documents deleted.
func (s *Store) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
