// internal/app/store/posts/poststore.go
package poststore

import (
	"context"
	"time"

	"github.com/driftwoodapp/driftwood/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store covers the posts collection plus its normalized companions
// post_comments and post_replies. The inline comments array on the post
// document is managed here too; the two representations are independent.
type Store struct {
	c        *mongo.Collection
	comments *mongo.Collection
	replies  *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("posts"),
		comments: db.Collection("post_comments"),
		replies:  db.Collection("post_replies"),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Post, error) {
	var p models.Post
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// Create inserts a new post authored by uid. The body is expected to be
// sanitized already.
func (s *Store) Create(ctx context.Context, p models.Post) (models.Post, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Post{}, err
	}
	return p, nil
}

// ListRecent returns the newest posts, capped at limit.
func (s *Store) ListRecent(ctx context.Context, limit int64) ([]models.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// AddLike adds uid to the post's likes set. Adding an existing like is a
// no-op; the return value reports whether the array actually changed.
func (s *Store) AddLike(ctx context.Context, postID primitive.ObjectID, uid string) (bool, error) {
	res, err := s.c.UpdateByID(ctx, postID, bson.M{"$addToSet": bson.M{"likes": uid}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RemoveLike removes uid from the post's likes set. Removing an absent like
// is a no-op, not an error.
func (s *Store) RemoveLike(ctx context.Context, postID primitive.ObjectID, uid string) (bool, error) {
	res, err := s.c.UpdateByID(ctx, postID, bson.M{"$pull": bson.M{"likes": uid}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// AddInlineComment appends a comment to the post's embedded comments array
// and returns the generated comment id.
func (s *Store) AddInlineComment(ctx context.Context, postID primitive.ObjectID, uid, authorName, body string) (string, error) {
	comment := models.InlineComment{
		ID:         uuid.NewString(),
		UID:        uid,
		AuthorName: authorName,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := s.c.UpdateByID(ctx, postID, bson.M{
		"$push": bson.M{"comments": comment},
		"$set":  bson.M{"updated_at": comment.CreatedAt},
	})
	if err != nil {
		return "", err
	}
	return comment.ID, nil
}

// AddInlineReply appends a reply under the inline comment with commentID.
func (s *Store) AddInlineReply(ctx context.Context, postID primitive.ObjectID, commentID, uid, authorName, body string) (string, error) {
	reply := models.InlineReply{
		ID:         uuid.NewString(),
		UID:        uid,
		AuthorName: authorName,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": postID, "comments.id": commentID},
		bson.M{
			"$push": bson.M{"comments.$.replies": reply},
			"$set":  bson.M{"updated_at": reply.CreatedAt},
		})
	if err != nil {
		return "", err
	}
	if res.MatchedCount == 0 {
		return "", mongo.ErrNoDocuments
	}
	return reply.ID, nil
}

// AddComment inserts a normalized-collection comment for a post.
func (s *Store) AddComment(ctx context.Context, c models.PostComment) (models.PostComment, error) {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now().UTC()
	if _, err := s.comments.InsertOne(ctx, c); err != nil {
		return models.PostComment{}, err
	}
	return c, nil
}

// AddReply inserts a normalized-collection reply under a comment.
func (s *Store) AddReply(ctx context.Context, r models.PostReply) (models.PostReply, error) {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now().UTC()
	if _, err := s.replies.InsertOne(ctx, r); err != nil {
		return models.PostReply{}, err
	}
	return r, nil
}

// Delete removes a post by ID. Companion comment/reply documents are the
// caller's concern (the cascade removes them explicitly).
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
