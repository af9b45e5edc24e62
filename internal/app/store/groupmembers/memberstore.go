// internal/app/store/groupmembers/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"time"

	"github.com/driftwoodapp/driftwood/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_members")}
}

var (
	errBadRole = errors.New(`role must be "creator"|"admin"|"moderator"|"member"`)

	ErrDuplicateMembership = errors.New("user is already a member of this group")
)

// roleRank orders the membership hierarchy. Higher outranks lower.
var roleRank = map[string]int{
	"member":    0,
	"moderator": 1,
	"admin":     2,
	"creator":   3,
}

// Outranks reports whether role a strictly outranks role b.
func Outranks(a, b string) bool {
	return roleRank[a] > roleRank[b]
}

// Add creates a membership record for (groupID, uid) with the given role.
func (s *Store) Add(ctx context.Context, groupID primitive.ObjectID, uid, role string) error {
	if _, ok := roleRank[role]; !ok {
		return errBadRole
	}
	// The unique group_id+user_uid index backstops this check under
	// concurrent joins.
	if exists, err := s.Exists(ctx, groupID, uid); err != nil {
		return err
	} else if exists {
		return ErrDuplicateMembership
	}
	doc := models.GroupMember{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserUID:   uid,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Remove deletes the membership record for (groupID, uid). Removing a
// missing membership is not an error.
func (s *Store) Remove(ctx context.Context, groupID primitive.ObjectID, uid string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "user_uid": uid})
	return err
}

// Exists checks if a membership exists for the given group and user.
func (s *Store) Exists(ctx context.Context, groupID primitive.ObjectID, uid string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "user_uid": uid}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByGroup returns all membership records for a group, optionally
// filtered by role.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID, role string) ([]models.GroupMember, error) {
	filter := bson.M{"group_id": groupID}
	if role != "" {
		filter["role"] = role
	}
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var members []models.GroupMember
	if err := cur.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// DeleteByUser removes all membership records for a user across every group.
// Returns the number of documents deleted.
func (s *Store) DeleteByUser(ctx context.Context, uid string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_uid": uid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByGroup removes all membership records for a group.
// Returns the number of documents deleted.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
