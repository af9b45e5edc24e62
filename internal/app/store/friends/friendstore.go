// internal/app/store/friends/friendstore.go
package friendstore

import (
	"context"
	"errors"
	"time"

	"github.com/driftwoodapp/driftwood/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	requests    *mongo.Collection
	friendships *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		requests:    db.Collection("friend_requests"),
		friendships: db.Collection("friendships"),
	}
}

var (
	ErrDuplicateRequest = errors.New("a friend request between these users already exists")
	ErrRequestNotFound  = errors.New("no pending friend request between these users")
	errSelfFriend       = errors.New("cannot befriend yourself")
)

// Request records a pending friend request from one user to another. The
// pair key makes a reverse-direction duplicate collide with the original.
func (s *Store) Request(ctx context.Context, fromUID, toUID string) (models.FriendRequest, error) {
	if fromUID == toUID {
		return models.FriendRequest{}, errSelfFriend
	}
	req := models.FriendRequest{
		ID:        models.PairKey(fromUID, toUID),
		FromUID:   fromUID,
		ToUID:     toUID,
		Status:    "pending",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.requests.InsertOne(ctx, req); err != nil {
		if wafflemongo.IsDup(err) {
			return models.FriendRequest{}, ErrDuplicateRequest
		}
		return models.FriendRequest{}, err
	}
	return req, nil
}

// Accept marks the pending request between the two users accepted and
// creates the friendship document.
func (s *Store) Accept(ctx context.Context, uidA, uidB string) error {
	key := models.PairKey(uidA, uidB)

	res, err := s.requests.UpdateOne(ctx,
		bson.M{"_id": key, "status": "pending"},
		bson.M{"$set": bson.M{"status": "accepted"}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrRequestNotFound
	}

	uids := []string{uidA, uidB}
	if uids[0] > uids[1] {
		uids[0], uids[1] = uids[1], uids[0]
	}
	_, err = s.friendships.InsertOne(ctx, models.Friendship{
		ID:        key,
		UIDs:      uids,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil && !wafflemongo.IsDup(err) {
		return err
	}
	return nil
}

// ListFriends returns the UIDs the given user is friends with.
func (s *Store) ListFriends(ctx context.Context, uid string) ([]string, error) {
	cur, err := s.friendships.Find(ctx, bson.M{"uids": uid})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []string
	for cur.Next(ctx) {
		var f models.Friendship
		if err := cur.Decode(&f); err != nil {
			return nil, err
		}
		for _, u := range f.UIDs {
			if u != uid {
				out = append(out, u)
			}
		}
	}
	return out, cur.Err()
}

// DeleteByUser removes every friend request and friendship involving uid.
// Returns the total number of documents deleted across both collections.
func (s *Store) DeleteByUser(ctx context.Context, uid string) (int64, error) {
	var total int64

	res, err := s.requests.DeleteMany(ctx, bson.M{
		"$or": []bson.M{{"from_uid": uid}, {"to_uid": uid}},
	})
	if err != nil {
		return total, err
	}
	total += res.DeletedCount

	res, err = s.friendships.DeleteMany(ctx, bson.M{"uids": uid})
	if err != nil {
		return total, err
	}
	total += res.DeletedCount

	return total, nil
}
