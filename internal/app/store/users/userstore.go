// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/driftwoodapp/driftwood/internal/app/system/normalize"
	"github.com/driftwoodapp/driftwood/internal/app/system/status"
	"github.com/driftwoodapp/driftwood/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateUID is returned when creating a profile whose UID already exists.
	ErrDuplicateUID = errors.New("a profile with this uid already exists")
	errBadRole      = errors.New(`role must be "admin"|"moderator"|"member"`)
	errBadStatus    = errors.New(`status must be "active"|"disabled"`)
	errMissingUID   = errors.New("uid is required")
)

// GetByUID loads a profile by identity-provider UID.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetIfExists loads a profile by UID, returning (nil, nil) when the profile
// is absent rather than an error.
func (s *Store) GetIfExists(ctx context.Context, uid string) (*models.User, error) {
	u, err := s.GetByUID(ctx, uid)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail looks up a profile by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new profile after normalizing & validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.UID == "" {
		return models.User{}, errMissingUID
	}
	u.DisplayName = normalize.Name(u.DisplayName)
	u.DisplayNameCI = text.Fold(u.DisplayName)
	u.Email = normalize.Email(u.Email)
	if u.Role == "" {
		u.Role = "member"
	}
	if u.Status == "" {
		u.Status = status.Active
	}

	switch u.Role {
	case "admin", "moderator", "member":
		// ok
	default:
		return models.User{}, errBadRole
	}
	if !status.IsValid(u.Status) {
		return models.User{}, errBadStatus
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUID
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the fields a user can change about themselves.
type ProfileUpdate struct {
	DisplayName string
	AvatarURL   string
	BannerURL   string
}

// UpdateProfile updates the mutable profile fields for uid.
func (s *Store) UpdateProfile(ctx context.Context, uid string, upd ProfileUpdate) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if name := normalize.Name(upd.DisplayName); name != "" {
		set["display_name"] = name
		set["display_name_ci"] = text.Fold(name)
	}
	if upd.AvatarURL != "" {
		set["avatar_url"] = upd.AvatarURL
	}
	if upd.BannerURL != "" {
		set["banner_url"] = upd.BannerURL
	}

	_, err := s.c.UpdateByID(ctx, uid, bson.M{"$set": set})
	return err
}

// SetPasswordHash stores a new bcrypt hash for uid.
func (s *Store) SetPasswordHash(ctx context.Context, uid, hash string) error {
	_, err := s.c.UpdateByID(ctx, uid, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	return err
}

// TouchLastSeen records presence for uid. Best effort; callers ignore errors.
func (s *Store) TouchLastSeen(ctx context.Context, uid string) error {
	_, err := s.c.UpdateByID(ctx, uid, bson.M{"$set": bson.M{"last_seen_at": time.Now().UTC()}})
	return err
}

// Delete removes the profile document for uid.
// Returns the number of documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, uid string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
