package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/driftwoodapp/driftwood/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Repeated calls accumulate parameters on the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given UID, display name and role.
func (f *Fixtures) CreateUser(ctx context.Context, uid, displayName, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		UID:           uid,
		DisplayName:   displayName,
		DisplayNameCI: text.Fold(displayName),
		Email:         uid + "@test.com",
		Role:          role,
		Status:        "active",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := f.db.Collection("users").InsertOne(ctx, user)
	if err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, uid, displayName string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, uid, displayName, "admin")
}

// CreateMember creates a test member user.
func (f *Fixtures) CreateMember(ctx context.Context, uid, displayName string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, uid, displayName, "member")
}

// CreatePost creates a test post authored by authorUID under the modern
// "uid" field.
func (f *Fixtures) CreatePost(ctx context.Context, authorUID, authorName, body string) models.Post {
	f.t.Helper()

	now := time.Now().UTC()
	post := models.Post{
		ID:         primitive.NewObjectID(),
		UID:        authorUID,
		AuthorName: authorName,
		Body:       body,
		Likes:      []string{},
		Comments:   []models.InlineComment{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("posts").InsertOne(ctx, post)
	if err != nil {
		f.t.Fatalf("failed to create test post: %v", err)
	}

	return post
}

// CreateLegacyPost creates a test post whose authorship is recorded under
// one of the historical alias fields instead of "uid".
func (f *Fixtures) CreateLegacyPost(ctx context.Context, aliasField, authorUID, authorName, body string) primitive.ObjectID {
	f.t.Helper()

	now := time.Now().UTC()
	doc := map[string]interface{}{
		"_id":         primitive.NewObjectID(),
		aliasField:    authorUID,
		"author_name": authorName,
		"body":        body,
		"likes":       []string{},
		"comments":    []interface{}{},
		"created_at":  now,
		"updated_at":  now,
	}

	_, err := f.db.Collection("posts").InsertOne(ctx, doc)
	if err != nil {
		f.t.Fatalf("failed to create legacy test post: %v", err)
	}

	return doc["_id"].(primitive.ObjectID)
}

// CreateNamedOnlyPost creates a post carrying only the denormalized author
// name, with no UID alias field at all.
func (f *Fixtures) CreateNamedOnlyPost(ctx context.Context, authorName, body string) primitive.ObjectID {
	f.t.Helper()

	now := time.Now().UTC()
	doc := map[string]interface{}{
		"_id":         primitive.NewObjectID(),
		"author_name": authorName,
		"body":        body,
		"likes":       []string{},
		"comments":    []interface{}{},
		"created_at":  now,
	}

	_, err := f.db.Collection("posts").InsertOne(ctx, doc)
	if err != nil {
		f.t.Fatalf("failed to create name-only test post: %v", err)
	}

	return doc["_id"].(primitive.ObjectID)
}

// CreateGroup creates a test group owned by ownerUID, including the owner
// in the legacy inline members array.
func (f *Fixtures) CreateGroup(ctx context.Context, name, ownerUID string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test group description",
		OwnerUID:    ownerUID,
		Members:     []string{ownerUID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := f.db.Collection("groups").InsertOne(ctx, group)
	if err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}

	return group
}

// CreateGroupMember creates a membership record linking a user to a group.
func (f *Fixtures) CreateGroupMember(ctx context.Context, groupID primitive.ObjectID, userUID, role string) models.GroupMember {
	f.t.Helper()

	member := models.GroupMember{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		UserUID:   userUID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	_, err := f.db.Collection("group_members").InsertOne(ctx, member)
	if err != nil {
		f.t.Fatalf("failed to create test group member: %v", err)
	}

	return member
}

// CreateGroupPost creates a test post inside a group.
func (f *Fixtures) CreateGroupPost(ctx context.Context, groupID primitive.ObjectID, authorUID, authorName, body string) models.GroupPost {
	f.t.Helper()

	now := time.Now().UTC()
	post := models.GroupPost{
		ID:         primitive.NewObjectID(),
		GroupID:    groupID,
		UID:        authorUID,
		AuthorName: authorName,
		Body:       body,
		Likes:      []string{},
		Comments:   []models.InlineComment{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := f.db.Collection("group_posts").InsertOne(ctx, post)
	if err != nil {
		f.t.Fatalf("failed to create test group post: %v", err)
	}

	return post
}

// CreateGroupComment creates a standalone comment on a group post.
func (f *Fixtures) CreateGroupComment(ctx context.Context, postID primitive.ObjectID, authorUID, authorName, body string) models.GroupComment {
	f.t.Helper()

	comment := models.GroupComment{
		ID:         primitive.NewObjectID(),
		PostID:     postID,
		UID:        authorUID,
		AuthorName: authorName,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := f.db.Collection("group_comments").InsertOne(ctx, comment)
	if err != nil {
		f.t.Fatalf("failed to create test group comment: %v", err)
	}

	return comment
}

// CreateGroupReply creates a reply in a comment's thread. Pass a non-nil
// parent to nest the reply under another reply.
func (f *Fixtures) CreateGroupReply(ctx context.Context, commentID primitive.ObjectID, parent *primitive.ObjectID, authorUID, authorName, body string) models.GroupReply {
	f.t.Helper()

	reply := models.GroupReply{
		ID:            primitive.NewObjectID(),
		CommentID:     commentID,
		ParentReplyID: parent,
		UID:           authorUID,
		AuthorName:    authorName,
		Body:          body,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := f.db.Collection("group_replies").InsertOne(ctx, reply)
	if err != nil {
		f.t.Fatalf("failed to create test group reply: %v", err)
	}

	return reply
}
