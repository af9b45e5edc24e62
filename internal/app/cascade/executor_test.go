package cascade

import (
	"context"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/driftwoodapp/driftwood/internal/app/system/objstore"
	"github.com/driftwoodapp/driftwood/internal/domain/models"
	"github.com/driftwoodapp/driftwood/internal/testutil"
)

func TestRunDeletesEverythingForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	alice := fx.CreateUser(ctx, "a1", "Alice", "member")
	bob := fx.CreateUser(ctx, "b2", "Bob", "member")

	// One feed post by Alice, liked by Bob.
	post := fx.CreatePost(ctx, alice.UID, alice.DisplayName, "hello from alice")
	mustUpdate(t, ctx, db, "posts", post.ID, bson.M{"$addToSet": bson.M{"likes": bob.UID}})

	// A comment by Alice on Bob's group post, with a two-deep reply thread.
	g1 := fx.CreateGroup(ctx, "Hiking", bob.UID)
	g2 := fx.CreateGroup(ctx, "Baking", bob.UID)
	bobPost := fx.CreateGroupPost(ctx, g1.ID, bob.UID, bob.DisplayName, "bob's post")
	comment := fx.CreateGroupComment(ctx, bobPost.ID, alice.UID, alice.DisplayName, "alice's comment")
	r1 := fx.CreateGroupReply(ctx, comment.ID, nil, bob.UID, bob.DisplayName, "bob replies")
	fx.CreateGroupReply(ctx, comment.ID, &r1.ID, bob.UID, bob.DisplayName, "bob again")

	// Alice belongs to both groups, in both membership representations.
	fx.CreateGroupMember(ctx, g1.ID, alice.UID, "member")
	fx.CreateGroupMember(ctx, g2.ID, alice.UID, "member")
	mustUpdate(t, ctx, db, "groups", g1.ID, bson.M{"$addToSet": bson.M{"members": alice.UID}})
	mustUpdate(t, ctx, db, "groups", g2.ID, bson.M{"$addToSet": bson.M{"members": alice.UID}})

	e := NewExecutor(db, nil, zap.NewNop())
	res := e.Run(ctx, alice.UID)

	if got, want := res.DeletedPosts, 1; got != want {
		t.Errorf("DeletedPosts: got %d, want %d", got, want)
	}
	if got, want := res.DeletedGroupComments, 1; got != want {
		t.Errorf("DeletedGroupComments: got %d, want %d", got, want)
	}
	if got, want := res.DeletedGroupReplies, 2; got != want {
		t.Errorf("DeletedGroupReplies: got %d, want %d", got, want)
	}
	if got, want := res.RemovedMemberships, 2; got != want {
		t.Errorf("RemovedMemberships: got %d, want %d", got, want)
	}
	if got, want := res.RemovedLegacyMembers, 2; got != want {
		t.Errorf("RemovedLegacyMembers: got %d, want %d", got, want)
	}
	if got, want := res.RemovedLikes, 0; got != want {
		t.Errorf("RemovedLikes: got %d, want %d", got, want)
	}
	if got, want := res.DeletedProfiles, 1; got != want {
		t.Errorf("DeletedProfiles: got %d, want %d", got, want)
	}

	// Bob's post survives, minus Alice's comment thread.
	if n := countDocs(t, ctx, db, "group_posts", bson.M{"_id": bobPost.ID}); n != 1 {
		t.Errorf("bob's group post: got %d docs, want 1", n)
	}
	if n := countDocs(t, ctx, db, "group_comments", bson.M{}); n != 0 {
		t.Errorf("group_comments left: got %d, want 0", n)
	}
	if n := countDocs(t, ctx, db, "group_replies", bson.M{}); n != 0 {
		t.Errorf("group_replies left: got %d, want 0", n)
	}

	// Second pass finds nothing.
	if res2 := e.Run(ctx, alice.UID); !res2.IsZero() {
		t.Errorf("second run not zero: %+v", res2)
	}
}

func TestRunPreservesOtherUsersLikes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateUser(ctx, "a1", "Alice", "member")
	post := fx.CreatePost(ctx, "b2", "Bob", "bob's post")
	mustUpdate(t, ctx, db, "posts", post.ID,
		bson.M{"$set": bson.M{"likes": []string{"c3", "a1", "d4"}}})

	e := NewExecutor(db, nil, zap.NewNop())
	res := e.Run(ctx, "a1")

	if got, want := res.RemovedLikes, 1; got != want {
		t.Errorf("RemovedLikes: got %d, want %d", got, want)
	}

	var after models.Post
	if err := db.Collection("posts").FindOne(ctx, bson.M{"_id": post.ID}).Decode(&after); err != nil {
		t.Fatalf("reloading post: %v", err)
	}
	if got, want := strings.Join(after.Likes, ","), "c3,d4"; got != want {
		t.Errorf("surviving likes: got %q, want %q", got, want)
	}
}

func TestRunFiltersEmbeddedCommentsInOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateUser(ctx, "a1", "Alice", "member")
	post := fx.CreatePost(ctx, "b2", "Bob", "bob's post")
	mustUpdate(t, ctx, db, "posts", post.ID, bson.M{"$set": bson.M{
		"comments": []models.InlineComment{
			{ID: "c1", UID: "c3", AuthorName: "Carol", Body: "first", Replies: []models.InlineReply{
				{ID: "r1", UID: "a1", AuthorName: "Alice", Body: "alice reply"},
				{ID: "r2", UID: "d4", AuthorName: "Dave", Body: "dave reply"},
			}},
			{ID: "c2", UID: "a1", AuthorName: "Alice", Body: "second"},
			{ID: "c3", UID: "d4", AuthorName: "Dave", Body: "third"},
		},
	}})

	e := NewExecutor(db, nil, zap.NewNop())
	res := e.Run(ctx, "a1")

	if got, want := res.RemovedInlineComments, 1; got != want {
		t.Errorf("RemovedInlineComments: got %d, want %d", got, want)
	}
	if got, want := res.RemovedInlineReplies, 1; got != want {
		t.Errorf("RemovedInlineReplies: got %d, want %d", got, want)
	}

	var after models.Post
	if err := db.Collection("posts").FindOne(ctx, bson.M{"_id": post.ID}).Decode(&after); err != nil {
		t.Fatalf("reloading post: %v", err)
	}
	if got, want := len(after.Comments), 2; got != want {
		t.Fatalf("surviving comments: got %d, want %d", got, want)
	}
	if after.Comments[0].ID != "c1" || after.Comments[1].ID != "c3" {
		t.Errorf("comment order: got [%s %s], want [c1 c3]",
			after.Comments[0].ID, after.Comments[1].ID)
	}
	if got, want := len(after.Comments[0].Replies), 1; got != want {
		t.Fatalf("surviving replies: got %d, want %d", got, want)
	}
	if after.Comments[0].Replies[0].ID != "r2" {
		t.Errorf("surviving reply: got %s, want r2", after.Comments[0].Replies[0].ID)
	}
}

func TestRunCascadesOwnGroupPostThreads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateUser(ctx, "a1", "Alice", "member")
	g := fx.CreateGroup(ctx, "Hiking", "b2")

	// Alice's group post carries Bob's comment and its thread; deleting the
	// post takes the whole conversation with it.
	alicePost := fx.CreateGroupPost(ctx, g.ID, "a1", "Alice", "alice's post")
	bobComment := fx.CreateGroupComment(ctx, alicePost.ID, "b2", "Bob", "bob's comment")
	fx.CreateGroupReply(ctx, bobComment.ID, nil, "c3", "Carol", "carol's reply")

	e := NewExecutor(db, nil, zap.NewNop())
	res := e.Run(ctx, "a1")

	if got, want := res.DeletedGroupPosts, 1; got != want {
		t.Errorf("DeletedGroupPosts: got %d, want %d", got, want)
	}
	if got, want := res.DeletedGroupComments, 1; got != want {
		t.Errorf("DeletedGroupComments: got %d, want %d", got, want)
	}
	if got, want := res.DeletedGroupReplies, 1; got != want {
		t.Errorf("DeletedGroupReplies: got %d, want %d", got, want)
	}
}

func TestRunDeletesNormalizedPostThreads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateUser(ctx, "a1", "Alice", "member")
	post := fx.CreatePost(ctx, "a1", "Alice", "alice's post")

	if _, err := db.Collection("post_comments").InsertOne(ctx, bson.M{
		"post_id": post.ID, "uid": "b2", "body": "bob's comment",
	}); err != nil {
		t.Fatalf("seeding comment: %v", err)
	}
	if _, err := db.Collection("post_replies").InsertOne(ctx, bson.M{
		"post_id": post.ID, "uid": "c3", "body": "carol's reply",
	}); err != nil {
		t.Fatalf("seeding reply: %v", err)
	}

	e := NewExecutor(db, nil, zap.NewNop())
	res := e.Run(ctx, "a1")

	if got, want := res.DeletedPosts, 1; got != want {
		t.Errorf("DeletedPosts: got %d, want %d", got, want)
	}
	if got, want := res.DeletedPostComments, 1; got != want {
		t.Errorf("DeletedPostComments: got %d, want %d", got, want)
	}
	if got, want := res.DeletedPostReplies, 1; got != want {
		t.Errorf("DeletedPostReplies: got %d, want %d", got, want)
	}
}

func TestRunClearsStorageTrees(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)

	fx.CreateUser(ctx, "a1", "Alice", "member")
	fx.CreateUser(ctx, "b2", "Bob", "member")

	blobs, err := objstore.NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	put := func(key string) {
		t.Helper()
		if err := blobs.Put(ctx, key, strings.NewReader("x"), 1, "text/plain"); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}
	put("avatars/a1/avatar.png")
	put("posts/a1/img1.jpg")
	put("posts/a1/img2.jpg")
	put("avatars/b2/avatar.png")

	e := NewExecutor(db, blobs, zap.NewNop())
	res := e.Run(ctx, "a1")

	if got, want := res.DeletedStorageObjects, 3; got != want {
		t.Errorf("DeletedStorageObjects: got %d, want %d", got, want)
	}
	if got, want := res.ClearedStoragePrefixes, 2; got != want {
		t.Errorf("ClearedStoragePrefixes: got %d, want %d", got, want)
	}

	// Bob's tree is untouched.
	if n, err := blobs.DeleteTree(context.Background(), "avatars/b2"); err != nil || n != 1 {
		t.Errorf("bob's avatar tree: got (%d, %v), want (1, nil)", n, err)
	}
}

func TestRunForUnknownUserIsZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)

	e := NewExecutor(db, nil, zap.NewNop())
	if res := e.Run(ctx, "ghost"); !res.IsZero() {
		t.Errorf("cascade for unknown user not zero: %+v", res)
	}
}

func mustUpdate(t *testing.T, ctx context.Context, db *mongo.Database, collection string, id interface{}, update bson.M) {
	t.Helper()
	if _, err := db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		t.Fatalf("updating %s: %v", collection, err)
	}
}

func countDocs(t *testing.T, ctx context.Context, db *mongo.Database, collection string, filter bson.M) int64 {
	t.Helper()
	n, err := db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		t.Fatalf("counting %s: %v", collection, err)
	}
	return n
}
