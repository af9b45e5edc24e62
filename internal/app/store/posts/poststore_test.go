package poststore_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	poststore "github.com/driftwoodapp/driftwood/internal/app/store/posts"
	"github.com/driftwoodapp/driftwood/internal/domain/models"
	"github.com/driftwoodapp/driftwood/internal/testutil"
)

func TestAddLike_SetSemantics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := poststore.New(db)

	post, err := store.Create(ctx, models.Post{UID: "a1", AuthorName: "Alice", Body: "hello"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	changed, err := store.AddLike(ctx, post.ID, "b2")
	if err != nil {
		t.Fatalf("first like: %v", err)
	}
	if !changed {
		t.Error("first like: changed = false, want true")
	}

	changed, err = store.AddLike(ctx, post.ID, "b2")
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if changed {
		t.Error("second like: changed = true, want false")
	}

	got, err := store.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if len(got.Likes) != 1 || got.Likes[0] != "b2" {
		t.Errorf("likes = %v, want [b2]", got.Likes)
	}
}

func TestRemoveLike_AbsentIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := poststore.New(db)

	post, err := store.Create(ctx, models.Post{UID: "a1", AuthorName: "Alice", Body: "hello"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	changed, err := store.RemoveLike(ctx, post.ID, "nobody")
	if err != nil {
		t.Fatalf("remove absent like: %v", err)
	}
	if changed {
		t.Error("remove absent like: changed = true, want false")
	}
}

func TestAddInlineReply_MissingComment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := poststore.New(db)

	post, err := store.Create(ctx, models.Post{UID: "a1", AuthorName: "Alice", Body: "hello"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	_, err = store.AddInlineReply(ctx, post.ID, "no-such-comment", "b2", "Bob", "hi")
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("reply to missing comment: err = %v, want ErrNoDocuments", err)
	}
}

func TestAddInlineComment_ThenReply(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := poststore.New(db)

	post, err := store.Create(ctx, models.Post{UID: "a1", AuthorName: "Alice", Body: "hello"})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	commentID, err := store.AddInlineComment(ctx, post.ID, "b2", "Bob", "nice")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if _, err := store.AddInlineReply(ctx, post.ID, commentID, "a1", "Alice", "thanks"); err != nil {
		t.Fatalf("add reply: %v", err)
	}

	got, err := store.GetByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("reload post: %v", err)
	}
	if len(got.Comments) != 1 {
		t.Fatalf("comments = %d, want 1", len(got.Comments))
	}
	if got.Comments[0].ID != commentID {
		t.Errorf("comment id = %q, want %q", got.Comments[0].ID, commentID)
	}
	if len(got.Comments[0].Replies) != 1 {
		t.Fatalf("replies = %d, want 1", len(got.Comments[0].Replies))
	}
	if got.Comments[0].Replies[0].UID != "a1" {
		t.Errorf("reply uid = %q, want a1", got.Comments[0].Replies[0].UID)
	}
}

func TestListRecent_RespectsLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := poststore.New(db)

	for _, body := range []string{"one", "two", "three"} {
		if _, err := store.Create(ctx, models.Post{UID: "a1", AuthorName: "Alice", Body: body}); err != nil {
			t.Fatalf("create post %q: %v", body, err)
		}
	}

	posts, err := store.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("len(posts) = %d, want 2", len(posts))
	}
}
