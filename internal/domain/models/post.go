// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a top-level feed post.
//
// Authoring history: new writes record the author under "uid", but documents
// migrated from earlier schema generations may instead carry "author_uid",
// "author_id", or "user_id", and the oldest imports carry only "author_name".
// Exactly one alias is authoritative per document. Readers that need to
// resolve authorship across generations should go through the cascade
// resolver's alias table rather than probing fields ad hoc.
//
// Comments exist in two representations: the inline Comments array below and
// the post_comments/post_replies collections (see PostComment, PostReply).
// Both are live; neither is a mirror of the other.
type Post struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	UID        string             `bson:"uid,omitempty" json:"uid,omitempty"`
	AuthorName string             `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Body       string             `bson:"body" json:"body"`
	ImageURL   string             `bson:"image_url,omitempty" json:"image_url,omitempty"`

	Likes    []string        `bson:"likes,omitempty" json:"likes,omitempty"` // set of UIDs
	Comments []InlineComment `bson:"comments,omitempty" json:"comments,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// InlineComment is a comment embedded directly in a post document.
type InlineComment struct {
	ID         string        `bson:"id" json:"id"` // uuid, not an ObjectID
	UID        string        `bson:"uid,omitempty" json:"uid,omitempty"`
	AuthorName string        `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Body       string        `bson:"body" json:"body"`
	Replies    []InlineReply `bson:"replies,omitempty" json:"replies,omitempty"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
}

// InlineReply is a reply embedded in an inline comment.
type InlineReply struct {
	ID         string    `bson:"id" json:"id"`
	UID        string    `bson:"uid,omitempty" json:"uid,omitempty"`
	AuthorName string    `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Body       string    `bson:"body" json:"body"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// PostComment is the normalized-collection form of a post comment.
type PostComment struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	PostID     primitive.ObjectID `bson:"post_id" json:"post_id"`
	UID        string             `bson:"uid,omitempty" json:"uid,omitempty"`
	AuthorName string             `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Body       string             `bson:"body" json:"body"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// PostReply is the normalized-collection form of a reply to a PostComment.
type PostReply struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	PostID     primitive.ObjectID `bson:"post_id" json:"post_id"`
	CommentID  primitive.ObjectID `bson:"comment_id" json:"comment_id"`
	UID        string             `bson:"uid,omitempty" json:"uid,omitempty"`
	AuthorName string             `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Body       string             `bson:"body" json:"body"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}
