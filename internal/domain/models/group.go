// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is a community inside Driftwood.
//
// Membership exists in two representations: role-tagged records in the
// group_members collection, and the legacy inline Members UID array kept on
// the group document itself. Writers maintain both; cleanup must handle both.
type Group struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"name_ci"`
	Description string             `bson:"description" json:"description"`
	OwnerUID    string             `bson:"owner_uid" json:"owner_uid"`

	Members []string `bson:"members,omitempty" json:"members,omitempty"` // legacy inline UID array

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// GroupMember is a role-tagged membership record.
// Roles form a strict hierarchy: creator > admin > moderator > member.
type GroupMember struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	GroupID   primitive.ObjectID `bson:"group_id" json:"group_id"`
	UserUID   string             `bson:"user_uid" json:"user_uid"`
	Role      string             `bson:"role" json:"role"` // creator | admin | moderator | member
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// GroupPost is a post inside a group. Same authoring-alias history as Post.
type GroupPost struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	GroupID    primitive.ObjectID `bson:"group_id" json:"group_id"`
	UID        string             `bson:"uid,omitempty" json:"uid,omitempty"`
	AuthorName string             `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Body       string             `bson:"body" json:"body"`
	ImageURL   string             `bson:"image_url,omitempty" json:"image_url,omitempty"`

	Likes    []string        `bson:"likes,omitempty" json:"likes,omitempty"`
	Comments []InlineComment `bson:"comments,omitempty" json:"comments,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// GroupComment is a comment on a group post. Unlike feed comments these are
// never embedded: each is its own document referencing the post by id.
type GroupComment struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	PostID     primitive.ObjectID `bson:"post_id" json:"post_id"`
	UID        string             `bson:"uid,omitempty" json:"uid,omitempty"`
	AuthorName string             `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Body       string             `bson:"body" json:"body"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// GroupReply is a reply under a GroupComment. ParentReplyID allows replies
// to replies at arbitrary depth; CommentID always points at the root comment
// so a whole thread can be found in one query.
type GroupReply struct {
	ID            primitive.ObjectID  `bson:"_id" json:"id"`
	CommentID     primitive.ObjectID  `bson:"comment_id" json:"comment_id"`
	ParentReplyID *primitive.ObjectID `bson:"parent_reply_id,omitempty" json:"parent_reply_id,omitempty"`
	UID           string              `bson:"uid,omitempty" json:"uid,omitempty"`
	AuthorName    string              `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Body          string              `bson:"body" json:"body"`
	CreatedAt     time.Time           `bson:"created_at" json:"created_at"`
}
