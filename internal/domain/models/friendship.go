// internal/domain/models/friendship.go
package models

import (
	"strings"
	"time"
)

// PairKey returns the deterministic _id for friend documents between two
// users: the lexically smaller UID first, joined with "__". Both directions
// of a relationship map to the same document.
func PairKey(uidA, uidB string) string {
	if strings.Compare(uidA, uidB) > 0 {
		uidA, uidB = uidB, uidA
	}
	return uidA + "__" + uidB
}

// FriendRequest is keyed by PairKey so a second request between the same
// pair (in either direction) collides instead of duplicating.
type FriendRequest struct {
	ID        string    `bson:"_id" json:"id"`
	FromUID   string    `bson:"from_uid" json:"from_uid"`
	ToUID     string    `bson:"to_uid" json:"to_uid"`
	Status    string    `bson:"status" json:"status"` // pending | accepted | declined
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Friendship is the accepted relationship, also keyed by PairKey.
type Friendship struct {
	ID        string    `bson:"_id" json:"id"`
	UIDs      []string  `bson:"uids" json:"uids"` // always the sorted pair
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
