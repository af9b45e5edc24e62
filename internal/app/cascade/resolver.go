// internal/app/cascade/resolver.go
package cascade

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AuthorAliasFields lists every field name that has historically held the
// authoring user's UID. Exactly one alias is authoritative per document,
// but the store cannot OR across field names in one query, so resolution
// scans once per alias and unions the results.
//
// Keep this a flat table. Do not replace it with per-collection schema
// knowledge; the whole point is that old documents predate the schema.
var AuthorAliasFields = []string{"uid", "author_uid", "author_id", "user_id"}

// displayNameField is the denormalized author label some legacy documents
// carry instead of any UID alias.
const displayNameField = "author_name"

// Match is one document found to reference the user being deleted.
type Match struct {
	ID  interface{} // raw _id (ObjectID for most collections, string for users)
	Doc bson.M
}

// Resolver finds the documents that reference a user, first by UID across
// the alias fields, then (only when that finds nothing) by the user's
// denormalized display name.
type Resolver struct {
	db  *mongo.Database
	log *zap.Logger
}

func NewResolver(db *mongo.Database, logger *zap.Logger) *Resolver {
	return &Resolver{db: db, log: logger}
}

// ResolveDisplayName returns the display name recorded on the user's
// profile, or "" if the profile is missing or unreadable. It never returns
// an error: a missing name only disables fallback matching, it must not
// stop a cascade.
func (r *Resolver) ResolveDisplayName(ctx context.Context, uid string) string {
	var doc struct {
		DisplayName string `bson:"display_name"`
	}
	err := r.db.Collection("users").FindOne(ctx, bson.M{"_id": uid}).Decode(&doc)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			r.log.Warn("display name lookup failed",
				zap.String("uid", uid),
				zap.Error(err))
		}
		return ""
	}
	return doc.DisplayName
}

// FindAuthored returns the documents in collection whose author is uid,
// scanning one query per alias field and deduplicating by _id.
func (r *Resolver) FindAuthored(ctx context.Context, collection, uid string) ([]Match, error) {
	seen := make(map[string]struct{})
	var matches []Match

	for _, field := range AuthorAliasFields {
		cur, err := r.db.Collection(collection).Find(ctx, bson.M{field: uid})
		if err != nil {
			return matches, err
		}
		var docs []bson.M
		if err := cur.All(ctx, &docs); err != nil {
			return matches, err
		}
		for _, doc := range docs {
			key := idKey(doc["_id"])
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			matches = append(matches, Match{ID: doc["_id"], Doc: doc})
		}
	}
	return matches, nil
}

// FindByDisplayName returns the documents whose denormalized author label
// equals name. This is a heuristic: two users can share a display name, so
// callers must only use it when UID matching found nothing.
func (r *Resolver) FindByDisplayName(ctx context.Context, collection, name string) ([]Match, error) {
	if name == "" {
		return nil, nil
	}
	cur, err := r.db.Collection(collection).Find(ctx, bson.M{displayNameField: name})
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(docs))
	for _, doc := range docs {
		matches = append(matches, Match{ID: doc["_id"], Doc: doc})
	}
	return matches, nil
}

// FindAuthoredWithFallback resolves authored documents by UID, falling back
// to display-name matching only when the UID scan found zero documents.
// The fallback never runs alongside UID results: if the user's own UID
// matched anything, a same-named document from another user must not be
// swept in.
func (r *Resolver) FindAuthoredWithFallback(ctx context.Context, collection, uid, displayName string) ([]Match, error) {
	matches, err := r.FindAuthored(ctx, collection, uid)
	if err != nil {
		return matches, err
	}
	if len(matches) > 0 {
		return matches, nil
	}
	return r.FindByDisplayName(ctx, collection, displayName)
}

// matchesUser reports whether an embedded document (inline comment or
// reply) was authored by the user: any alias field equal to uid, or the
// denormalized author label equal to displayName. Inline entries are too
// small to resolve individually, so here the name check is unconditional
// rather than fallback-gated.
func matchesUser(doc bson.M, uid, displayName string) bool {
	for _, field := range AuthorAliasFields {
		if v, ok := doc[field].(string); ok && v == uid {
			return true
		}
	}
	if displayName != "" {
		if v, ok := doc[displayNameField].(string); ok && v == displayName {
			return true
		}
	}
	return false
}

// idKey renders any _id value to a stable map key for deduplication.
func idKey(id interface{}) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
