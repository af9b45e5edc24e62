// internal/app/cascade/executor.go
package cascade

import (
	"context"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/driftwoodapp/driftwood/internal/app/system/objstore"
)

// maxPhaseWorkers bounds the per-document fan-out inside a single phase.
const maxPhaseWorkers = 8

// storagePrefixes lists the object-store trees that belong to a user.
func storagePrefixes(uid string) []string {
	return []string{
		"avatars/" + uid,
		"banners/" + uid,
		"users/" + uid,
		"posts/" + uid,
	}
}

// Executor runs the full cleanup cascade for one user. Each phase is
// best-effort: a failure is logged and the cascade moves on, so one bad
// document can never leave the rest of the user's data orphaned. Running
// the cascade again for the same user is safe and reports all zeros.
type Executor struct {
	db    *mongo.Database
	blobs objstore.Store
	res   *Resolver
	log   *zap.Logger
}

func NewExecutor(db *mongo.Database, blobs objstore.Store, logger *zap.Logger) *Executor {
	return &Executor{
		db:    db,
		blobs: blobs,
		res:   NewResolver(db, logger),
		log:   logger,
	}
}

// Run deletes everything the user authored, strips their likes, comments,
// replies and memberships out of other users' documents, removes friend
// links, deletes the profile, and clears the user's storage trees.
//
// The display name is resolved before the profile is deleted; it gates the
// legacy fallback matching for documents that carry no UID alias at all.
func (e *Executor) Run(ctx context.Context, uid string) Result {
	var r Result

	displayName := e.res.ResolveDisplayName(ctx, uid)

	e.deleteAuthoredPosts(ctx, uid, displayName, &r)
	e.deleteAuthoredGroupPosts(ctx, uid, displayName, &r)
	e.deleteAuthoredGroupComments(ctx, uid, displayName, &r)
	e.deleteAuthoredGroupReplies(ctx, uid, displayName, &r)
	e.removeLikes(ctx, uid, &r)
	e.filterInline(ctx, "posts", uid, displayName, &r)
	e.filterInline(ctx, "group_posts", uid, displayName, &r)
	e.removeMemberships(ctx, uid, &r)
	e.removeFriendLinks(ctx, uid, &r)
	e.deleteProfile(ctx, uid, &r)
	e.clearStorage(ctx, uid, &r)

	e.log.Info("user cascade complete",
		zap.String("uid", uid),
		zap.Int("total", r.Total()))
	return r
}

// deleteAuthoredPosts removes every post the user authored, along with the
// normalized comments and replies hanging off each post.
func (e *Executor) deleteAuthoredPosts(ctx context.Context, uid, displayName string, r *Result) {
	matches, err := e.res.FindAuthoredWithFallback(ctx, "posts", uid, displayName)
	if err != nil {
		e.log.Warn("cascade: resolving authored posts failed",
			zap.String("uid", uid), zap.Error(err))
	}

	var posts, comments, replies atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPhaseWorkers)
	for _, m := range matches {
		m := m
		g.Go(func() error {
			if res, err := e.db.Collection("post_replies").DeleteMany(gctx, bson.M{"post_id": m.ID}); err != nil {
				e.log.Warn("cascade: deleting post replies failed",
					zap.Any("post_id", m.ID), zap.Error(err))
			} else {
				replies.Add(res.DeletedCount)
			}
			if res, err := e.db.Collection("post_comments").DeleteMany(gctx, bson.M{"post_id": m.ID}); err != nil {
				e.log.Warn("cascade: deleting post comments failed",
					zap.Any("post_id", m.ID), zap.Error(err))
			} else {
				comments.Add(res.DeletedCount)
			}
			if res, err := e.db.Collection("posts").DeleteOne(gctx, bson.M{"_id": m.ID}); err != nil {
				e.log.Warn("cascade: deleting post failed",
					zap.Any("post_id", m.ID), zap.Error(err))
			} else {
				posts.Add(res.DeletedCount)
			}
			return nil
		})
	}
	_ = g.Wait()

	r.DeletedPosts += int(posts.Load())
	r.DeletedPostComments += int(comments.Load())
	r.DeletedPostReplies += int(replies.Load())
}

// deleteAuthoredGroupPosts removes the user's group posts and cascades each
// post's comments and reply threads.
func (e *Executor) deleteAuthoredGroupPosts(ctx context.Context, uid, displayName string, r *Result) {
	matches, err := e.res.FindAuthoredWithFallback(ctx, "group_posts", uid, displayName)
	if err != nil {
		e.log.Warn("cascade: resolving authored group posts failed",
			zap.String("uid", uid), zap.Error(err))
	}

	var posts, comments, replies atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPhaseWorkers)
	for _, m := range matches {
		m := m
		g.Go(func() error {
			n, nr := e.deleteGroupCommentsByPost(gctx, m.ID)
			comments.Add(n)
			replies.Add(nr)

			if res, err := e.db.Collection("group_posts").DeleteOne(gctx, bson.M{"_id": m.ID}); err != nil {
				e.log.Warn("cascade: deleting group post failed",
					zap.Any("post_id", m.ID), zap.Error(err))
			} else {
				posts.Add(res.DeletedCount)
			}
			return nil
		})
	}
	_ = g.Wait()

	r.DeletedGroupPosts += int(posts.Load())
	r.DeletedGroupComments += int(comments.Load())
	r.DeletedGroupReplies += int(replies.Load())
}

// deleteGroupCommentsByPost removes every comment on a group post together
// with each comment's reply thread. Returns (comments, replies) deleted.
func (e *Executor) deleteGroupCommentsByPost(ctx context.Context, postID interface{}) (int64, int64) {
	cur, err := e.db.Collection("group_comments").Find(ctx, bson.M{"post_id": postID})
	if err != nil {
		e.log.Warn("cascade: listing group comments failed",
			zap.Any("post_id", postID), zap.Error(err))
		return 0, 0
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		e.log.Warn("cascade: reading group comments failed",
			zap.Any("post_id", postID), zap.Error(err))
		return 0, 0
	}

	var comments, replies int64
	for _, doc := range docs {
		comments += 1
		replies += e.deleteReplyThread(ctx, doc["_id"])
	}

	res, err := e.db.Collection("group_comments").DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		e.log.Warn("cascade: deleting group comments failed",
			zap.Any("post_id", postID), zap.Error(err))
		return 0, replies
	}
	// Trust the actual delete count over the pre-scan in case the set moved.
	return minInt64(comments, res.DeletedCount), replies
}

// deleteReplyThread removes every reply under a comment, at any depth.
// Nested replies carry the root comment id, so one DeleteMany is the whole
// thread. Returns the number of replies deleted.
func (e *Executor) deleteReplyThread(ctx context.Context, commentID interface{}) int64 {
	res, err := e.db.Collection("group_replies").DeleteMany(ctx, bson.M{"comment_id": commentID})
	if err != nil {
		e.log.Warn("cascade: deleting reply thread failed",
			zap.Any("comment_id", commentID), zap.Error(err))
		return 0
	}
	return res.DeletedCount
}

// deleteAuthoredGroupComments removes the user's comments on other users'
// group posts, each with its full reply thread.
func (e *Executor) deleteAuthoredGroupComments(ctx context.Context, uid, displayName string, r *Result) {
	matches, err := e.res.FindAuthoredWithFallback(ctx, "group_comments", uid, displayName)
	if err != nil {
		e.log.Warn("cascade: resolving authored group comments failed",
			zap.String("uid", uid), zap.Error(err))
	}

	var comments, replies atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPhaseWorkers)
	for _, m := range matches {
		m := m
		g.Go(func() error {
			replies.Add(e.deleteReplyThread(gctx, m.ID))
			if res, err := e.db.Collection("group_comments").DeleteOne(gctx, bson.M{"_id": m.ID}); err != nil {
				e.log.Warn("cascade: deleting group comment failed",
					zap.Any("comment_id", m.ID), zap.Error(err))
			} else {
				comments.Add(res.DeletedCount)
			}
			return nil
		})
	}
	_ = g.Wait()

	r.DeletedGroupComments += int(comments.Load())
	r.DeletedGroupReplies += int(replies.Load())
}

// deleteAuthoredGroupReplies removes the user's replies in other users'
// threads. Replies under these are left in place: a reply thread only dies
// with its root comment.
func (e *Executor) deleteAuthoredGroupReplies(ctx context.Context, uid, displayName string, r *Result) {
	matches, err := e.res.FindAuthoredWithFallback(ctx, "group_replies", uid, displayName)
	if err != nil {
		e.log.Warn("cascade: resolving authored group replies failed",
			zap.String("uid", uid), zap.Error(err))
	}

	ids := make([]interface{}, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	if len(ids) == 0 {
		return
	}

	res, err := e.db.Collection("group_replies").DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		e.log.Warn("cascade: deleting group replies failed",
			zap.String("uid", uid), zap.Error(err))
		return
	}
	r.DeletedGroupReplies += int(res.DeletedCount)
}

// removeLikes pulls the user's UID out of every likes array, in regular
// posts and group posts both. Other users' likes are untouched: the pull
// matches the value, not the array.
func (e *Executor) removeLikes(ctx context.Context, uid string, r *Result) {
	res, err := e.db.Collection("posts").UpdateMany(ctx,
		bson.M{"likes": uid},
		bson.M{"$pull": bson.M{"likes": uid}})
	if err != nil {
		e.log.Warn("cascade: pulling likes from posts failed",
			zap.String("uid", uid), zap.Error(err))
	} else {
		r.RemovedLikes += int(res.ModifiedCount)
	}

	res, err = e.db.Collection("group_posts").UpdateMany(ctx,
		bson.M{"likes": uid},
		bson.M{"$pull": bson.M{"likes": uid}})
	if err != nil {
		e.log.Warn("cascade: pulling likes from group posts failed",
			zap.String("uid", uid), zap.Error(err))
	} else {
		r.RemovedGroupLikes += int(res.ModifiedCount)
	}
}

// filterInline strips the user's embedded comments and replies out of the
// given collection's documents, preserving the order of everything that
// stays. Embedded entries have no standalone identity, so the author check
// accepts any alias field or the denormalized author name directly.
func (e *Executor) filterInline(ctx context.Context, collection, uid, displayName string, r *Result) {
	filter := inlineAuthorFilter(uid, displayName)

	cur, err := e.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		e.log.Warn("cascade: scanning embedded comments failed",
			zap.String("collection", collection), zap.Error(err))
		return
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		e.log.Warn("cascade: reading embedded comments failed",
			zap.String("collection", collection), zap.Error(err))
		return
	}

	var removedComments, removedReplies atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPhaseWorkers)
	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			kept, nc, nr := filterComments(doc["comments"], uid, displayName)
			if nc == 0 && nr == 0 {
				return nil
			}
			_, err := e.db.Collection(collection).UpdateOne(gctx,
				bson.M{"_id": doc["_id"]},
				bson.M{"$set": bson.M{"comments": kept}})
			if err != nil {
				e.log.Warn("cascade: rewriting embedded comments failed",
					zap.String("collection", collection),
					zap.Any("post_id", doc["_id"]),
					zap.Error(err))
				return nil
			}
			removedComments.Add(int64(nc))
			removedReplies.Add(int64(nr))
			return nil
		})
	}
	_ = g.Wait()

	r.RemovedInlineComments += int(removedComments.Load())
	r.RemovedInlineReplies += int(removedReplies.Load())
}

// inlineAuthorFilter matches documents whose embedded comments or replies
// were authored by the user, under any alias field or the author name.
func inlineAuthorFilter(uid, displayName string) bson.M {
	var ors []bson.M
	for _, f := range AuthorAliasFields {
		ors = append(ors,
			bson.M{"comments." + f: uid},
			bson.M{"comments.replies." + f: uid})
	}
	if displayName != "" {
		ors = append(ors,
			bson.M{"comments." + displayNameField: displayName},
			bson.M{"comments.replies." + displayNameField: displayName})
	}
	return bson.M{"$or": ors}
}

// filterComments walks a raw comments array, dropping the user's comments
// (and their whole reply subtrees with them) and the user's replies inside
// surviving comments. Returns the kept array plus removal counts.
func filterComments(raw interface{}, uid, displayName string) (primitive.A, int, int) {
	arr, ok := raw.(primitive.A)
	if !ok {
		return primitive.A{}, 0, 0
	}

	kept := make(primitive.A, 0, len(arr))
	var removedComments, removedReplies int

	for _, item := range arr {
		comment, ok := item.(bson.M)
		if !ok {
			kept = append(kept, item)
			continue
		}
		if matchesUser(comment, uid, displayName) {
			removedComments++
			continue
		}
		if replies, ok := comment["replies"].(primitive.A); ok {
			keptReplies := make(primitive.A, 0, len(replies))
			for _, ri := range replies {
				reply, ok := ri.(bson.M)
				if ok && matchesUser(reply, uid, displayName) {
					removedReplies++
					continue
				}
				keptReplies = append(keptReplies, ri)
			}
			comment["replies"] = keptReplies
		}
		kept = append(kept, comment)
	}
	return kept, removedComments, removedReplies
}

// removeMemberships removes the user from groups in both representations:
// the group_members collection and the legacy inline members arrays.
func (e *Executor) removeMemberships(ctx context.Context, uid string, r *Result) {
	res, err := e.db.Collection("group_members").DeleteMany(ctx, bson.M{"user_uid": uid})
	if err != nil {
		e.log.Warn("cascade: deleting memberships failed",
			zap.String("uid", uid), zap.Error(err))
	} else {
		r.RemovedMemberships += int(res.DeletedCount)
	}

	upd, err := e.db.Collection("groups").UpdateMany(ctx,
		bson.M{"members": uid},
		bson.M{"$pull": bson.M{"members": uid}})
	if err != nil {
		e.log.Warn("cascade: pulling legacy members failed",
			zap.String("uid", uid), zap.Error(err))
	} else {
		r.RemovedLegacyMembers += int(upd.ModifiedCount)
	}
}

// removeFriendLinks deletes friend requests in either direction and any
// friendship involving the user.
func (e *Executor) removeFriendLinks(ctx context.Context, uid string, r *Result) {
	res, err := e.db.Collection("friend_requests").DeleteMany(ctx, bson.M{
		"$or": []bson.M{{"from_uid": uid}, {"to_uid": uid}},
	})
	if err != nil {
		e.log.Warn("cascade: deleting friend requests failed",
			zap.String("uid", uid), zap.Error(err))
	} else {
		r.DeletedFriendLinks += int(res.DeletedCount)
	}

	res, err = e.db.Collection("friendships").DeleteMany(ctx, bson.M{"uids": uid})
	if err != nil {
		e.log.Warn("cascade: deleting friendships failed",
			zap.String("uid", uid), zap.Error(err))
	} else {
		r.DeletedFriendLinks += int(res.DeletedCount)
	}
}

// deleteProfile removes the user document itself. This runs after every
// content phase so the display name stayed resolvable for the fallbacks.
func (e *Executor) deleteProfile(ctx context.Context, uid string, r *Result) {
	res, err := e.db.Collection("users").DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		e.log.Warn("cascade: deleting profile failed",
			zap.String("uid", uid), zap.Error(err))
		return
	}
	r.DeletedProfiles += int(res.DeletedCount)
}

// clearStorage wipes each of the user's object-store trees. Every prefix
// is attempted independently; a failed tree is logged and skipped.
func (e *Executor) clearStorage(ctx context.Context, uid string, r *Result) {
	if e.blobs == nil {
		return
	}
	for _, prefix := range storagePrefixes(uid) {
		n, err := e.blobs.DeleteTree(ctx, prefix)
		if err != nil {
			e.log.Warn("cascade: clearing storage tree failed",
				zap.String("prefix", prefix), zap.Error(err))
			continue
		}
		if n > 0 {
			r.DeletedStorageObjects += n
			r.ClearedStoragePrefixes++
		}
	}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
