// internal/app/cascade/result.go
package cascade

// Result carries one counter per cleanup category. The admin delete
// endpoint returns it verbatim; the account-deletion hook only logs it.
// A second cascade for an already-deleted user reports all zeros.
type Result struct {
	DeletedPosts        int `json:"deleted_posts"`
	DeletedPostComments int `json:"deleted_post_comments"`
	DeletedPostReplies  int `json:"deleted_post_replies"`

	RemovedInlineComments int `json:"removed_inline_comments"`
	RemovedInlineReplies  int `json:"removed_inline_replies"`
	RemovedLikes          int `json:"removed_likes"`
	RemovedGroupLikes     int `json:"removed_group_likes"`

	DeletedGroupPosts    int `json:"deleted_group_posts"`
	DeletedGroupComments int `json:"deleted_group_comments"`
	DeletedGroupReplies  int `json:"deleted_group_replies"`

	RemovedMemberships   int `json:"removed_memberships"`
	RemovedLegacyMembers int `json:"removed_legacy_members"`
	DeletedFriendLinks   int `json:"deleted_friend_links"`

	DeletedProfiles        int `json:"deleted_profiles"`
	DeletedStorageObjects  int `json:"deleted_storage_objects"`
	ClearedStoragePrefixes int `json:"cleared_storage_prefixes"`
}

// Total sums every counter. Useful for "did anything change at all" checks.
func (r Result) Total() int {
	return r.DeletedPosts +
		r.DeletedPostComments +
		r.DeletedPostReplies +
		r.RemovedInlineComments +
		r.RemovedInlineReplies +
		r.RemovedLikes +
		r.RemovedGroupLikes +
		r.DeletedGroupPosts +
		r.DeletedGroupComments +
		r.DeletedGroupReplies +
		r.RemovedMemberships +
		r.RemovedLegacyMembers +
		r.DeletedFriendLinks +
		r.DeletedProfiles +
		r.DeletedStorageObjects +
		r.ClearedStoragePrefixes
}

// IsZero reports whether the cascade found nothing to clean.
func (r Result) IsZero() bool { return r.Total() == 0 }
