// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/driftwoodapp/driftwood/internal/app/system/auth"
)

// UserCtx returns the user's role (lowercased), name, UID, and a found flag.
// If no user is present in context, it returns "visitor", "", "", false, so
// callers can trust that ok=true means a valid authenticated user.
func UserCtx(r *http.Request) (role string, name string, uid string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", "", false
	}
	return strings.ToLower(user.Role), user.Name, user.UID, true
}

// IsAdmin reports whether the current request's user carries the admin role
// in their session. Callers that must not trust a stale session claim should
// fall back to the profile document (see accounts.HandleAdminDelete).
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// IsModerator reports whether the current request's user is a moderator.
// Admins are also considered moderators for permission purposes.
func IsModerator(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == "moderator" || role == "admin")
}
