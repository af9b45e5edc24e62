// internal/app/features/accounts/routes.go
package accounts

import "github.com/go-chi/chi/v5"

// AdminRoutes returns the admin-only account management endpoints.
// Mounted under /api/admin.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/delete-user", h.HandleAdminDelete)
	return r
}

// HookRoutes returns the identity-provider callback endpoints.
// Mounted under /hooks/identity. These authenticate with the shared hook
// secret, not a session.
func HookRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/user-deleted", h.HandleUserDeletedHook)
	return r
}
