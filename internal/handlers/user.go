package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/forms"
	"github.com/crucial707/microblog/internal/middleware"
)

// ==========================
// UserHandler
// ==========================
type UserHandler struct {
	App *app.App
}

// ==========================
// List Users
// ==========================
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.App.Users.List(r.Context(), pageParam(r), h.App.Config.PostsPerPage)
	if err != nil {
		handleError(w, r, err)
		return
	}
	for i := range page.Items {
		page.Items[i].Email = ""
	}
	writeJSON(w, http.StatusOK, page)
}

// ==========================
// Get User (profile with counts)
// ==========================
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.CurrentUser(r.Context())
	profile, err := h.App.ProfileOf(r.Context(), viewer, chi.URLParam(r, "username"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if !profile.IsSelf {
		profile.User.Email = ""
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *UserHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	user, err := h.App.UserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	page, err := h.App.Feed.Profile(r.Context(), user.ID, pageParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	page, err := h.App.FollowersOf(r.Context(), chi.URLParam(r, "username"), pageParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	for i := range page.Items {
		page.Items[i].Email = ""
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	page, err := h.App.FollowingOf(r.Context(), chi.URLParam(r, "username"), pageParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	for i := range page.Items {
		page.Items[i].Email = ""
	}
	writeJSON(w, http.StatusOK, page)
}

// ==========================
// Follow / Unfollow
// ==========================

// Follow is idempotent: following twice answers 200 with changed=false.
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, true)
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, false)
}

func (h *UserHandler) changeFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	me := middleware.CurrentUser(r.Context())
	username := chi.URLParam(r, "username")

	var changed bool
	var err error
	if follow {
		_, changed, err = h.App.Follow(r.Context(), me, username)
	} else {
		_, changed, err = h.App.Unfollow(r.Context(), me, username)
	}
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":  username,
		"following": follow,
		"changed":   changed,
	})
}

// ==========================
// Me
// ==========================
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.CurrentUser(r.Context()))
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var input forms.EditProfile
	if !decode(w, r, &input) {
		return
	}
	user, err := h.App.UpdateProfile(r.Context(), middleware.CurrentUser(r.Context()), &input)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
