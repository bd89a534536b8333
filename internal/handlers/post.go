package handlers

import (
	"net/http"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/forms"
	"github.com/crucial707/microblog/internal/middleware"
)

// PostHandler serves the timelines and post creation.
type PostHandler struct {
	App *app.App
}

// Feed is the current user's following feed: their own posts and those of
// everyone they follow, newest first.
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	me := middleware.CurrentUser(r.Context())
	page, err := h.App.Feed.Home(r.Context(), me.ID, pageParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PostHandler) Explore(w http.ResponseWriter, r *http.Request) {
	page, err := h.App.Feed.Explore(r.Context(), pageParam(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var input forms.Post
	if !decode(w, r, &input) {
		return
	}
	post, err := h.App.CreatePost(r.Context(), middleware.CurrentUser(r.Context()), &input, r.Header.Get("Accept-Language"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// Translate renders text in dest_language.
func (h *PostHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Text           string `json:"text"`
		SourceLanguage string `json:"source_language"`
		DestLanguage   string `json:"dest_language"`
	}
	if !decode(w, r, &input) {
		return
	}
	fields := forms.Errors{}
	if input.Text == "" {
		fields.Add("text", "This field is required.")
	}
	if input.DestLanguage == "" {
		fields.Add("dest_language", "This field is required.")
	}
	if fields.Any() {
		JSONValidationError(w, "validation failed", fields, http.StatusBadRequest)
		return
	}

	text, err := h.App.Translate(r.Context(), input.Text, input.SourceLanguage, input.DestLanguage)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}
