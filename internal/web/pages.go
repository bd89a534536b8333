package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/crucial707/microblog/internal/app"
	"github.com/crucial707/microblog/internal/forms"
	"github.com/crucial707/microblog/internal/middleware"
	"github.com/crucial707/microblog/internal/models"
	"github.com/crucial707/microblog/internal/repo"
	"github.com/crucial707/microblog/internal/translate"
)

// pageParam reads ?page=. Missing or invalid values mean the first page.
func pageParam(r *http.Request) int {
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		return p
	}
	return 1
}

func pageLinks(v *view, base string, p repo.Page[models.Post]) {
	v.Posts = &p
	if p.HasNext {
		v.NextURL = fmt.Sprintf("%s?page=%d", base, p.NextNum)
	}
	if p.HasPrev {
		v.PrevURL = fmt.Sprintf("%s?page=%d", base, p.PrevNum)
	}
}

// ==========================
// Timelines
// ==========================

// index shows the following feed with a post composer. A valid submission
// redirects back so a reload does not post twice.
func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	me := middleware.CurrentUser(r.Context())
	v := &view{Title: "Home", Form: &forms.Post{}}

	if r.Method == http.MethodPost {
		f := &forms.Post{Body: r.PostFormValue("post"), Language: r.PostFormValue("language")}
		_, err := s.App.CreatePost(r.Context(), me, f, r.Header.Get("Accept-Language"))
		var fieldErrs forms.Errors
		switch {
		case err == nil:
			s.flash(w, r, "Your post is now live!")
			http.Redirect(w, r, "/index", http.StatusSeeOther)
			return
		case errors.As(err, &fieldErrs):
			v.Form, v.Errors = f, fieldErrs
		default:
			s.fail(w, r, err)
			return
		}
	}

	posts, err := s.App.Feed.Home(r.Context(), me.ID, pageParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pageLinks(v, "/index", posts)
	status := http.StatusOK
	if v.Errors.Any() {
		status = http.StatusUnprocessableEntity
	}
	s.render(w, r, status, "index.html", v)
}

func (s *Server) explore(w http.ResponseWriter, r *http.Request) {
	posts, err := s.App.Feed.Explore(r.Context(), pageParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v := &view{Title: "Explore"}
	pageLinks(v, "/explore", posts)
	s.render(w, r, http.StatusOK, "index.html", v)
}

// ==========================
// Profiles
// ==========================
func (s *Server) user(w http.ResponseWriter, r *http.Request) {
	me := middleware.CurrentUser(r.Context())
	profile, err := s.App.ProfileOf(r.Context(), me, chi.URLParam(r, "username"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	posts, err := s.App.Feed.Profile(r.Context(), profile.User.ID, pageParam(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	v := &view{Title: profile.User.Username, Profile: profile}
	pageLinks(v, "/user/"+url.PathEscape(profile.User.Username), posts)
	s.render(w, r, http.StatusOK, "user.html", v)
}

func (s *Server) editProfile(w http.ResponseWriter, r *http.Request) {
	me := middleware.CurrentUser(r.Context())
	f := &forms.EditProfile{Username: me.Username, AboutMe: me.AboutMe}
	v := &view{Title: "Edit Profile", Form: f}

	if r.Method == http.MethodPost {
		f.Username = r.PostFormValue("username")
		f.AboutMe = r.PostFormValue("about_me")
		_, err := s.App.UpdateProfile(r.Context(), me, f)
		var fieldErrs forms.Errors
		switch {
		case err == nil:
			s.flash(w, r, "Your changes have been saved.")
			http.Redirect(w, r, "/user/edit_profile", http.StatusSeeOther)
			return
		case errors.As(err, &fieldErrs):
			v.Errors = fieldErrs
			s.render(w, r, http.StatusUnprocessableEntity, "edit_profile.html", v)
			return
		default:
			s.fail(w, r, err)
			return
		}
	}
	s.render(w, r, http.StatusOK, "edit_profile.html", v)
}

// ==========================
// Follow graph
// ==========================
func (s *Server) follow(w http.ResponseWriter, r *http.Request) {
	s.changeFollow(w, r, true)
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	s.changeFollow(w, r, false)
}

func (s *Server) changeFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	me := middleware.CurrentUser(r.Context())
	username := chi.URLParam(r, "username")

	var changed bool
	var err error
	if follow {
		_, changed, err = s.App.Follow(r.Context(), me, username)
	} else {
		_, changed, err = s.App.Unfollow(r.Context(), me, username)
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		s.flash(w, r, fmt.Sprintf("User %s not found.", username))
		http.Redirect(w, r, "/index", http.StatusSeeOther)
		return
	case errors.Is(err, repo.ErrSelfFollow):
		if follow {
			s.flash(w, r, "You cannot follow yourself!")
		} else {
			s.flash(w, r, "You cannot unfollow yourself!")
		}
	case err != nil:
		s.fail(w, r, err)
		return
	case follow && changed:
		s.flash(w, r, fmt.Sprintf("You are following %s!", username))
	case follow:
		s.flash(w, r, fmt.Sprintf("You are already following %s.", username))
	case changed:
		s.flash(w, r, fmt.Sprintf("You are not following %s.", username))
	default:
		s.flash(w, r, fmt.Sprintf("You were not following %s.", username))
	}
	http.Redirect(w, r, "/user/"+url.PathEscape(username), http.StatusSeeOther)
}

// ==========================
// Translation
// ==========================

// translate answers the UI's JSON translation request.
func (s *Server) translate(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text           string `json:"text"`
		SourceLanguage string `json:"source_language"`
		DestLanguage   string `json:"dest_language"`
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
	} else {
		in.Text = r.PostFormValue("text")
		in.SourceLanguage = r.PostFormValue("source_language")
		in.DestLanguage = r.PostFormValue("dest_language")
	}
	if in.Text == "" || in.DestLanguage == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text and dest_language are required"})
		return
	}

	text, err := s.App.Translate(r.Context(), in.Text, in.SourceLanguage, in.DestLanguage)
	switch {
	case errors.Is(err, translate.ErrNotConfigured):
		writeJSON(w, http.StatusOK, map[string]string{"text": "Error: the translation service is not configured."})
	case err != nil:
		writeJSON(w, http.StatusOK, map[string]string{"text": "Error: the translation service failed."})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
