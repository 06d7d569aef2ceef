// Package wordpresstest provides an in-memory WordPress REST API for tests.
package wordpresstest

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Credentials accepted by the fake server.
const (
	Username = "editor"
	Password = "app-password"
)

// Category is a stored taxonomy term.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Media is a stored attachment.
type Media struct {
	ID          int
	Filename    string
	ContentType string
	Size        int
}

// Post is a stored post in wire shape.
type Post struct {
	ID            int             `json:"id"`
	Title         string          `json:"title"`
	Content       string          `json:"content"`
	Excerpt       string          `json:"excerpt"`
	Slug          string          `json:"slug"`
	Status        string          `json:"status"`
	Categories    []int           `json:"categories"`
	FeaturedMedia int             `json:"featured_media"`
	Meta          json.RawMessage `json:"meta"`
}

// Server is a fake WordPress backed by maps.
type Server struct {
	*httptest.Server

	// PageSize caps category pages independent of per_page.
	PageSize int

	mu              sync.Mutex
	nextID          int
	categories      []Category
	posts           map[int]*Post
	media           map[int]Media
	categoryCreates int
	postCreates     int
	failPosts       bool
}

// NewServer starts a fake WordPress. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		nextID: 100,
		posts:  make(map[int]*Post),
		media:  make(map[int]Media),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/wp-json/wp/v2/categories", s.handleCategories)
	mux.HandleFunc("/wp-json/wp/v2/media", s.handleMedia)
	mux.HandleFunc("/wp-json/wp/v2/posts", s.handlePosts)
	mux.HandleFunc("/wp-json/wp/v2/posts/", s.handlePost)
	s.Server = httptest.NewServer(s.auth(mux))
	return s
}

// SeedCategory stores a category without counting it as a creation.
func (s *Server) SeedCategory(name, slug string) Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat := Category{ID: s.id(), Name: name, Slug: slug}
	s.categories = append(s.categories, cat)
	return cat
}

// FailPosts makes post creation answer 500 until reset.
func (s *Server) FailPosts(fail bool) {
	s.mu.Lock()
	s.failPosts = fail
	s.mu.Unlock()
}

// CategoryCreates counts POST /categories successes.
func (s *Server) CategoryCreates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categoryCreates
}

// PostCreates counts POST /posts successes.
func (s *Server) PostCreates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.postCreates
}

// Posts returns a snapshot of stored posts.
func (s *Server) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, *p)
	}
	return out
}

// Media returns a snapshot of uploaded attachments.
func (s *Server) Media() []Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Media, 0, len(s.media))
	for _, m := range s.media {
		out = append(out, m)
	}
	return out
}

func (s *Server) id() int {
	s.nextID++
	return s.nextID
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != Username || pass != Password {
			writeError(w, http.StatusUnauthorized, "rest_not_logged_in", "You are not currently logged in.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		perPage := atoi(r.URL.Query().Get("per_page"), 10)
		if s.PageSize > 0 && s.PageSize < perPage {
			perPage = s.PageSize
		}
		page := atoi(r.URL.Query().Get("page"), 1)
		total := (len(s.categories) + perPage - 1) / perPage
		if total == 0 {
			total = 1
		}
		start := min((page-1)*perPage, len(s.categories))
		end := min(start+perPage, len(s.categories))

		out := make([]Category, 0, end-start)
		for _, c := range s.categories[start:end] {
			c.Name = html.EscapeString(c.Name)
			out = append(out, c)
		}
		w.Header().Set("X-WP-Total", strconv.Itoa(len(s.categories)))
		w.Header().Set("X-WP-TotalPages", strconv.Itoa(total))
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		var req Category
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeError(w, http.StatusBadRequest, "rest_invalid_param", "Invalid parameter(s): name")
			return
		}
		for _, c := range s.categories {
			if c.Name == req.Name {
				writeError(w, http.StatusBadRequest, "term_exists", "A term with the name provided already exists.")
				return
			}
		}
		cat := Category{ID: s.id(), Name: req.Name, Slug: req.Slug}
		s.categories = append(s.categories, cat)
		s.categoryCreates++
		writeJSON(w, http.StatusCreated, cat)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "rest_upload_no_data", "No data supplied.")
		return
	}
	defer func() { _ = file.Close() }()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rest_upload_unknown_error", err.Error())
		return
	}

	s.mu.Lock()
	m := Media{ID: s.id(), Filename: header.Filename, ContentType: header.Header.Get("Content-Type"), Size: len(data)}
	s.media[m.ID] = m
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         m.ID,
		"source_url": fmt.Sprintf("%s/wp-content/uploads/%s", s.URL, m.Filename),
	})
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		slug := r.URL.Query().Get("slug")
		out := []map[string]any{}
		for _, p := range s.posts {
			if slug == "" || p.Slug == slug {
				out = append(out, s.render(p))
			}
		}
		writeJSON(w, http.StatusOK, out)
	case http.MethodPost:
		if s.failPosts {
			writeError(w, http.StatusInternalServerError, "db_insert_error", "Could not insert post into the database.")
			return
		}
		var p Post
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error())
			return
		}
		p.ID = s.id()
		if p.Status == "" {
			p.Status = "draft"
		}
		s.posts[p.ID] = &p
		s.postCreates++
		writeJSON(w, http.StatusCreated, s.render(&p))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/wp-json/wp/v2/posts/"))
	if err != nil {
		writeError(w, http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "rest_post_invalid_id", "Invalid post ID.")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.render(p))
	case http.MethodPost, http.MethodPut:
		var upd Post
		if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
			writeError(w, http.StatusBadRequest, "rest_invalid_json", err.Error())
			return
		}
		upd.ID = id
		if upd.Status == "" {
			upd.Status = p.Status
		}
		s.posts[id] = &upd
		writeJSON(w, http.StatusOK, s.render(&upd))
	case http.MethodDelete:
		if r.URL.Query().Get("force") == "true" {
			delete(s.posts, id)
			writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "previous": s.render(p)})
			return
		}
		p.Status = "trash"
		writeJSON(w, http.StatusOK, s.render(p))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) render(p *Post) map[string]any {
	meta := p.Meta
	if len(meta) == 0 {
		meta = json.RawMessage("[]")
	}
	return map[string]any{
		"id":             p.ID,
		"slug":           p.Slug,
		"status":         p.Status,
		"link":           fmt.Sprintf("%s/?p=%d", s.URL, p.ID),
		"title":          map[string]string{"rendered": html.EscapeString(p.Title)},
		"content":        map[string]string{"rendered": p.Content},
		"excerpt":        map[string]string{"rendered": "<p>" + html.EscapeString(p.Excerpt) + "</p>\n"},
		"categories":     p.Categories,
		"featured_media": p.FeaturedMedia,
		"meta":           meta,
	}
}

func atoi(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"code": code, "message": message, "data": map[string]int{"status": status}})
}
