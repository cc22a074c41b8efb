package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/socialfeed-be/internal/models"
	"github.com/isdelr/socialfeed-be/internal/services"
	"github.com/rs/zerolog/log"
)

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to temp files.
const maxUploadMemory = 32 << 20

// PostHandler handles HTTP requests for the post feed.
type PostHandler struct {
	posts services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(posts services.PostServiceProvider) *PostHandler {
	return &PostHandler{posts: posts}
}

// createPostPayload is the JSON variant of a create request. Published is
// kept loose because clients send true, "true", 1 or "1" interchangeably.
type createPostPayload struct {
	TextContent string      `json:"text_content"`
	Published   interface{} `json:"published"`
}

// List returns all published posts, newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list posts")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve posts")
		return
	}

	for i := range posts {
		resolveFileURLs(&posts[i], requestBaseURL(r))
	}
	writeJSON(w, http.StatusOK, posts)
}

// Create accepts a multipart form (text_content, published, repeated
// "media" file fields), a urlencoded form, or a JSON body, normalizes each
// into the same input and hands it to the post service.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	input, cleanup, err := h.normalizeCreateRequest(r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := h.posts.CreatePost(input)
	if err != nil {
		var mediaErr *services.MediaValidationError
		switch {
		case errors.Is(err, services.ErrEmptyPost):
			writeError(w, http.StatusBadRequest, services.ErrEmptyPost.Error())
		case errors.As(err, &mediaErr):
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": mediaErr.Errors})
		default:
			log.Error().Err(err).Msg("Failed to create post")
			writeError(w, http.StatusInternalServerError, "Failed to create post")
		}
		return
	}

	resolveFileURLs(&post, requestBaseURL(r))
	writeJSON(w, http.StatusCreated, post)
}

// Delete removes a post and its media wholesale.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.posts.DeletePost(id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		log.Error().Err(err).Str("post_id", id).Msg("Failed to delete post")
		writeError(w, http.StatusInternalServerError, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// normalizeCreateRequest reduces any supported request encoding to the
// canonical CreatePostInput. The returned cleanup closes any opened
// multipart files.
func (h *PostHandler) normalizeCreateRequest(r *http.Request) (services.CreatePostInput, func(), error) {
	contentType := r.Header.Get("Content-Type")

	if strings.Contains(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return services.CreatePostInput{}, nil, errors.New("Invalid multipart body")
		}

		published := true
		if raw := r.FormValue("published"); raw != "" {
			published = truthy(raw)
		}

		var headers []*multipart.FileHeader
		if r.MultipartForm != nil {
			headers = r.MultipartForm.File["media"]
		}

		var opened []multipart.File
		cleanup := func() {
			for _, f := range opened {
				f.Close()
			}
		}

		files := make([]services.Upload, 0, len(headers))
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return services.CreatePostInput{}, cleanup, errors.New("Could not read uploaded file " + fh.Filename)
			}
			opened = append(opened, f)
			files = append(files, services.Upload{Name: fh.Filename, Size: fh.Size, Content: f})
		}

		return services.CreatePostInput{
			TextContent: r.FormValue("text_content"),
			Published:   published,
			Files:       files,
		}, cleanup, nil
	}

	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return services.CreatePostInput{}, nil, errors.New("Invalid form body")
		}

		published := true
		if raw := r.PostFormValue("published"); raw != "" {
			published = truthy(raw)
		}

		return services.CreatePostInput{
			TextContent: r.PostFormValue("text_content"),
			Published:   published,
		}, nil, nil
	}

	var payload createPostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return services.CreatePostInput{}, nil, errors.New("Invalid request body")
	}

	published := true
	if payload.Published != nil {
		published = truthy(payload.Published)
	}

	return services.CreatePostInput{
		TextContent: payload.TextContent,
		Published:   published,
	}, nil, nil
}

// truthy mirrors the accepted published variants: true, "true", 1, "1".
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val == "true" || val == "1"
	case float64:
		return val == 1
	case int:
		return val == 1
	default:
		return false
	}
}

// requestBaseURL derives scheme://host from the incoming request so media
// URLs can be absolute.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// resolveFileURLs fills in each media item's URL under the /media/ mount,
// absolute when a request base is known.
func resolveFileURLs(post *models.Post, base string) {
	for i := range post.Media {
		post.Media[i].FileURL = base + "/media/" + post.Media[i].FilePath
	}
}
