package services

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/socialfeed-be/internal/media"
	"github.com/isdelr/socialfeed-be/internal/models"
	"github.com/isdelr/socialfeed-be/internal/storage"
	"github.com/rs/zerolog/log"
)

// Upload is one candidate file in a post-creation request, already
// normalized away from its transport (multipart or JSON).
type Upload struct {
	Name    string
	Size    int64
	Content io.Reader
}

// CreatePostInput is the canonical form every create request is reduced to
// before validation begins.
type CreatePostInput struct {
	TextContent string
	Published   bool
	Files       []Upload
}

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	CreatePost(input CreatePostInput) (models.Post, error)
	ListPosts() ([]models.Post, error)
	GetPostByID(id string) (models.Post, error)
	DeletePost(id string) error
}

// PostService assembles, lists and deletes posts together with their media.
type PostService struct {
	db       *sql.DB
	store    *storage.Store
	policy   media.Policy
	eventSvc EventServiceProvider
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB, store *storage.Store, policy media.Policy, eventSvc EventServiceProvider) *PostService {
	return &PostService{db: db, store: store, policy: policy, eventSvc: eventSvc}
}

// CreatePost builds a post atomically. Every file is validated up front and
// all rejections are collected, so a caller sees every problem at once; the
// database writes happen in one transaction afterwards, meaning a failed
// request leaves no partial post behind.
func (s *PostService) CreatePost(input CreatePostInput) (models.Post, error) {
	text := strings.TrimSpace(input.TextContent)
	if text == "" && len(input.Files) == 0 {
		return models.Post{}, ErrEmptyPost
	}

	// Validate all files before anything is written. Do not stop at the
	// first rejection.
	types := make([]models.MediaType, len(input.Files))
	var rejections []string
	for i, f := range input.Files {
		mediaType, err := s.policy.Classify(f.Name, f.Size)
		if err != nil {
			rejections = append(rejections, err.Error())
			continue
		}
		types[i] = mediaType
	}
	if len(rejections) > 0 {
		return models.Post{}, &MediaValidationError{Errors: rejections}
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:        uuid.New().String(),
		Published: input.Published,
		CreatedAt: now,
		UpdatedAt: now,
		Media:     []models.Media{},
	}
	if text != "" {
		post.TextContent = &text
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Post{}, err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO posts(id, text_content, published, created_at, updated_at) VALUES(?, ?, ?, ?, ?)",
		post.ID, post.TextContent, post.Published, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return models.Post{}, err
	}

	for i, f := range input.Files {
		path, err := s.store.Save(post.ID, f.Name, f.Content)
		if err != nil {
			s.store.RemovePost(post.ID)
			return models.Post{}, fmt.Errorf("failed to store file %s: %w", f.Name, err)
		}

		m := models.Media{
			ID:        uuid.New().String(),
			PostID:    post.ID,
			Type:      types[i],
			FilePath:  path,
			CreatedAt: time.Now().UTC(),
		}
		_, err = tx.Exec(
			"INSERT INTO media(id, post_id, media_type, file_path, created_at) VALUES(?, ?, ?, ?, ?)",
			m.ID, m.PostID, m.Type, m.FilePath, m.CreatedAt,
		)
		if err != nil {
			s.store.RemovePost(post.ID)
			return models.Post{}, err
		}
		post.Media = append(post.Media, m)
	}

	if err := tx.Commit(); err != nil {
		s.store.RemovePost(post.ID)
		return models.Post{}, err
	}

	if err := s.eventSvc.CreateEvent("post.create", "info", fmt.Sprintf("Post %s created with %d media file(s)", post.ID, len(post.Media))); err != nil {
		log.Warn().Err(err).Str("post_id", post.ID).Msg("Failed to record post creation event")
	}
	return post, nil
}

// ListPosts returns every published post, newest first, each with its media
// in upload order. Pure read.
func (s *PostService) ListPosts() ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT id, text_content, published, created_at, updated_at
		FROM posts WHERE published = 1
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.TextContent, &post.Published, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range posts {
		media, err := s.mediaForPost(posts[i].ID)
		if err != nil {
			return nil, err
		}
		posts[i].Media = media
	}
	return posts, nil
}

// GetPostByID retrieves a single post with its media, published or not.
func (s *PostService) GetPostByID(id string) (models.Post, error) {
	var post models.Post
	row := s.db.QueryRow("SELECT id, text_content, published, created_at, updated_at FROM posts WHERE id = ?", id)
	err := row.Scan(&post.ID, &post.TextContent, &post.Published, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Post{}, ErrNotFound
		}
		return models.Post{}, err
	}

	post.Media, err = s.mediaForPost(post.ID)
	if err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// DeletePost removes a post; its media rows cascade and its blob directory
// is cleaned up afterwards.
func (s *PostService) DeletePost(id string) error {
	res, err := s.db.Exec("DELETE FROM posts WHERE id = ?", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := s.store.RemovePost(id); err != nil {
		log.Warn().Err(err).Str("post_id", id).Msg("Failed to remove media blobs for deleted post")
	}
	if err := s.eventSvc.CreateEvent("post.delete", "info", fmt.Sprintf("Post %s deleted", id)); err != nil {
		log.Warn().Err(err).Str("post_id", id).Msg("Failed to record post deletion event")
	}
	return nil
}

func (s *PostService) mediaForPost(postID string) ([]models.Media, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, media_type, file_path, created_at
		FROM media WHERE post_id = ?
		ORDER BY created_at ASC, rowid ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	media := []models.Media{}
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(&m.ID, &m.PostID, &m.Type, &m.FilePath, &m.CreatedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}
