package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists media blobs on the local filesystem. Files live under
// <root>/posts/<post-id>/<filename>, so everything belonging to one post
// can be removed in a single call.
type Store struct {
	root string
}

// New creates a Store rooted at the given directory, creating it if needed.
func New(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "posts"), 0755); err != nil {
		return nil, fmt.Errorf("could not create media root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the base directory, for wiring the static file server.
func (s *Store) Root() string {
	return s.root
}

// Save streams the content of one uploaded file into the post's directory
// and returns the stored path relative to the media root. A name collision
// within the same post is resolved by prefixing a short random tag.
func (s *Store) Save(postID, filename string, content io.Reader) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid file name %q", filename)
	}

	dir := filepath.Join(s.root, "posts", postID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create post media directory: %w", err)
	}

	dst := filepath.Join(dir, name)
	if _, err := os.Stat(dst); err == nil {
		name = uuid.New().String()[:8] + "_" + name
		dst = filepath.Join(dir, name)
	}

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("could not create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		os.Remove(dst) // Clean up partial file
		return "", fmt.Errorf("could not write media file: %w", err)
	}

	return filepath.ToSlash(filepath.Join("posts", postID, name)), nil
}

// RemovePost deletes every blob stored for the given post.
func (s *Store) RemovePost(postID string) error {
	return os.RemoveAll(filepath.Join(s.root, "posts", postID))
}

// ListPostDirs returns the post ids that currently have a blob directory,
// used by the orphan sweeper.
func (s *Store) ListPostDirs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "posts"))
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}
