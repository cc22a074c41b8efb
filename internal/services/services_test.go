package services_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/isdelr/socialfeed-be/internal/database"
	"github.com/isdelr/socialfeed-be/internal/media"
	"github.com/isdelr/socialfeed-be/internal/services"
	"github.com/isdelr/socialfeed-be/internal/storage"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("db open: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("db migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return store
}

func testPolicy() media.Policy {
	return media.Policy{
		MaxFileSize: 10 * 1024 * 1024,
		ImageExts:   []string{".jpg", ".jpeg", ".png"},
		VideoExts:   []string{".mp4", ".mov"},
	}
}

func newTestPostService(t *testing.T) (*services.PostService, *sql.DB, *storage.Store) {
	t.Helper()
	db := newTestDB(t)
	store := newTestStore(t)
	return services.NewPostService(db, store, testPolicy(), services.NewEventService(db)), db, store
}
