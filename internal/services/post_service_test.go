package services_test

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/isdelr/socialfeed-be/internal/models"
	"github.com/isdelr/socialfeed-be/internal/services"
)

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(1) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestCreatePostTextOnly(t *testing.T) {
	c := qt.New(t)
	svc, _, _ := newTestPostService(t)

	post, err := svc.CreatePost(services.CreatePostInput{TextContent: "hello", Published: true})
	c.Assert(err, qt.IsNil)
	c.Assert(post.TextContent, qt.Not(qt.IsNil))
	c.Assert(*post.TextContent, qt.Equals, "hello")
	c.Assert(post.Media, qt.HasLen, 0)
	c.Assert(post.Published, qt.IsTrue)
}

func TestCreatePostTrimsText(t *testing.T) {
	c := qt.New(t)
	svc, _, _ := newTestPostService(t)

	post, err := svc.CreatePost(services.CreatePostInput{TextContent: "  hi  ", Published: true})
	c.Assert(err, qt.IsNil)
	c.Assert(*post.TextContent, qt.Equals, "hi")
}

func TestCreatePostRejectsEmpty(t *testing.T) {
	c := qt.New(t)
	svc, db, _ := newTestPostService(t)

	_, err := svc.CreatePost(services.CreatePostInput{TextContent: "   ", Published: true})
	c.Assert(errors.Is(err, services.ErrEmptyPost), qt.IsTrue)
	c.Assert(countRows(t, db, "posts"), qt.Equals, 0)
}

func TestCreatePostMediaOnly(t *testing.T) {
	c := qt.New(t)
	svc, _, _ := newTestPostService(t)

	post, err := svc.CreatePost(services.CreatePostInput{
		Published: true,
		Files: []services.Upload{
			{Name: "a.jpg", Size: 3, Content: strings.NewReader("img")},
		},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(post.TextContent, qt.IsNil)
	c.Assert(post.Media, qt.HasLen, 1)
	c.Assert(post.Media[0].Type, qt.Equals, models.MediaTypeImage)
}

func TestCreatePostPreservesSubmissionOrder(t *testing.T) {
	c := qt.New(t)
	svc, _, store := newTestPostService(t)

	post, err := svc.CreatePost(services.CreatePostInput{
		TextContent: "",
		Published:   true,
		Files: []services.Upload{
			{Name: "a.jpg", Size: 3, Content: strings.NewReader("img")},
			{Name: "b.mp4", Size: 3, Content: strings.NewReader("vid")},
		},
	})
	c.Assert(err, qt.IsNil)
	c.Assert(post.Media, qt.HasLen, 2)
	c.Assert(post.Media[0].Type, qt.Equals, models.MediaTypeImage)
	c.Assert(post.Media[1].Type, qt.Equals, models.MediaTypeVideo)

	// Same order when read back
	got, err := svc.GetPostByID(post.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(got.Media, qt.HasLen, 2)
	c.Assert(got.Media[0].FilePath, qt.Equals, "posts/"+post.ID+"/a.jpg")
	c.Assert(got.Media[1].FilePath, qt.Equals, "posts/"+post.ID+"/b.mp4")

	// Blobs landed on disk
	_, err = os.Stat(filepath.Join(store.Root(), "posts", post.ID, "a.jpg"))
	c.Assert(err, qt.IsNil)
}

func TestCreatePostCollectsEveryRejection(t *testing.T) {
	c := qt.New(t)
	svc, db, store := newTestPostService(t)

	_, err := svc.CreatePost(services.CreatePostInput{
		Published: true,
		Files: []services.Upload{
			{Name: "a.gif", Size: 3, Content: strings.NewReader("x")},
			{Name: "ok.jpg", Size: 3, Content: strings.NewReader("x")},
			{Name: "huge.jpg", Size: 11 * 1024 * 1024, Content: strings.NewReader("x")},
		},
	})

	var mediaErr *services.MediaValidationError
	c.Assert(errors.As(err, &mediaErr), qt.IsTrue)
	c.Assert(mediaErr.Errors, qt.HasLen, 2)
	c.Assert(strings.Contains(mediaErr.Errors[0], "a.gif"), qt.IsTrue)
	c.Assert(strings.Contains(mediaErr.Errors[1], "huge.jpg"), qt.IsTrue)

	// Nothing persisted anywhere
	c.Assert(countRows(t, db, "posts"), qt.Equals, 0)
	c.Assert(countRows(t, db, "media"), qt.Equals, 0)
	dirs, err := store.ListPostDirs()
	c.Assert(err, qt.IsNil)
	c.Assert(dirs, qt.HasLen, 0)
}

func TestListPostsNewestFirst(t *testing.T) {
	c := qt.New(t)
	svc, _, _ := newTestPostService(t)

	first, err := svc.CreatePost(services.CreatePostInput{TextContent: "first", Published: true})
	c.Assert(err, qt.IsNil)
	time.Sleep(10 * time.Millisecond)
	second, err := svc.CreatePost(services.CreatePostInput{TextContent: "second", Published: true})
	c.Assert(err, qt.IsNil)

	posts, err := svc.ListPosts()
	c.Assert(err, qt.IsNil)
	c.Assert(posts, qt.HasLen, 2)
	c.Assert(posts[0].ID, qt.Equals, second.ID)
	c.Assert(posts[1].ID, qt.Equals, first.ID)
}

func TestListPostsHidesUnpublished(t *testing.T) {
	c := qt.New(t)
	svc, db, _ := newTestPostService(t)

	_, err := svc.CreatePost(services.CreatePostInput{TextContent: "draft", Published: false})
	c.Assert(err, qt.IsNil)

	posts, err := svc.ListPosts()
	c.Assert(err, qt.IsNil)
	c.Assert(posts, qt.HasLen, 0)

	// The row itself exists
	c.Assert(countRows(t, db, "posts"), qt.Equals, 1)
}

func TestDeletePostCascades(t *testing.T) {
	c := qt.New(t)
	svc, db, store := newTestPostService(t)

	post, err := svc.CreatePost(services.CreatePostInput{
		Published: true,
		Files: []services.Upload{
			{Name: "a.jpg", Size: 3, Content: strings.NewReader("img")},
		},
	})
	c.Assert(err, qt.IsNil)

	c.Assert(svc.DeletePost(post.ID), qt.IsNil)
	c.Assert(countRows(t, db, "posts"), qt.Equals, 0)
	c.Assert(countRows(t, db, "media"), qt.Equals, 0)
	_, err = os.Stat(filepath.Join(store.Root(), "posts", post.ID))
	c.Assert(os.IsNotExist(err), qt.IsTrue)
}

func TestDeletePostUnknownID(t *testing.T) {
	c := qt.New(t)
	svc, _, _ := newTestPostService(t)

	err := svc.DeletePost("no-such-post")
	c.Assert(errors.Is(err, services.ErrNotFound), qt.IsTrue)
}
