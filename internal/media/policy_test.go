package media_test

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/isdelr/socialfeed-be/internal/media"
	"github.com/isdelr/socialfeed-be/internal/models"
)

func testPolicy() media.Policy {
	return media.Policy{
		MaxFileSize: 10 * 1024 * 1024,
		ImageExts:   []string{".jpg", ".jpeg", ".png"},
		VideoExts:   []string{".mp4", ".mov"},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		want     models.MediaType
	}{
		{name: "jpg image", filename: "photo.jpg", size: 1024, want: models.MediaTypeImage},
		{name: "png image", filename: "shot.png", size: 1024, want: models.MediaTypeImage},
		{name: "mp4 video", filename: "clip.mp4", size: 1024, want: models.MediaTypeVideo},
		{name: "uppercase extension", filename: "photo.JPG", size: 1024, want: models.MediaTypeImage},
		{name: "mixed case extension", filename: "clip.Mp4", size: 1024, want: models.MediaTypeVideo},
		{name: "size exactly at limit", filename: "big.jpg", size: 10 * 1024 * 1024, want: models.MediaTypeImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)

			got, err := testPolicy().Classify(tt.filename, tt.size)
			c.Assert(err, qt.IsNil)
			c.Assert(got, qt.Equals, tt.want)
		})
	}
}

func TestClassifyOversize(t *testing.T) {
	c := qt.New(t)

	_, err := testPolicy().Classify("huge.jpg", 10*1024*1024+1)
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Equals, "File huge.jpg exceeds maximum size of 10.0MB")
}

func TestClassifyUnsupportedListsAllExtensions(t *testing.T) {
	c := qt.New(t)

	_, err := testPolicy().Classify("anim.gif", 1024)
	c.Assert(err, qt.IsNotNil)
	c.Assert(err.Error(), qt.Equals, "File anim.gif has unsupported format. Allowed: .jpg, .jpeg, .png, .mp4, .mov")
}

func TestClassifyNoExtension(t *testing.T) {
	c := qt.New(t)

	_, err := testPolicy().Classify("README", 10)
	c.Assert(err, qt.IsNotNil)
	c.Assert(strings.Contains(err.Error(), "unsupported format"), qt.IsTrue)
}

// Classification is extension-only; a file whose content is not actually a
// video still passes if it carries a video extension. Known gap.
func TestClassifyTrustsExtension(t *testing.T) {
	c := qt.New(t)

	got, err := testPolicy().Classify("actually-a-text-file.mp4", 64)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.Equals, models.MediaTypeVideo)
}
