package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/isdelr/socialfeed-be/internal/models"
)

// Policy holds the configured upload constraints. It is immutable and
// passed explicitly to every validation call, never read from globals.
type Policy struct {
	MaxFileSize int64    // Maximum size per file, in bytes
	ImageExts   []string // Lowercase extensions incl. dot, e.g. ".jpg"
	VideoExts   []string
}

// Classify checks a candidate file against the policy and returns its media
// type, or an error describing which constraint failed. Classification is
// by file-name extension only, matched case-insensitively; no content
// sniffing is performed, so a mislabeled file passes.
func (p Policy) Classify(name string, size int64) (models.MediaType, error) {
	if size > p.MaxFileSize {
		return "", fmt.Errorf("File %s exceeds maximum size of %.1fMB", name, float64(p.MaxFileSize)/(1024*1024))
	}

	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case contains(p.ImageExts, ext):
		return models.MediaTypeImage, nil
	case contains(p.VideoExts, ext):
		return models.MediaTypeVideo, nil
	default:
		allowed := make([]string, 0, len(p.ImageExts)+len(p.VideoExts))
		allowed = append(allowed, p.ImageExts...)
		allowed = append(allowed, p.VideoExts...)
		return "", fmt.Errorf("File %s has unsupported format. Allowed: %s", name, strings.Join(allowed, ", "))
	}
}

func contains(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}
