package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/isdelr/socialfeed-be/internal/media"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	MediaRoot    string // Base path for uploaded media blobs

	// Media upload policy
	MaxFileSize      int64
	AllowedImageExts []string
	AllowedVideoExts []string

	// Cron expression for the orphan-media sweeper
	SweepSchedule string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	maxSizeStr := getEnv("MAX_FILE_SIZE", "10485760") // 10 MB
	maxSize, err := strconv.ParseInt(maxSizeStr, 10, 64)
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:       port,
		DatabasePath:     getEnv("DATABASE_PATH", "./socialfeed.db"),
		MediaRoot:        getEnv("MEDIA_ROOT", "./media-data"),
		MaxFileSize:      maxSize,
		AllowedImageExts: parseExtList(getEnv("ALLOWED_IMAGE_EXTENSIONS", ".jpg,.jpeg,.png")),
		AllowedVideoExts: parseExtList(getEnv("ALLOWED_VIDEO_EXTENSIONS", ".mp4,.mov")),
		SweepSchedule:    getEnv("SWEEP_SCHEDULE", "@hourly"),
	}, nil
}

// MediaPolicy builds the upload policy handed to the media validator.
func (c *Config) MediaPolicy() media.Policy {
	return media.Policy{
		MaxFileSize: c.MaxFileSize,
		ImageExts:   c.AllowedImageExts,
		VideoExts:   c.AllowedVideoExts,
	}
}

// parseExtList splits a comma-separated extension list, normalizing each
// entry to lowercase dotted form (".jpg").
func parseExtList(raw string) []string {
	var exts []string
	for _, part := range strings.Split(raw, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
