package filestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config describes where uploaded files land and how they are served.
type Config struct {
	// Dir is the directory files are written to.
	Dir string
	// PublicPrefix is the URL path prefix the directory is served under.
	PublicPrefix string
}

// Service stores uploads on local disk under a public static directory
// and returns the relative URL they are served from.
type Service struct {
	dir    string
	prefix string
	logger zerolog.Logger
}

// New constructs a local file store, creating the target directory.
func New(cfg Config, logger zerolog.Logger) (*Service, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("file store directory must be provided")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create file store directory: %w", err)
	}

	prefix := cfg.PublicPrefix
	if prefix == "" {
		prefix = "/course-files"
	}

	return &Service{
		dir:    cfg.Dir,
		prefix: strings.TrimSuffix(prefix, "/"),
		logger: logger.With().Str("component", "filestore").Logger(),
	}, nil
}

// Upload writes the file under a unique, sanitized name and returns the
// relative URL path. The timestamp+random prefix means names never
// collide and the original name survives only in sanitized form.
func (s *Service) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString(), SanitizeFileName(name))
	absolute := filepath.Join(s.dir, filename)

	out, err := os.Create(absolute)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		os.Remove(absolute)
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(absolute)
		return "", fmt.Errorf("failed to flush upload file: %w", err)
	}

	s.logger.Info().Str("file", filename).Msg("file stored")

	return s.prefix + "/" + filename, nil
}

// Dir returns the directory uploads are written to.
func (s *Service) Dir() string { return s.dir }

// PublicPrefix returns the URL prefix uploads are served under.
func (s *Service) PublicPrefix() string { return s.prefix }

// SanitizeFileName maps a filename onto the safe charset a-z0-9.-_ and
// collapses repeated separators, preventing path traversal through
// user-supplied names.
func SanitizeFileName(name string) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, strings.ToLower(name))
	for strings.Contains(safe, "--") {
		safe = strings.ReplaceAll(safe, "--", "-")
	}
	safe = strings.Trim(safe, "-")
	if safe == "" {
		safe = "document.pdf"
	}
	return safe
}
