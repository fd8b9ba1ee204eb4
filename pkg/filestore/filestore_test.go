package filestore_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/upgrade-tuition/upgrade-api/pkg/filestore"
)

func TestNewRequiresDirectory(t *testing.T) {
	_, err := filestore.New(filestore.Config{}, zerolog.New(io.Discard))
	require.Error(t, err)
}

func TestUploadWritesFileAndReturnsPublicPath(t *testing.T) {
	dir := t.TempDir()
	store, err := filestore.New(filestore.Config{Dir: dir, PublicPrefix: "/course-files"}, zerolog.New(io.Discard))
	require.NoError(t, err)

	path, err := store.Upload(context.Background(), "My Notes.PDF", strings.NewReader("%PDF-1.4 content"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(path, "/course-files/"))
	require.True(t, strings.HasSuffix(path, "my-notes.pdf"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	written, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4 content", string(written))
}

func TestUploadedNamesNeverCollide(t *testing.T) {
	store, err := filestore.New(filestore.Config{Dir: t.TempDir()}, zerolog.New(io.Discard))
	require.NoError(t, err)

	first, err := store.Upload(context.Background(), "notes.pdf", strings.NewReader("one"))
	require.NoError(t, err)
	second, err := store.Upload(context.Background(), "notes.pdf", strings.NewReader("two"))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestUploadHonoursCancelledContext(t *testing.T) {
	store, err := filestore.New(filestore.Config{Dir: t.TempDir()}, zerolog.New(io.Discard))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Upload(ctx, "notes.pdf", strings.NewReader("content"))
	require.Error(t, err)
}

func TestSanitizeFileName(t *testing.T) {
	require.Equal(t, "worked-solutions.pdf", filestore.SanitizeFileName("Worked Solutions.pdf"))
	require.NotContains(t, filestore.SanitizeFileName("../../a.pdf"), "/")
	require.Equal(t, "document.pdf", filestore.SanitizeFileName("???"))
	require.Equal(t, "notes_v2.pdf", filestore.SanitizeFileName("notes_v2.pdf"))
}
