package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/upgrade-tuition/upgrade-api/internal/service"
)

type recordingStorage struct {
	names []string
	err   error
}

func (s *recordingStorage) Upload(_ context.Context, name string, reader io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return "", err
	}
	s.names = append(s.names, name)
	return "/course-files/" + name, nil
}

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(64<<20))
	return req.MultipartForm.File["file"][0]
}

func pdfBytes() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\ntrailer\n%%EOF\n")
}

func TestSavePDFStoresValidUpload(t *testing.T) {
	storage := &recordingStorage{}
	uploads := service.NewUploadService(storage, 20, zerolog.New(io.Discard))

	path, err := uploads.SavePDF(context.Background(), fileHeader(t, "worked solutions.pdf", pdfBytes()))
	require.NoError(t, err)
	require.Equal(t, "/course-files/worked solutions.pdf", path)
	require.Equal(t, []string{"worked solutions.pdf"}, storage.names)
}

func TestSavePDFRejectsNonPDF(t *testing.T) {
	storage := &recordingStorage{}
	uploads := service.NewUploadService(storage, 20, zerolog.New(io.Discard))

	_, err := uploads.SavePDF(context.Background(), fileHeader(t, "notes.docx", []byte("PK\x03\x04 not a pdf")))
	require.ErrorIs(t, err, service.ErrNotPDF)
	require.Empty(t, storage.names)
}

func TestSavePDFAcceptsPDFExtensionFallback(t *testing.T) {
	storage := &recordingStorage{}
	uploads := service.NewUploadService(storage, 20, zerolog.New(io.Discard))

	// Some scanners emit PDFs with leading junk the sniffer cannot place.
	_, err := uploads.SavePDF(context.Background(), fileHeader(t, "scan.PDF", []byte("\x00\x00garbled")))
	require.NoError(t, err)
}

func TestSavePDFRejectsOversizedUpload(t *testing.T) {
	storage := &recordingStorage{}
	uploads := service.NewUploadService(storage, 1, zerolog.New(io.Discard))

	payload := append(pdfBytes(), bytes.Repeat([]byte{'a'}, 2<<20)...)
	_, err := uploads.SavePDF(context.Background(), fileHeader(t, "big.pdf", payload))
	require.ErrorIs(t, err, service.ErrUploadTooLarge)
	require.Empty(t, storage.names)
}

func TestSavePDFRequiresFile(t *testing.T) {
	uploads := service.NewUploadService(&recordingStorage{}, 20, zerolog.New(io.Discard))

	_, err := uploads.SavePDF(context.Background(), nil)
	require.Error(t, err)
}

func TestSavePDFPropagatesStorageFailure(t *testing.T) {
	storage := &recordingStorage{err: errors.New("disk full")}
	uploads := service.NewUploadService(storage, 20, zerolog.New(io.Discard))

	_, err := uploads.SavePDF(context.Background(), fileHeader(t, "notes.pdf", pdfBytes()))
	require.EqualError(t, err, "disk full")
}
