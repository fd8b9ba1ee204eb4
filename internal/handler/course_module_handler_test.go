package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/upgrade-tuition/upgrade-api/internal/auth"
	"github.com/upgrade-tuition/upgrade-api/internal/dto"
)

func uploadRequest(t *testing.T, fields map[string]string, filename string, content []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/course/module/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func pdfContent() []byte {
	return []byte("%PDF-1.4\n1 0 obj\n<< >>\nendobj\ntrailer\n%%EOF\n")
}

type moduleListEnvelope struct {
	OK   bool                   `json:"ok"`
	Data dto.ModuleListResponse `json:"data"`
}

func listModules(t *testing.T, env *portalEnv, cookie *http.Cookie) dto.ModuleListResponse {
	t.Helper()

	req := httptest.NewRequest("GET", "/api/course/module", nil)
	req.AddCookie(cookie)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope moduleListEnvelope
	decodeResponse(t, resp, &envelope)
	require.True(t, envelope.OK)
	return envelope.Data
}

func TestModuleListRequiresSession(t *testing.T) {
	env := setupPortalApp(t)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/api/course/module", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestTutorUploadVisibleToStudent(t *testing.T) {
	env := setupPortalApp(t)

	req := uploadRequest(t, map[string]string{
		"kind":        "notes",
		"chapterSlug": "chapter-01",
		"section":     "1.2 Index laws",
	}, "index-laws.pdf", pdfContent())
	req.AddCookie(sessionCookie(t, env, auth.RoleTutor, testTutorEmail))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var envelope struct {
		OK   bool               `json:"ok"`
		Data dto.UploadResponse `json:"data"`
	}
	decodeResponse(t, resp, &envelope)
	require.Equal(t, "/course-files/index-laws.pdf", envelope.Data.PDFPath)

	listing := listModules(t, env, sessionCookie(t, env, auth.RoleStudent, testStudentEmail))
	require.Equal(t, "a-level-maths", listing.Course.Slug)
	require.NotEmpty(t, listing.Course.Chapters)
	require.Len(t, listing.Modules, 1)
	require.Equal(t, "chapter-01", listing.Modules[0].ChapterSlug)
	require.Equal(t, "/course-files/index-laws.pdf", listing.Modules[0].NotePDFPath)
	require.True(t, listing.ChapterUnlockedMap["chapter-01"])
	require.False(t, listing.ChapterUnlockedMap["chapter-02"])
}

func TestStudentCannotUploadNotes(t *testing.T) {
	env := setupPortalApp(t)

	req := uploadRequest(t, map[string]string{
		"kind":        "notes",
		"chapterSlug": "chapter-01",
		"section":     "1.2 Index laws",
	}, "notes.pdf", pdfContent())
	req.AddCookie(sessionCookie(t, env, auth.RoleStudent, testStudentEmail))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var envelope struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	decodeResponse(t, resp, &envelope)
	require.False(t, envelope.OK)
	require.Equal(t, "Only tutors can upload module PDFs.", envelope.Error)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	env := setupPortalApp(t)

	req := uploadRequest(t, map[string]string{
		"kind":        "notes",
		"chapterSlug": "chapter-01",
		"section":     "1.2 Index laws",
	}, "notes.txt", []byte("plain text"))
	req.AddCookie(sessionCookie(t, env, auth.RoleTutor, testTutorEmail))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUploadRejectsMissingDetails(t *testing.T) {
	env := setupPortalApp(t)

	req := uploadRequest(t, map[string]string{
		"kind":        "notes",
		"chapterSlug": "chapter-01",
	}, "notes.pdf", pdfContent())
	req.AddCookie(sessionCookie(t, env, auth.RoleTutor, testTutorEmail))

	resp, err := env.app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var envelope struct {
		Error string `json:"error"`
	}
	decodeResponse(t, resp, &envelope)
	require.Equal(t, "Missing module details.", envelope.Error)
}

func TestAnswerReviewUnlocksNextChapter(t *testing.T) {
	env := setupPortalApp(t)

	// Student sits the chapter assessment.
	answer := uploadRequest(t, map[string]string{
		"kind":        "chapter-answer",
		"chapterSlug": "chapter-01",
		"section":     "assessment",
	}, "answers.pdf", pdfContent())
	answer.AddCookie(sessionCookie(t, env, auth.RoleStudent, testStudentEmail))
	resp, err := env.app.Test(answer)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	listing := listModules(t, env, sessionCookie(t, env, auth.RoleStudent, testStudentEmail))
	require.False(t, listing.ChapterPassedMap["chapter-01"])
	require.False(t, listing.ChapterUnlockedMap["chapter-02"])

	// Tutor marks it passed.
	pass := jsonRequest(t, "POST", "/api/course/module/pass", dto.PassRequest{
		Mode:         "chapter",
		ChapterSlug:  "chapter-01",
		StudentEmail: testStudentEmail,
	})
	pass.AddCookie(sessionCookie(t, env, auth.RoleTutor, testTutorEmail))
	resp, err = env.app.Test(pass)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	listing = listModules(t, env, sessionCookie(t, env, auth.RoleStudent, testStudentEmail))
	require.True(t, listing.ChapterPassedMap["chapter-01"])
	require.True(t, listing.ChapterUnlockedMap["chapter-02"])
	require.False(t, listing.ChapterUnlockedMap["chapter-03"])
}

func TestManualUnlockFlow(t *testing.T) {
	env := setupPortalApp(t)

	unlock := jsonRequest(t, "POST", "/api/course/module/pass", dto.PassRequest{
		Mode:        "unlock",
		ChapterSlug: "chapter-05",
		Unlocked:    true,
	})
	unlock.AddCookie(sessionCookie(t, env, auth.RoleTutor, testTutorEmail))
	resp, err := env.app.Test(unlock)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	listing := listModules(t, env, sessionCookie(t, env, auth.RoleStudent, testStudentEmail))
	require.True(t, listing.ChapterUnlockedMap["chapter-05"])
	require.True(t, listing.ManualChapterUnlocks["chapter-05"])
	require.False(t, listing.ChapterPassedMap["chapter-05"])
	require.False(t, listing.ChapterUnlockedMap["chapter-06"])
}

func TestPassRequiresTutorRole(t *testing.T) {
	env := setupPortalApp(t)

	pass := jsonRequest(t, "POST", "/api/course/module/pass", dto.PassRequest{
		Mode:        "unlock",
		ChapterSlug: "chapter-02",
		Unlocked:    true,
	})
	pass.AddCookie(sessionCookie(t, env, auth.RoleStudent, testStudentEmail))
	resp, err := env.app.Test(pass)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestPassUnknownSubmission(t *testing.T) {
	env := setupPortalApp(t)

	pass := jsonRequest(t, "POST", "/api/course/module/pass", dto.PassRequest{
		ChapterSlug:  "chapter-01",
		Section:      "1.3 Surds",
		StudentEmail: testStudentEmail,
	})
	pass.AddCookie(sessionCookie(t, env, auth.RoleTutor, testTutorEmail))
	resp, err := env.app.Test(pass)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var envelope struct {
		Error string `json:"error"`
	}
	decodeResponse(t, resp, &envelope)
	require.Equal(t, "Submission not found.", envelope.Error)
}

func TestStudentListingHidesOtherSubmissions(t *testing.T) {
	env := setupPortalApp(t)

	submit := uploadRequest(t, map[string]string{
		"kind":        "answer",
		"chapterSlug": "chapter-01",
		"section":     "1.2 Index laws",
	}, "mine.pdf", pdfContent())
	submit.AddCookie(sessionCookie(t, env, auth.RoleStudent, testStudentEmail))
	resp, err := env.app.Test(submit)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	student := listModules(t, env, sessionCookie(t, env, auth.RoleStudent, testStudentEmail))
	require.Len(t, student.Modules, 1)
	require.True(t, student.Modules[0].Status.Submitted)
	require.NotNil(t, student.Modules[0].MySubmission)
	require.Empty(t, student.Modules[0].Submissions)

	tutor := listModules(t, env, sessionCookie(t, env, auth.RoleTutor, testTutorEmail))
	require.Len(t, tutor.Modules[0].Submissions, 1)
	require.Equal(t, testStudentEmail, tutor.Modules[0].Submissions[0].StudentEmail)
}
