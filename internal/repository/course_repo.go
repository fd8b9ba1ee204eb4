package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/upgrade-tuition/upgrade-api/internal/course"
	"github.com/upgrade-tuition/upgrade-api/internal/models"
)

var (
	// ErrSubmissionNotFound indicates a review action referenced a student
	// with no submission on the target module or assessment.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrTopicNotFound indicates the custom topic id is unknown.
	ErrTopicNotFound = errors.New("custom topic not found")
)

// AssetKind selects which tutor asset of a module an upload replaces.
type AssetKind string

// Module asset kinds.
const (
	AssetNotes AssetKind = "notes"
	AssetExam  AssetKind = "exam"
)

// courseDocumentSchema guards the persisted document shape. A file that
// fails validation is treated the same as a corrupt one.
const courseDocumentSchema = `{
	"type": "object",
	"properties": {
		"modules": {"type": "object"},
		"chapterAssessments": {"type": "object"},
		"customTopics": {"type": "array"},
		"manualChapterUnlocks": {
			"type": "object",
			"additionalProperties": {"type": "boolean"}
		}
	}
}`

// CourseRepository is the durable store for modules, chapter
// assessments, custom topics and manual unlock flags.
type CourseRepository interface {
	ListModules(ctx context.Context, chapterSlug string) ([]models.Module, error)
	UpsertModuleAsset(ctx context.Context, chapterSlug, section string, kind AssetKind, pdfPath string) (models.Module, error)
	UpsertStudentSubmission(ctx context.Context, chapterSlug, section, studentEmail, pdfPath string) (models.Module, error)
	MarkSubmissionPassed(ctx context.Context, chapterSlug, section, studentEmail, tutorEmail string) (models.Module, error)

	UpsertChapterExamPDF(ctx context.Context, chapterSlug, pdfPath string) (models.ChapterAssessment, error)
	UpsertChapterSubmission(ctx context.Context, chapterSlug, studentEmail, pdfPath string) (models.ChapterAssessment, error)
	MarkChapterPassed(ctx context.Context, chapterSlug, studentEmail, tutorEmail string) (models.ChapterAssessment, error)
	ListChapterAssessments(ctx context.Context) (map[string]*models.ChapterAssessment, error)

	SetManualChapterUnlock(ctx context.Context, chapterSlug string, unlocked bool) (map[string]bool, error)
	ListManualChapterUnlocks(ctx context.Context) (map[string]bool, error)

	ListCustomTopics(ctx context.Context) ([]models.CustomTopic, error)
	GetCustomTopic(ctx context.Context, topicID string) (models.CustomTopic, error)
	CreateCustomTopic(ctx context.Context, title string, sections []string) (models.CustomTopic, error)
	SetCustomTopicAvailability(ctx context.Context, topicID string, available bool) (models.CustomTopic, error)
}

type fileCourseRepository struct {
	path   string
	mu     sync.Mutex
	schema *jsonschema.Schema
	logger zerolog.Logger
	now    func() time.Time
}

// NewFileCourseRepository constructs a repository backed by a single
// JSON document on disk. The mutex serialises the whole
// read-modify-write cycle so concurrent mutations cannot clobber each
// other, and writes go through a temp-file rename swap.
func NewFileCourseRepository(path string, logger zerolog.Logger) (CourseRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("course store path must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create course store directory: %w", err)
	}

	schema, err := jsonschema.CompileString("course-document.json", courseDocumentSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile course document schema: %w", err)
	}

	return &fileCourseRepository{
		path:   path,
		schema: schema,
		logger: logger.With().Str("component", "course_repository").Logger(),
		now:    time.Now,
	}, nil
}

// load reads and validates the document. A missing, unreadable, corrupt
// or schema-invalid file all yield the empty shape.
func (r *fileCourseRepository) load() *models.CourseDocument {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn().Err(err).Str("path", r.path).Msg("failed to read course store, starting empty")
		}
		return models.NewCourseDocument()
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("corrupt course store, starting empty")
		return models.NewCourseDocument()
	}
	if err := r.schema.Validate(generic); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("course store failed schema validation, starting empty")
		return models.NewCourseDocument()
	}

	doc := models.NewCourseDocument()
	if err := json.Unmarshal(raw, doc); err != nil {
		r.logger.Warn().Err(err).Str("path", r.path).Msg("course store shape mismatch, starting empty")
		return models.NewCourseDocument()
	}
	if doc.Modules == nil {
		doc.Modules = map[string]*models.Module{}
	}
	if doc.ChapterAssessments == nil {
		doc.ChapterAssessments = map[string]*models.ChapterAssessment{}
	}
	if doc.CustomTopics == nil {
		doc.CustomTopics = []*models.CustomTopic{}
	}
	if doc.ManualChapterUnlocks == nil {
		doc.ManualChapterUnlocks = map[string]bool{}
	}
	return doc
}

func (r *fileCourseRepository) save(doc *models.CourseDocument) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode course store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".course-modules-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp course store: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write course store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to flush course store: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to swap course store: %w", err)
	}
	return nil
}

// mutate runs fn against the current document under the lock and
// persists the result when fn succeeds.
func (r *fileCourseRepository) mutate(fn func(doc *models.CourseDocument) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := r.load()
	if err := fn(doc); err != nil {
		return err
	}
	return r.save(doc)
}

func (r *fileCourseRepository) ListModules(_ context.Context, chapterSlug string) ([]models.Module, error) {
	r.mu.Lock()
	doc := r.load()
	r.mu.Unlock()

	keys := make([]string, 0, len(doc.Modules))
	for key := range doc.Modules {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]models.Module, 0, len(keys))
	for _, key := range keys {
		module := doc.Modules[key]
		if chapterSlug != "" && module.ChapterSlug != chapterSlug {
			continue
		}
		result = append(result, copyModule(module))
	}
	return result, nil
}

func (r *fileCourseRepository) UpsertModuleAsset(_ context.Context, chapterSlug, section string, kind AssetKind, pdfPath string) (models.Module, error) {
	var updated models.Module
	err := r.mutate(func(doc *models.CourseDocument) error {
		module := getOrInitModule(doc, chapterSlug, section)
		switch kind {
		case AssetNotes:
			module.NotePDFPath = pdfPath
		case AssetExam:
			module.ExamPDFPath = pdfPath
		default:
			return fmt.Errorf("unknown module asset kind %q", kind)
		}
		updated = copyModule(module)
		return nil
	})
	return updated, err
}

func (r *fileCourseRepository) UpsertStudentSubmission(_ context.Context, chapterSlug, section, studentEmail, pdfPath string) (models.Module, error) {
	var updated models.Module
	err := r.mutate(func(doc *models.CourseDocument) error {
		module := getOrInitModule(doc, chapterSlug, section)
		upsertSubmission(&module.Submissions, studentEmail, pdfPath, r.now())
		updated = copyModule(module)
		return nil
	})
	return updated, err
}

func (r *fileCourseRepository) MarkSubmissionPassed(_ context.Context, chapterSlug, section, studentEmail, tutorEmail string) (models.Module, error) {
	var updated models.Module
	err := r.mutate(func(doc *models.CourseDocument) error {
		module := getOrInitModule(doc, chapterSlug, section)
		if !markPassed(module.Submissions, studentEmail, tutorEmail, r.now()) {
			return ErrSubmissionNotFound
		}
		updated = copyModule(module)
		return nil
	})
	return updated, err
}

func (r *fileCourseRepository) UpsertChapterExamPDF(_ context.Context, chapterSlug, pdfPath string) (models.ChapterAssessment, error) {
	var updated models.ChapterAssessment
	err := r.mutate(func(doc *models.CourseDocument) error {
		assessment := getOrInitAssessment(doc, chapterSlug)
		assessment.ExamPDFPath = pdfPath
		updated = copyAssessment(assessment)
		return nil
	})
	return updated, err
}

func (r *fileCourseRepository) UpsertChapterSubmission(_ context.Context, chapterSlug, studentEmail, pdfPath string) (models.ChapterAssessment, error) {
	var updated models.ChapterAssessment
	err := r.mutate(func(doc *models.CourseDocument) error {
		assessment := getOrInitAssessment(doc, chapterSlug)
		upsertSubmission(&assessment.Submissions, studentEmail, pdfPath, r.now())
		updated = copyAssessment(assessment)
		return nil
	})
	return updated, err
}

func (r *fileCourseRepository) MarkChapterPassed(_ context.Context, chapterSlug, studentEmail, tutorEmail string) (models.ChapterAssessment, error) {
	var updated models.ChapterAssessment
	err := r.mutate(func(doc *models.CourseDocument) error {
		assessment := getOrInitAssessment(doc, chapterSlug)
		if !markPassed(assessment.Submissions, studentEmail, tutorEmail, r.now()) {
			return ErrSubmissionNotFound
		}
		updated = copyAssessment(assessment)
		return nil
	})
	return updated, err
}

func (r *fileCourseRepository) ListChapterAssessments(_ context.Context) (map[string]*models.ChapterAssessment, error) {
	r.mu.Lock()
	doc := r.load()
	r.mu.Unlock()

	result := make(map[string]*models.ChapterAssessment, len(doc.ChapterAssessments))
	for slug, assessment := range doc.ChapterAssessments {
		copied := copyAssessment(assessment)
		result[slug] = &copied
	}
	return result, nil
}

func (r *fileCourseRepository) SetManualChapterUnlock(_ context.Context, chapterSlug string, unlocked bool) (map[string]bool, error) {
	var unlocks map[string]bool
	err := r.mutate(func(doc *models.CourseDocument) error {
		doc.ManualChapterUnlocks[chapterSlug] = unlocked
		unlocks = copyBoolMap(doc.ManualChapterUnlocks)
		return nil
	})
	return unlocks, err
}

func (r *fileCourseRepository) ListManualChapterUnlocks(_ context.Context) (map[string]bool, error) {
	r.mu.Lock()
	doc := r.load()
	r.mu.Unlock()
	return copyBoolMap(doc.ManualChapterUnlocks), nil
}

func (r *fileCourseRepository) ListCustomTopics(_ context.Context) ([]models.CustomTopic, error) {
	r.mu.Lock()
	doc := r.load()
	r.mu.Unlock()

	topics := make([]models.CustomTopic, 0, len(doc.CustomTopics))
	for _, topic := range doc.CustomTopics {
		topics = append(topics, copyTopic(topic))
	}
	return topics, nil
}

func (r *fileCourseRepository) GetCustomTopic(_ context.Context, topicID string) (models.CustomTopic, error) {
	r.mu.Lock()
	doc := r.load()
	r.mu.Unlock()

	for _, topic := range doc.CustomTopics {
		if topic.ID == topicID {
			return copyTopic(topic), nil
		}
	}
	return models.CustomTopic{}, ErrTopicNotFound
}

func (r *fileCourseRepository) CreateCustomTopic(_ context.Context, title string, sections []string) (models.CustomTopic, error) {
	cleaned := make([]string, 0, len(sections))
	for _, section := range sections {
		trimmed := strings.TrimSpace(section)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	var created models.CustomTopic
	err := r.mutate(func(doc *models.CourseDocument) error {
		topic := &models.CustomTopic{
			ID:        slugifyTopicID(fmt.Sprintf("%s-%d", title, r.now().UnixMilli())),
			Title:     strings.TrimSpace(title),
			Sections:  cleaned,
			Available: true,
		}
		doc.CustomTopics = append(doc.CustomTopics, topic)
		created = copyTopic(topic)
		return nil
	})
	return created, err
}

func (r *fileCourseRepository) SetCustomTopicAvailability(_ context.Context, topicID string, available bool) (models.CustomTopic, error) {
	var updated models.CustomTopic
	err := r.mutate(func(doc *models.CourseDocument) error {
		for _, topic := range doc.CustomTopics {
			if topic.ID == topicID {
				topic.Available = available
				updated = copyTopic(topic)
				return nil
			}
		}
		return ErrTopicNotFound
	})
	return updated, err
}

func getOrInitModule(doc *models.CourseDocument, chapterSlug, section string) *models.Module {
	key := course.ModuleKey(chapterSlug, section)
	if existing, ok := doc.Modules[key]; ok {
		return existing
	}
	module := &models.Module{
		ChapterSlug: chapterSlug,
		Section:     section,
		Submissions: []models.Submission{},
	}
	doc.Modules[key] = module
	return module
}

func getOrInitAssessment(doc *models.CourseDocument, chapterSlug string) *models.ChapterAssessment {
	if existing, ok := doc.ChapterAssessments[chapterSlug]; ok {
		return existing
	}
	assessment := &models.ChapterAssessment{
		ChapterSlug: chapterSlug,
		Submissions: []models.Submission{},
	}
	doc.ChapterAssessments[chapterSlug] = assessment
	return assessment
}

// upsertSubmission inserts or overwrites the student's submission. An
// overwrite resets the review fields so the tutor has to look again.
func upsertSubmission(submissions *[]models.Submission, studentEmail, pdfPath string, now time.Time) {
	for i := range *submissions {
		if (*submissions)[i].StudentEmail == studentEmail {
			(*submissions)[i].AnswerPDFPath = pdfPath
			(*submissions)[i].SubmittedAt = now
			(*submissions)[i].Passed = false
			(*submissions)[i].ReviewedAt = nil
			(*submissions)[i].ReviewedBy = ""
			return
		}
	}
	*submissions = append(*submissions, models.Submission{
		StudentEmail:  studentEmail,
		AnswerPDFPath: pdfPath,
		SubmittedAt:   now,
	})
}

func markPassed(submissions []models.Submission, studentEmail, tutorEmail string, now time.Time) bool {
	for i := range submissions {
		if submissions[i].StudentEmail == studentEmail {
			submissions[i].Passed = true
			reviewedAt := now
			submissions[i].ReviewedAt = &reviewedAt
			submissions[i].ReviewedBy = tutorEmail
			return true
		}
	}
	return false
}

func slugifyTopicID(value string) string {
	slug := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, strings.ToLower(value))
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return uuid.NewString()
	}
	return slug
}

func copyModule(module *models.Module) models.Module {
	copied := *module
	copied.Submissions = append([]models.Submission(nil), module.Submissions...)
	return copied
}

func copyAssessment(assessment *models.ChapterAssessment) models.ChapterAssessment {
	copied := *assessment
	copied.Submissions = append([]models.Submission(nil), assessment.Submissions...)
	return copied
}

func copyTopic(topic *models.CustomTopic) models.CustomTopic {
	copied := *topic
	copied.Sections = append([]string(nil), topic.Sections...)
	return copied
}

func copyBoolMap(source map[string]bool) map[string]bool {
	copied := make(map[string]bool, len(source))
	for key, value := range source {
		copied[key] = value
	}
	return copied
}
