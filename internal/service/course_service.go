package service

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/upgrade-tuition/upgrade-api/internal/auth"
	"github.com/upgrade-tuition/upgrade-api/internal/course"
	"github.com/upgrade-tuition/upgrade-api/internal/dto"
	"github.com/upgrade-tuition/upgrade-api/internal/models"
	"github.com/upgrade-tuition/upgrade-api/internal/repository"
)

var (
	// ErrUnknownUploadKind indicates an upload kind outside the allowed set.
	ErrUnknownUploadKind = errors.New("invalid upload type")
	// ErrUploadRoleNotAllowed indicates the viewer's role cannot upload this kind.
	ErrUploadRoleNotAllowed = errors.New("role not allowed for this upload type")
	// ErrMissingModuleDetails indicates chapter or section details are absent.
	ErrMissingModuleDetails = errors.New("missing module details")
	// ErrMissingStudent indicates a review action without a student email.
	ErrMissingStudent = errors.New("missing student")
	// ErrMissingSection indicates a section review without a section name.
	ErrMissingSection = errors.New("missing section")
	// ErrTopicDetailsRequired indicates a create request without title or sections.
	ErrTopicDetailsRequired = errors.New("a title and at least one subtopic are required")
	// ErrMissingTopicID indicates an availability action without a topic id.
	ErrMissingTopicID = errors.New("missing topic id")
)

// UploadKind identifies what an uploaded PDF is for. The kind decides
// both the storage target and which role may perform the upload.
type UploadKind string

// The allowed upload kinds.
const (
	KindNotes         UploadKind = "notes"
	KindExam          UploadKind = "exam"
	KindAnswer        UploadKind = "answer"
	KindChapterTest   UploadKind = "chapter-test"
	KindChapterAnswer UploadKind = "chapter-answer"
)

// ParseUploadKind normalises a raw kind value.
func ParseUploadKind(raw string) (UploadKind, bool) {
	switch UploadKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindNotes:
		return KindNotes, true
	case KindExam:
		return KindExam, true
	case KindAnswer:
		return KindAnswer, true
	case KindChapterTest:
		return KindChapterTest, true
	case KindChapterAnswer:
		return KindChapterAnswer, true
	default:
		return "", false
	}
}

// RequiredRole returns the role allowed to upload this kind: tutors own
// the teaching materials, students own the answers.
func (k UploadKind) RequiredRole() auth.Role {
	switch k {
	case KindAnswer, KindChapterAnswer:
		return auth.RoleStudent
	default:
		return auth.RoleTutor
	}
}

// CourseService implements the courses area workflows on top of the
// course repository and the upload pipeline.
type CourseService interface {
	ListModules(ctx context.Context, session auth.Session, chapterSlug string) (dto.ModuleListResponse, error)
	SaveUpload(ctx context.Context, session auth.Session, kind string, chapterSlug, section string, file *multipart.FileHeader) (dto.UploadResponse, error)
	MarkPassed(ctx context.Context, session auth.Session, req dto.PassRequest) error
	ListCustomTopics(ctx context.Context, session auth.Session) (dto.CustomTopicListResponse, error)
	ManageCustomTopic(ctx context.Context, session auth.Session, req dto.CustomTopicRequest) (models.CustomTopic, error)
}

type courseService struct {
	repo      repository.CourseRepository
	uploads   UploadService
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewCourseService constructs the course workflow service.
func NewCourseService(repo repository.CourseRepository, uploads UploadService, validator *validator.Validate, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:      repo,
		uploads:   uploads,
		validator: validator,
		logger:    logger.With().Str("component", "course_service").Logger(),
		tracer:    otel.Tracer("github.com/upgrade-tuition/upgrade-api/internal/service/course"),
	}
}

func (s *courseService) ListModules(ctx context.Context, session auth.Session, chapterSlug string) (dto.ModuleListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "course.list_modules")
	defer span.End()
	span.SetAttributes(
		attribute.String("course.viewer_role", session.Role.String()),
		attribute.String("course.chapter_filter", chapterSlug),
	)

	modules, err := s.repo.ListModules(ctx, chapterSlug)
	if err != nil {
		span.RecordError(err)
		return dto.ModuleListResponse{}, err
	}
	assessments, err := s.repo.ListChapterAssessments(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.ModuleListResponse{}, err
	}
	manualUnlocks, err := s.repo.ListManualChapterUnlocks(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.ModuleListResponse{}, err
	}
	topics, err := s.repo.ListCustomTopics(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.ModuleListResponse{}, err
	}

	access := course.BuildChapterAccessMaps(session.Role, session.Email, assessments, manualUnlocks)

	views := make([]dto.ModuleView, 0, len(modules))
	for i := range modules {
		views = append(views, buildModuleView(&modules[i], session))
	}

	return dto.ModuleListResponse{
		Course:               course.ALevelMaths,
		Modules:              views,
		ChapterPassedMap:     access.ChapterPassed,
		ChapterUnlockedMap:   access.ChapterUnlocked,
		ManualChapterUnlocks: manualUnlocks,
		ChapterAssessments:   assessments,
		CustomTopics:         filterTopics(topics, session.Role),
	}, nil
}

func (s *courseService) SaveUpload(ctx context.Context, session auth.Session, rawKind, chapterSlug, section string, file *multipart.FileHeader) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "course.save_upload")
	defer span.End()

	chapterSlug = strings.TrimSpace(chapterSlug)
	section = strings.TrimSpace(section)
	if chapterSlug == "" || section == "" {
		span.SetStatus(codes.Error, "missing module details")
		return dto.UploadResponse{}, ErrMissingModuleDetails
	}

	kind, ok := ParseUploadKind(rawKind)
	if !ok {
		span.SetStatus(codes.Error, "unknown kind")
		return dto.UploadResponse{}, ErrUnknownUploadKind
	}
	span.SetAttributes(
		attribute.String("course.upload_kind", string(kind)),
		attribute.String("course.chapter", chapterSlug),
	)

	if session.Role != kind.RequiredRole() {
		span.SetStatus(codes.Error, "role not allowed")
		return dto.UploadResponse{}, ErrUploadRoleNotAllowed
	}

	pdfPath, err := s.uploads.SavePDF(ctx, file)
	if err != nil {
		span.RecordError(err)
		return dto.UploadResponse{}, err
	}

	switch kind {
	case KindAnswer:
		_, err = s.repo.UpsertStudentSubmission(ctx, chapterSlug, section, session.Email, pdfPath)
	case KindChapterTest:
		_, err = s.repo.UpsertChapterExamPDF(ctx, chapterSlug, pdfPath)
	case KindChapterAnswer:
		_, err = s.repo.UpsertChapterSubmission(ctx, chapterSlug, session.Email, pdfPath)
	case KindNotes:
		_, err = s.repo.UpsertModuleAsset(ctx, chapterSlug, section, repository.AssetNotes, pdfPath)
	case KindExam:
		_, err = s.repo.UpsertModuleAsset(ctx, chapterSlug, section, repository.AssetExam, pdfPath)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.UploadResponse{}, err
	}

	s.logger.Info().
		Str("kind", string(kind)).
		Str("chapter", chapterSlug).
		Str("section", section).
		Str("role", session.Role.String()).
		Msg("course upload stored")
	span.SetStatus(codes.Ok, "stored")

	return dto.UploadResponse{PDFPath: pdfPath}, nil
}

func (s *courseService) MarkPassed(ctx context.Context, session auth.Session, req dto.PassRequest) error {
	ctx, span := s.tracer.Start(ctx, "course.mark_passed")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		return err
	}

	chapterSlug := strings.TrimSpace(req.ChapterSlug)
	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		mode = "section"
	}
	span.SetAttributes(
		attribute.String("course.pass_mode", mode),
		attribute.String("course.chapter", chapterSlug),
	)

	if mode == "unlock" {
		_, err := s.repo.SetManualChapterUnlock(ctx, chapterSlug, req.Unlocked)
		if err != nil {
			span.RecordError(err)
			return err
		}
		s.logger.Info().Str("chapter", chapterSlug).Bool("unlocked", req.Unlocked).Str("tutor", session.Email).Msg("manual chapter unlock updated")
		return nil
	}

	studentEmail := strings.ToLower(strings.TrimSpace(req.StudentEmail))
	if studentEmail == "" {
		return ErrMissingStudent
	}

	if mode == "chapter" {
		if _, err := s.repo.MarkChapterPassed(ctx, chapterSlug, studentEmail, session.Email); err != nil {
			span.RecordError(err)
			return err
		}
		return nil
	}

	section := strings.TrimSpace(req.Section)
	if section == "" {
		return ErrMissingSection
	}
	if _, err := s.repo.MarkSubmissionPassed(ctx, chapterSlug, section, studentEmail, session.Email); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *courseService) ListCustomTopics(ctx context.Context, session auth.Session) (dto.CustomTopicListResponse, error) {
	topics, err := s.repo.ListCustomTopics(ctx)
	if err != nil {
		return dto.CustomTopicListResponse{}, err
	}
	return dto.CustomTopicListResponse{Topics: filterTopics(topics, session.Role)}, nil
}

func (s *courseService) ManageCustomTopic(ctx context.Context, session auth.Session, req dto.CustomTopicRequest) (models.CustomTopic, error) {
	ctx, span := s.tracer.Start(ctx, "course.manage_custom_topic")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		span.RecordError(err)
		return models.CustomTopic{}, err
	}
	span.SetAttributes(attribute.String("course.topic_action", req.Action))

	switch req.Action {
	case "create":
		title := strings.TrimSpace(req.Title)
		sections := make([]string, 0, len(req.Sections))
		for _, section := range req.Sections {
			trimmed := strings.TrimSpace(section)
			if trimmed != "" {
				sections = append(sections, trimmed)
			}
		}
		if title == "" || len(sections) == 0 {
			return models.CustomTopic{}, ErrTopicDetailsRequired
		}

		topic, err := s.repo.CreateCustomTopic(ctx, title, sections)
		if err != nil {
			span.RecordError(err)
			return models.CustomTopic{}, err
		}
		s.logger.Info().Str("topic_id", topic.ID).Str("tutor", session.Email).Msg("custom topic created")
		return topic, nil

	default: // availability, enforced by the validator
		topicID := strings.TrimSpace(req.TopicID)
		if topicID == "" {
			return models.CustomTopic{}, ErrMissingTopicID
		}
		topic, err := s.repo.SetCustomTopicAvailability(ctx, topicID, req.Available)
		if err != nil {
			span.RecordError(err)
			return models.CustomTopic{}, err
		}
		return topic, nil
	}
}

func buildModuleView(module *models.Module, session auth.Session) dto.ModuleView {
	view := dto.ModuleView{
		ChapterSlug: module.ChapterSlug,
		Section:     module.Section,
		NotePDFPath: module.NotePDFPath,
		ExamPDFPath: module.ExamPDFPath,
		Submissions: []dto.SubmissionView{},
	}

	if session.Role == auth.RoleStudent {
		mine := module.SubmissionFor(session.Email)
		view.Status = dto.ModuleStatus{
			Submitted: mine != nil,
			Passed:    mine != nil && mine.Passed,
		}
		if mine != nil {
			view.MySubmission = &dto.SubmissionView{
				AnswerPDFPath: mine.AnswerPDFPath,
				SubmittedAt:   mine.SubmittedAt,
				Passed:        mine.Passed,
			}
		}
		return view
	}

	anyPassed := false
	for _, submission := range module.Submissions {
		if submission.Passed {
			anyPassed = true
		}
		view.Submissions = append(view.Submissions, dto.SubmissionView{
			StudentEmail:  submission.StudentEmail,
			AnswerPDFPath: submission.AnswerPDFPath,
			SubmittedAt:   submission.SubmittedAt,
			Passed:        submission.Passed,
			ReviewedAt:    submission.ReviewedAt,
		})
	}
	view.Status = dto.ModuleStatus{
		Submitted: len(module.Submissions) > 0,
		Passed:    anyPassed,
	}
	return view
}

// filterTopics hides unavailable topics from students; tutors see all.
func filterTopics(topics []models.CustomTopic, role auth.Role) []models.CustomTopic {
	if role == auth.RoleTutor {
		return topics
	}
	visible := make([]models.CustomTopic, 0, len(topics))
	for _, topic := range topics {
		if topic.Available {
			visible = append(visible, topic)
		}
	}
	return visible
}
