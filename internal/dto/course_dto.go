package dto

import (
	"time"

	"github.com/upgrade-tuition/upgrade-api/internal/course"
	"github.com/upgrade-tuition/upgrade-api/internal/models"
)

// ModuleStatus summarises a module for the current viewer.
type ModuleStatus struct {
	Submitted bool `json:"submitted"`
	Passed    bool `json:"passed"`
}

// SubmissionView is a submission as exposed to a viewer. Review fields
// are included for tutors only.
type SubmissionView struct {
	StudentEmail  string     `json:"studentEmail,omitempty"`
	AnswerPDFPath string     `json:"answerPdfPath"`
	SubmittedAt   time.Time  `json:"submittedAt"`
	Passed        bool       `json:"passed"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
}

// ModuleView is the role-shaped projection of a stored module. Students
// see only their own submission; tutors see all of them.
type ModuleView struct {
	ChapterSlug  string           `json:"chapterSlug"`
	Section      string           `json:"section"`
	NotePDFPath  string           `json:"notePdfPath,omitempty"`
	ExamPDFPath  string           `json:"examPdfPath,omitempty"`
	Status       ModuleStatus     `json:"status"`
	MySubmission *SubmissionView  `json:"mySubmission,omitempty"`
	Submissions  []SubmissionView `json:"submissions"`
}

// ModuleListResponse is the full course listing for the current viewer.
type ModuleListResponse struct {
	Course               course.Course                        `json:"course"`
	Modules              []ModuleView                         `json:"modules"`
	ChapterPassedMap     map[string]bool                      `json:"chapterPassedMap"`
	ChapterUnlockedMap   map[string]bool                      `json:"chapterUnlockedMap"`
	ManualChapterUnlocks map[string]bool                      `json:"manualChapterUnlocks"`
	ChapterAssessments   map[string]*models.ChapterAssessment `json:"chapterAssessments"`
	CustomTopics         []models.CustomTopic                 `json:"customTopics"`
}

// UploadResponse reports the stored location of an accepted PDF.
type UploadResponse struct {
	PDFPath string `json:"pdfPath"`
}

// PassRequest drives the review endpoint. Mode selects between marking
// a section submission, marking a chapter submission and toggling a
// manual chapter unlock.
type PassRequest struct {
	Mode         string `json:"mode" validate:"omitempty,oneof=section chapter unlock"`
	ChapterSlug  string `json:"chapterSlug" validate:"required,max=80"`
	Section      string `json:"section" validate:"omitempty,max=120"`
	StudentEmail string `json:"studentEmail" validate:"omitempty,email,max=160"`
	Unlocked     bool   `json:"unlocked"`
}

// CustomTopicRequest drives custom topic management. Action is either
// "create" or "availability".
type CustomTopicRequest struct {
	Action    string   `json:"action" validate:"required,oneof=create availability"`
	Title     string   `json:"title" validate:"omitempty,max=160"`
	Sections  []string `json:"sections" validate:"omitempty,dive,max=160"`
	TopicID   string   `json:"topicId" validate:"omitempty,max=120"`
	Available bool     `json:"available"`
}

// CustomTopicListResponse lists topics visible to the current viewer.
type CustomTopicListResponse struct {
	Topics []models.CustomTopic `json:"topics"`
}
