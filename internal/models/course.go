package models

import "time"

// Submission is a single student's answer PDF for a module or a chapter
// assessment. A student holds at most one submission per target; a
// resubmission overwrites it in place and clears the review fields.
type Submission struct {
	StudentEmail  string     `json:"studentEmail"`
	AnswerPDFPath string     `json:"answerPdfPath"`
	SubmittedAt   time.Time  `json:"submittedAt"`
	Passed        bool       `json:"passed"`
	ReviewedAt    *time.Time `json:"reviewedAt,omitempty"`
	ReviewedBy    string     `json:"reviewedBy,omitempty"`
}

// Module groups the tutor-facing assets and student submissions for one
// (chapter, section) pair. Created lazily on first upload or submission.
type Module struct {
	ChapterSlug string       `json:"chapterSlug"`
	Section     string       `json:"section"`
	NotePDFPath string       `json:"notePdfPath,omitempty"`
	ExamPDFPath string       `json:"examPdfPath,omitempty"`
	Submissions []Submission `json:"submissions"`
}

// SubmissionFor returns the submission belonging to the given student, if any.
func (m *Module) SubmissionFor(studentEmail string) *Submission {
	for i := range m.Submissions {
		if m.Submissions[i].StudentEmail == studentEmail {
			return &m.Submissions[i]
		}
	}
	return nil
}

// ChapterAssessment is the end-of-chapter gating test. Passing it (or a
// manual unlock) is what opens the next chapter.
type ChapterAssessment struct {
	ChapterSlug string       `json:"chapterSlug"`
	ExamPDFPath string       `json:"examPdfPath,omitempty"`
	Submissions []Submission `json:"submissions"`
}

// SubmissionFor returns the submission belonging to the given student, if any.
func (a *ChapterAssessment) SubmissionFor(studentEmail string) *Submission {
	for i := range a.Submissions {
		if a.Submissions[i].StudentEmail == studentEmail {
			return &a.Submissions[i]
		}
	}
	return nil
}

// CustomTopic is a tutor-authored ad hoc topic independent of the static
// chapter list.
type CustomTopic struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Sections  []string `json:"sections"`
	Available bool     `json:"available"`
}

// CourseDocument is the single persisted JSON document holding all
// course state. Every mutation rewrites the whole document.
type CourseDocument struct {
	Modules              map[string]*Module            `json:"modules"`
	ChapterAssessments   map[string]*ChapterAssessment `json:"chapterAssessments"`
	CustomTopics         []*CustomTopic                `json:"customTopics"`
	ManualChapterUnlocks map[string]bool               `json:"manualChapterUnlocks"`
}

// NewCourseDocument returns an empty document with all collections
// initialised, the shape used when the backing file is missing or corrupt.
func NewCourseDocument() *CourseDocument {
	return &CourseDocument{
		Modules:              map[string]*Module{},
		ChapterAssessments:   map[string]*ChapterAssessment{},
		CustomTopics:         []*CustomTopic{},
		ManualChapterUnlocks: map[string]bool{},
	}
}
