package course

import (
	"github.com/upgrade-tuition/upgrade-api/internal/auth"
	"github.com/upgrade-tuition/upgrade-api/internal/models"
)

// AccessMaps is the derived unlock state for one viewer: which chapters
// they have passed and which are open to them.
type AccessMaps struct {
	ChapterPassed   map[string]bool `json:"chapterPassedMap"`
	ChapterUnlocked map[string]bool `json:"chapterUnlockedMap"`
}

// BuildChapterAccessMaps derives per-viewer chapter state from the
// assessment submissions and manual unlock flags. Pure function of its
// inputs, recomputed on every request.
//
// A chapter counts as passed for a student when that student has a
// passing submission on its assessment; for a tutor, when any student
// does. The first chapter is always unlocked; every later chapter is
// unlocked when the previous one is passed or a manual unlock is set.
func BuildChapterAccessMaps(role auth.Role, email string, assessments map[string]*models.ChapterAssessment, manualUnlocks map[string]bool) AccessMaps {
	passed := make(map[string]bool, len(ALevelMaths.Chapters))
	for _, chapter := range ALevelMaths.Chapters {
		assessment := assessments[chapter.Slug]
		if assessment == nil {
			passed[chapter.Slug] = false
			continue
		}
		passed[chapter.Slug] = anyPassed(assessment.Submissions, role, email)
	}

	unlocked := make(map[string]bool, len(ALevelMaths.Chapters))
	for index, chapter := range ALevelMaths.Chapters {
		if index == 0 {
			unlocked[chapter.Slug] = true
			continue
		}
		previous := ALevelMaths.Chapters[index-1]
		unlocked[chapter.Slug] = passed[previous.Slug] || manualUnlocks[chapter.Slug]
	}

	return AccessMaps{ChapterPassed: passed, ChapterUnlocked: unlocked}
}

func anyPassed(submissions []models.Submission, role auth.Role, email string) bool {
	for _, submission := range submissions {
		if !submission.Passed {
			continue
		}
		if role == auth.RoleStudent && submission.StudentEmail != email {
			continue
		}
		return true
	}
	return false
}
