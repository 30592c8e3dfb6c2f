package server

import (
	"time"

	"github.com/google/uuid"

	"github.com/coursedesk/syllabus-tracker/constants"
	"github.com/coursedesk/syllabus-tracker/internal/entity"
	"github.com/coursedesk/syllabus-tracker/internal/render"
)

// CourseSummary is the dashboard-card view of a course: scalar fields plus
// the normalized assessment lines, untruncated.
type CourseSummary struct {
	ID              uuid.UUID              `json:"id"`
	Name            *string                `json:"name"`
	Term            *string                `json:"term"`
	Status          constants.CourseStatus `json:"status"`
	Archived        bool                   `json:"archived"`
	CreatedAt       time.Time              `json:"createdAt"`
	Sections        []entity.Section       `json:"sections"`
	AssessmentLines *render.Field          `json:"assessmentLines,omitempty"`
}

// CourseDetail is the full course view with every free-text field
// normalized. The line semantics are identical to the summary view: both
// serializers call the same render functions.
type CourseDetail struct {
	entity.Course
	AssessmentLines *render.Field `json:"assessmentLines,omitempty"`
	ExamDateLines   *render.Field `json:"examDateLines,omitempty"`
	MaterialLines   *render.Field `json:"materialLines,omitempty"`
}

// toSummary builds the dashboard card DTO.
func toSummary(c *entity.Course) CourseSummary {
	out := CourseSummary{
		ID:        c.ID,
		Name:      c.Name,
		Term:      c.Term,
		Status:    c.Status,
		Archived:  c.Archived,
		CreatedAt: c.CreatedAt,
		Sections:  c.Sections,
	}
	if c.Assessment != nil {
		f := render.Assessment(*c.Assessment)
		out.AssessmentLines = &f
	}
	return out
}

// toDetail builds the unabridged course DTO.
func toDetail(c *entity.Course) CourseDetail {
	out := CourseDetail{Course: *c}
	if c.Assessment != nil {
		f := render.Assessment(*c.Assessment)
		out.AssessmentLines = &f
	}
	if c.ExamDates != nil {
		f := render.ExamDates(*c.ExamDates)
		out.ExamDateLines = &f
	}
	if c.Materials != nil {
		f := render.Materials(*c.Materials)
		out.MaterialLines = &f
	}
	return out
}

func toSummaries(courses []entity.Course) []CourseSummary {
	out := make([]CourseSummary, 0, len(courses))
	for i := range courses {
		out = append(out, toSummary(&courses[i]))
	}
	return out
}
