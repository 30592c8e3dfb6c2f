package server

import (
	"reflect"
	"testing"

	"github.com/coursedesk/syllabus-tracker/constants"
	"github.com/coursedesk/syllabus-tracker/internal/entity"
)

func TestSummaryAndDetailRenderSameAssessmentLines(t *testing.T) {
	raw := []string{
		"Midterm: 25%, Final Exam: 55%, Participation: 20%",
		"Midterm (covers ch. 1, 2): 20%.",
		`[{"name":"Midterm","weightPercent":25},{"name":"Final","weightPercent":75}]`,
		"Grading follows the department scale",
	}

	for _, assessment := range raw {
		c := &entity.Course{
			Status:     constants.StatusComplete,
			Assessment: strp(assessment),
		}
		summary := toSummary(c)
		detail := toDetail(c)

		if summary.AssessmentLines == nil || detail.AssessmentLines == nil {
			t.Fatalf("missing lines for %q", assessment)
		}
		if !reflect.DeepEqual(summary.AssessmentLines, detail.AssessmentLines) {
			t.Errorf("card and detail views diverge for %q:\n summary %+v\n detail  %+v",
				assessment, summary.AssessmentLines, detail.AssessmentLines)
		}
	}
}

func TestSummaryOmitsLinesWhenAssessmentMissing(t *testing.T) {
	c := &entity.Course{Status: constants.StatusComplete}
	if s := toSummary(c); s.AssessmentLines != nil {
		t.Errorf("assessmentLines = %+v, want nil", s.AssessmentLines)
	}
	d := toDetail(c)
	if d.AssessmentLines != nil || d.ExamDateLines != nil || d.MaterialLines != nil {
		t.Error("detail rendered lines for absent fields")
	}
}

func TestDetailRendersAllFreeTextFields(t *testing.T) {
	c := &entity.Course{
		Status:     constants.StatusComplete,
		Assessment: strp("Midterm: 40%, Final: 60%"),
		ExamDates:  strp("No exam dates provided"),
		Materials:  strp(`["Course textbook","Lab kit"]`),
	}
	d := toDetail(c)
	if d.AssessmentLines == nil || len(d.AssessmentLines.Lines) != 2 {
		t.Errorf("assessmentLines = %+v", d.AssessmentLines)
	}
	if d.ExamDateLines == nil || len(d.ExamDateLines.Lines) != 1 {
		t.Errorf("examDateLines = %+v", d.ExamDateLines)
	}
	if d.MaterialLines == nil || len(d.MaterialLines.Lines) != 2 {
		t.Errorf("materialLines = %+v", d.MaterialLines)
	}
}
