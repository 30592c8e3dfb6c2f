package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/coursedesk/syllabus-tracker/constants"
	"github.com/coursedesk/syllabus-tracker/internal/repository"
)

// Service is a tiny façade over the course repository that produces XLSX
// bytes for exports.
type Service struct {
	courses repository.CourseRepository
	logger  *slog.Logger
}

func NewService(courses repository.CourseRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{courses: courses, logger: logger}
}

// ExportCoursesXLSX returns an XLSX workbook (as bytes) with one row per
// complete course, archived ones included.
func (s *Service) ExportCoursesXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()

	status := constants.StatusComplete
	courses, err := s.courses.List(ctx, repository.ListFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Courses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Course Name",
		"Term",
		"Sections",
		"Assessment",
		"Exam Dates",
		"Archived",
		"Uploaded",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, c := range courses {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, deref(c.Name, "Untitled Course"))
		write(2, deref(c.Term, ""))
		write(3, len(c.Sections))
		write(4, deref(c.Assessment, ""))
		write(5, deref(c.ExamDates, ""))
		write(6, c.Archived)
		write(7, c.CreatedAt.Format("2006-01-02"))
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.courses.ok", "rows", row-2, "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func deref(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
