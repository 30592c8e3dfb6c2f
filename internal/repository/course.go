package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursedesk/syllabus-tracker/constants"
	"github.com/coursedesk/syllabus-tracker/internal/common"
	"github.com/coursedesk/syllabus-tracker/internal/entity"
	"github.com/coursedesk/syllabus-tracker/internal/llm"
)

// ListFilter narrows List to a status and an archived partition. Nil means
// no constraint on that axis.
type ListFilter struct {
	Status   *constants.CourseStatus
	Archived *bool
}

type CourseRepository interface {
	// Create persists a new pending placeholder row.
	Create(ctx context.Context, course *entity.Course) error
	// GetByID loads a course with its sections and lectures.
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Course, error)
	// List returns matching courses, newest first, with nested children.
	List(ctx context.Context, filter ListFilter) ([]entity.Course, error)
	// Finalize promotes a pending course to complete in one transaction:
	// scalar patch plus ordered section/lecture inserts. Used exactly once
	// per course.
	Finalize(ctx context.Context, id uuid.UUID, data llm.ExtractedCourseData) (*entity.Course, error)
	// SetArchived flips the archived flag.
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) (*entity.Course, error)
	// Delete removes the course and cascades to sections and lectures,
	// returning the deleted row so callers can clean up the stored file.
	Delete(ctx context.Context, id uuid.UUID) (*entity.Course, error)
}

type courseRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewCourseRepository(db *gorm.DB, logger *slog.Logger) CourseRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &courseRepository{db: db, logger: logger}
}

func (r *courseRepository) Create(ctx context.Context, course *entity.Course) error {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		r.logger.Error("failed to create course", "error", err)
		return fmt.Errorf("create course: %v: %w", err, common.ErrPersistence)
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	var course entity.Course
	err := r.db.WithContext(ctx).
		Preload("Sections.Lectures").
		Preload("Sections").
		First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get course", "course_id", id, "error", err)
		return nil, fmt.Errorf("get course: %v: %w", err, common.ErrPersistence)
	}
	return &course, nil
}

func (r *courseRepository) List(ctx context.Context, filter ListFilter) ([]entity.Course, error) {
	q := r.db.WithContext(ctx).
		Preload("Sections.Lectures").
		Preload("Sections").
		Order("created_at DESC")
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.Archived != nil {
		q = q.Where("archived = ?", *filter.Archived)
	}

	var courses []entity.Course
	if err := q.Find(&courses).Error; err != nil {
		r.logger.Error("failed to list courses", "error", err)
		return nil, fmt.Errorf("list courses: %v: %w", err, common.ErrPersistence)
	}
	return courses, nil
}

func (r *courseRepository) Finalize(ctx context.Context, id uuid.UUID, data llm.ExtractedCourseData) (*entity.Course, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course entity.Course
		if err := tx.First(&course, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.ErrNotFound
			}
			return err
		}

		patch := map[string]any{
			"name":        data.Name,
			"term":        data.Term,
			"description": data.Description,
			"materials":   data.Materials,
			"assessment":  data.Assessment,
			"policies":    data.Policies,
			"exam_dates":  data.ExamDates,
			"status":      constants.StatusComplete,
			"updated_at":  time.Now(),
		}
		if err := tx.Model(&entity.Course{}).Where("id = ?", id).Updates(patch).Error; err != nil {
			return err
		}

		// Child rows follow the extraction's list order; duplicates are
		// accepted as separate rows.
		for _, sec := range data.Sections {
			section := entity.Section{
				CourseID:    id,
				SectionCode: fallback(sec.SectionCode),
				Instructor:  fallback(sec.Instructor),
			}
			if err := tx.Create(&section).Error; err != nil {
				return err
			}
			for _, lec := range sec.Lectures {
				lecture := entity.Lecture{
					SectionID: section.ID,
					DayOfWeek: fallback(lec.DayOfWeek),
					StartTime: fallback(lec.StartTime),
					EndTime:   fallback(lec.EndTime),
					Location:  fallback(lec.Location),
				}
				if err := tx.Create(&lecture).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		r.logger.Error("failed to finalize course", "course_id", id, "error", err)
		return nil, fmt.Errorf("finalize course: %v: %w", err, common.ErrPersistence)
	}
	return r.GetByID(ctx, id)
}

func (r *courseRepository) SetArchived(ctx context.Context, id uuid.UUID, archived bool) (*entity.Course, error) {
	res := r.db.WithContext(ctx).Model(&entity.Course{}).Where("id = ?", id).
		Updates(map[string]any{"archived": archived, "updated_at": time.Now()})
	if res.Error != nil {
		r.logger.Error("failed to archive course", "course_id", id, "error", res.Error)
		return nil, fmt.Errorf("archive course: %v: %w", res.Error, common.ErrPersistence)
	}
	if res.RowsAffected == 0 {
		return nil, common.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *courseRepository) Delete(ctx context.Context, id uuid.UUID) (*entity.Course, error) {
	course, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Explicit child deletes inside one transaction keep the cascade
	// identical across dialects; the FK constraints also cascade on
	// postgres.
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id IN (?)",
			tx.Model(&entity.Section{}).Select("id").Where("course_id = ?", id),
		).Delete(&entity.Lecture{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&entity.Section{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Course{}, "id = ?", id).Error
	})
	if err != nil {
		r.logger.Error("failed to delete course", "course_id", id, "error", err)
		return nil, fmt.Errorf("delete course: %v: %w", err, common.ErrPersistence)
	}
	return course, nil
}

func fallback(s string) string {
	if s == "" {
		return constants.TBD
	}
	return s
}
