package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coursedesk/syllabus-tracker/constants"
	"github.com/coursedesk/syllabus-tracker/internal/common"
	"github.com/coursedesk/syllabus-tracker/internal/entity"
	"github.com/coursedesk/syllabus-tracker/internal/llm"
	"github.com/coursedesk/syllabus-tracker/internal/repository"
	"github.com/coursedesk/syllabus-tracker/internal/storage"
)

// Upload is one accepted multipart submission.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Pipeline runs the upload saga: store the file, create a pending course,
// call the extractor, then either finalize in one transaction or compensate
// by deleting everything the attempt created. The only durable side effect
// before the extractor call is the pending row; the only one after is
// either the finalize or the delete, never both.
type Pipeline struct {
	courses   repository.CourseRepository
	store     storage.Store
	extractor llm.DocumentExtractor
	logger    *slog.Logger
}

func New(courses repository.CourseRepository, store storage.Store, extractor llm.DocumentExtractor, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{courses: courses, store: store, extractor: extractor, logger: logger}
}

// ProcessUpload handles one submission end to end. The extractor call
// blocks the request; there is no background queue and no retry. Each
// accepted upload creates a fresh course id; there is no dedup by content
// or name.
func (p *Pipeline) ProcessUpload(ctx context.Context, up Upload) (*entity.Course, error) {
	start := time.Now()

	if len(up.Data) == 0 {
		return nil, fmt.Errorf("no PDF file uploaded: %w", common.ErrInvalidUpload)
	}
	if up.ContentType != constants.MIMEPDF {
		return nil, fmt.Errorf("content type %q: %w", up.ContentType, common.ErrInvalidUpload)
	}

	sourcePath, err := p.store.Save(ctx, up.Filename, up.Data)
	if err != nil {
		p.logger.Error("pipeline.store.failed", "filename", up.Filename, "error", err)
		return nil, fmt.Errorf("store upload: %v: %w", err, common.ErrPersistence)
	}

	// Durability checkpoint: from here on a visible "processing" row
	// exists and every failure path must remove it.
	course := &entity.Course{
		SourcePath: sourcePath,
		Status:     constants.StatusPending,
	}
	if err := p.courses.Create(ctx, course); err != nil {
		p.removeFile(ctx, sourcePath)
		return nil, err
	}
	p.logger.Info("pipeline.created", "course_id", course.ID, "source_path", sourcePath)

	data, _, err := p.extractor.ExtractCourse(ctx, llm.Document{
		Data:     up.Data,
		MIMEType: up.ContentType,
		Filename: up.Filename,
	})
	if err != nil {
		p.rollback(ctx, course)
		p.logger.Error("pipeline.extract.failed",
			"course_id", course.ID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	finalized, err := p.courses.Finalize(ctx, course.ID, data)
	if err != nil {
		p.rollback(ctx, course)
		return nil, err
	}

	p.logger.Info("pipeline.finalize.ok",
		"course_id", course.ID,
		"sections", len(finalized.Sections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return finalized, nil
}

// rollback is the compensating transaction: no partial or pending course
// may remain visible after a failed attempt.
func (p *Pipeline) rollback(ctx context.Context, course *entity.Course) {
	if _, err := p.courses.Delete(ctx, course.ID); err != nil {
		p.logger.Error("pipeline.rollback.delete_failed", "course_id", course.ID, "error", err)
	}
	p.removeFile(ctx, course.SourcePath)
}

func (p *Pipeline) removeFile(ctx context.Context, path string) {
	if err := p.store.Remove(ctx, path); err != nil {
		// The row (or its absence) is authoritative; a leftover file is
		// only logged.
		p.logger.Warn("pipeline.file_cleanup_failed", "path", path, "error", err)
	}
}
