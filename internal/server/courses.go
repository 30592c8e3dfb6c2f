package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/coursedesk/syllabus-tracker/constants"
	"github.com/coursedesk/syllabus-tracker/internal/common"
	"github.com/coursedesk/syllabus-tracker/internal/export"
	"github.com/coursedesk/syllabus-tracker/internal/pipeline"
	"github.com/coursedesk/syllabus-tracker/internal/repository"
	"github.com/coursedesk/syllabus-tracker/internal/storage"
)

// CourseHandler serves the course API. Every failure is mapped here; no
// error propagates past the request boundary unhandled.
type CourseHandler struct {
	courses    repository.CourseRepository
	pipe       *pipeline.Pipeline
	store      storage.Store
	exporter   *export.Service
	production bool
	logger     *slog.Logger
}

func NewCourseHandler(
	courses repository.CourseRepository,
	pipe *pipeline.Pipeline,
	store storage.Store,
	exporter *export.Service,
	production bool,
	logger *slog.Logger,
) *CourseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CourseHandler{
		courses:    courses,
		pipe:       pipe,
		store:      store,
		exporter:   exporter,
		production: production,
		logger:     logger,
	}
}

// Upload handles POST /api/courses: one multipart PDF in field "pdf".
func (h *CourseHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile(constants.UploadField)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No PDF file uploaded"})
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType != constants.MIMEPDF || !constants.IsAllowedExt(filepath.Ext(fh.Filename)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be a PDF"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.respondError(c, common.WrapError(err, "open upload"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.respondError(c, common.WrapError(err, "read upload"))
		return
	}

	course, err := h.pipe.ProcessUpload(c.Request.Context(), pipeline.Upload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Course uploaded and processed successfully",
		"courseId": course.ID,
	})
}

// List handles GET /api/courses: complete courses, newest first, split
// into active and archived.
func (h *CourseHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	status := constants.StatusComplete

	active, err := h.courses.List(ctx, repository.ListFilter{Status: &status, Archived: boolPtr(false)})
	if err != nil {
		h.respondError(c, err)
		return
	}
	archived, err := h.courses.List(ctx, repository.ListFilter{Status: &status, Archived: boolPtr(true)})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"active":   toSummaries(active),
		"archived": toSummaries(archived),
	})
}

// Get handles GET /api/courses/:id.
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := h.courseID(c)
	if !ok {
		return
	}
	course, err := h.courses.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDetail(course))
}

// Delete handles DELETE /api/courses/:id: cascade delete plus best-effort
// removal of the stored PDF. The database deletion is authoritative; a
// failed file removal is logged and swallowed.
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := h.courseID(c)
	if !ok {
		return
	}

	course, err := h.courses.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.store.Remove(c.Request.Context(), course.SourcePath); err != nil {
		h.logger.Warn("course file cleanup failed", "course_id", id, "path", course.SourcePath, "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Course deleted successfully"})
}

// Archive handles PATCH /api/courses/:id/archive with body {"archived": bool}.
func (h *CourseHandler) Archive(c *gin.Context) {
	id, ok := h.courseID(c)
	if !ok {
		return
	}

	var body struct {
		Archived *bool `json:"archived"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Archived == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "archived (boolean) is required"})
		return
	}

	course, err := h.courses.SetArchived(c.Request.Context(), id, *body.Archived)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDetail(course))
}

// Export handles GET /api/courses/export: XLSX workbook attachment.
func (h *CourseHandler) Export(c *gin.Context) {
	data, err := h.exporter.ExportCoursesXLSX(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="courses.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *CourseHandler) courseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": common.UserMessage(common.ErrNotFound)})
		return uuid.Nil, false
	}
	return id, true
}

func (h *CourseHandler) respondError(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	msg := common.UserMessage(err)

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		if !h.production && !errors.Is(err, common.ErrRateLimited) && !errors.Is(err, common.ErrExtractionFailed) && !errors.Is(err, common.ErrMalformedExtraction) {
			c.JSON(status, gin.H{"error": msg, "details": err.Error()})
			return
		}
	}
	c.JSON(status, gin.H{"error": msg})
}

func boolPtr(b bool) *bool { return &b }
