package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursedesk/syllabus-tracker/constants"
	"github.com/coursedesk/syllabus-tracker/internal/common"
	"github.com/coursedesk/syllabus-tracker/internal/entity"
	"github.com/coursedesk/syllabus-tracker/internal/llm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Each sqlite connection gets its own :memory: database, so the pool
	// must stay at a single connection.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&entity.Course{}, &entity.Section{}, &entity.Lecture{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strp(s string) *string { return &s }

func seedPending(t *testing.T, repo CourseRepository, createdAt time.Time) *entity.Course {
	t.Helper()
	c := &entity.Course{
		SourcePath: "uploads/syllabus.pdf",
		Status:     constants.StatusPending,
		CreatedAt:  createdAt,
	}
	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("create: %v", err)
	}
	return c
}

func TestCreateAndGetByID(t *testing.T) {
	repo := NewCourseRepository(testDB(t), nil)
	ctx := context.Background()

	c := seedPending(t, repo, time.Now())
	if c.ID == uuid.Nil {
		t.Fatal("create did not assign an id")
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != constants.StatusPending {
		t.Errorf("status = %s", got.Status)
	}
	if got.SourcePath != "uploads/syllabus.pdf" {
		t.Errorf("sourcePath = %q", got.SourcePath)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewCourseRepository(testDB(t), nil)
	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFinalizePopulatesCourseGraph(t *testing.T) {
	repo := NewCourseRepository(testDB(t), nil)
	ctx := context.Background()
	c := seedPending(t, repo, time.Now())

	data := llm.ExtractedCourseData{
		Name:       strp("CS 101"),
		Term:       strp("Fall 2025"),
		Assessment: strp("Midterm: 40%, Final: 60%"),
		Sections: []llm.SectionData{
			{
				SectionCode: "L0101",
				Instructor:  "Dr. Smith",
				Lectures: []llm.LectureData{
					{DayOfWeek: "Monday", StartTime: "10:00", EndTime: "11:00", Location: "BA 1190"},
					{DayOfWeek: "Wednesday", StartTime: "10:00", EndTime: "11:00", Location: "BA 1190"},
				},
			},
			{SectionCode: "L0201", Instructor: "Dr. Jones"},
		},
	}

	got, err := repo.Finalize(ctx, c.ID, data)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got.Status != constants.StatusComplete {
		t.Errorf("status = %s, want complete", got.Status)
	}
	if got.Name == nil || *got.Name != "CS 101" {
		t.Errorf("name = %v", got.Name)
	}
	if len(got.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(got.Sections))
	}
	if got.Sections[0].SectionCode != "L0101" || got.Sections[1].SectionCode != "L0201" {
		t.Errorf("section order: %q, %q", got.Sections[0].SectionCode, got.Sections[1].SectionCode)
	}
	if len(got.Sections[0].Lectures) != 2 {
		t.Errorf("lectures = %d, want 2", len(got.Sections[0].Lectures))
	}
}

func TestFinalizeFillsMissingFields(t *testing.T) {
	repo := NewCourseRepository(testDB(t), nil)
	ctx := context.Background()
	c := seedPending(t, repo, time.Now())

	data := llm.ExtractedCourseData{
		Sections: []llm.SectionData{
			{SectionCode: "", Instructor: "", Lectures: []llm.LectureData{{DayOfWeek: "", StartTime: "", EndTime: "", Location: ""}}},
		},
	}

	got, err := repo.Finalize(ctx, c.ID, data)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got.Name != nil {
		t.Errorf("name = %v, want nil", got.Name)
	}
	sec := got.Sections[0]
	if sec.SectionCode != constants.TBD || sec.Instructor != constants.TBD {
		t.Errorf("section fallback: %+v", sec)
	}
	lec := sec.Lectures[0]
	if lec.DayOfWeek != constants.TBD || lec.Location != constants.TBD {
		t.Errorf("lecture fallback: %+v", lec)
	}
}

func TestFinalizeMissingCourse(t *testing.T) {
	repo := NewCourseRepository(testDB(t), nil)
	if _, err := repo.Finalize(context.Background(), uuid.New(), llm.ExtractedCourseData{}); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirstWithFilters(t *testing.T) {
	repo := NewCourseRepository(testDB(t), nil)
	ctx := context.Background()

	old := seedPending(t, repo, time.Now().Add(-2*time.Hour))
	seedPending(t, repo, time.Now().Add(-1*time.Hour)) // stays pending
	newest := seedPending(t, repo, time.Now())

	if _, err := repo.Finalize(ctx, old.ID, llm.ExtractedCourseData{Name: strp("Old")}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Finalize(ctx, newest.ID, llm.ExtractedCourseData{Name: strp("New")}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.SetArchived(ctx, old.ID, true); err != nil {
		t.Fatal(err)
	}

	all, err := repo.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].ID != newest.ID || all[2].ID != old.ID {
		t.Errorf("order = %v, %v, %v", all[0].ID, all[1].ID, all[2].ID)
	}

	st := constants.StatusComplete
	complete, err := repo.List(ctx, ListFilter{Status: &st})
	if err != nil {
		t.Fatal(err)
	}
	if len(complete) != 2 {
		t.Errorf("complete = %d, want 2", len(complete))
	}

	unarchived := false
	active, err := repo.List(ctx, ListFilter{Status: &st, Archived: &unarchived})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 1 || active[0].ID != newest.ID {
		t.Errorf("active = %+v", active)
	}
}

func TestSetArchivedToggle(t *testing.T) {
	repo := NewCourseRepository(testDB(t), nil)
	ctx := context.Background()
	c := seedPending(t, repo, time.Now())

	got, err := repo.SetArchived(ctx, c.ID, true)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !got.Archived {
		t.Error("archived flag not set")
	}

	got, err = repo.SetArchived(ctx, c.ID, false)
	if err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	if got.Archived {
		t.Error("archived flag not cleared")
	}
}

func TestSetArchivedMissingCourse(t *testing.T) {
	repo := NewCourseRepository(testDB(t), nil)
	if _, err := repo.SetArchived(context.Background(), uuid.New(), true); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesWholeGraph(t *testing.T) {
	db := testDB(t)
	repo := NewCourseRepository(db, nil)
	ctx := context.Background()
	c := seedPending(t, repo, time.Now())

	data := llm.ExtractedCourseData{
		Sections: []llm.SectionData{
			{SectionCode: "L0101", Instructor: "Dr. Smith", Lectures: []llm.LectureData{{DayOfWeek: "Monday"}}},
		},
	}
	if _, err := repo.Finalize(ctx, c.ID, data); err != nil {
		t.Fatal(err)
	}

	deleted, err := repo.Delete(ctx, c.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.SourcePath != "uploads/syllabus.pdf" {
		t.Errorf("deleted row sourcePath = %q", deleted.SourcePath)
	}

	if _, err := repo.GetByID(ctx, c.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("course still present: %v", err)
	}
	var sections, lectures int64
	db.Model(&entity.Section{}).Count(&sections)
	db.Model(&entity.Lecture{}).Count(&lectures)
	if sections != 0 || lectures != 0 {
		t.Errorf("orphans left behind: %d sections, %d lectures", sections, lectures)
	}
}

func TestDeleteMissingCourse(t *testing.T) {
	repo := NewCourseRepository(testDB(t), nil)
	if _, err := repo.Delete(context.Background(), uuid.New()); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
