package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursedesk/syllabus-tracker/constants"
)

// Course is one syllabus upload. The extracted text fields stay nil while
// status is pending and are populated in a single finalize step; a course
// that failed extraction is deleted, never stored.
type Course struct {
	ID          uuid.UUID               `gorm:"type:uuid;primaryKey"                          json:"id"`
	Name        *string                 `json:"name"`
	Term        *string                 `json:"term"`
	Description *string                 `json:"description"`
	Materials   *string                 `json:"materials"`
	Assessment  *string                 `json:"assessment"`
	Policies    *string                 `json:"policies"`
	ExamDates   *string                 `json:"examDates"`
	SourcePath  string                  `gorm:"not null"                                      json:"sourcePath"`
	Status      constants.CourseStatus  `gorm:"type:varchar(16);not null;default:'pending'"   json:"status"`
	Archived    bool                    `gorm:"not null;default:false"                        json:"archived"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`

	Sections []Section `gorm:"constraint:OnDelete:CASCADE"                   json:"sections"`
}

func (Course) TableName() string { return "courses" }

func (c *Course) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Section is one registered offering of a course (lecture/tutorial group).
// sectionCode is free-form and may carry a category prefix (e.g. LEC0101).
type Section struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index"  json:"courseId"`
	SectionCode string    `gorm:"not null"                  json:"sectionCode"`
	Instructor  string    `gorm:"not null"                  json:"instructor"`

	Lectures []Lecture `gorm:"constraint:OnDelete:CASCADE"  json:"lectures"`
}

func (Section) TableName() string { return "sections" }

func (s *Section) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Lecture is one scheduled meeting time for a section. All fields are free
// text since syllabi are too inconsistent to parse into time types.
type Lecture struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"      json:"id"`
	SectionID uuid.UUID `gorm:"type:uuid;not null;index"  json:"sectionId"`
	DayOfWeek string    `gorm:"not null"                  json:"dayOfWeek"`
	StartTime string    `gorm:"not null"                  json:"startTime"`
	EndTime   string    `gorm:"not null"                  json:"endTime"`
	Location  string    `gorm:"not null"                  json:"location"`
}

func (Lecture) TableName() string { return "lectures" }

func (l *Lecture) BeforeCreate(_ *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
