package llm

import "context"

// ExtractedCourseData is the normalized shape we want from the model.
// Scalar fields are pointers because the model is instructed to return null
// for information the document does not contain.
type ExtractedCourseData struct {
	Name        *string       `json:"name"`
	Term        *string       `json:"term"`
	Description *string       `json:"description"`
	Materials   *string       `json:"materials"`  // "No required materials found" if none
	Assessment  *string       `json:"assessment"` // grading breakdown, verbatim percentages
	Policies    *string       `json:"policies"`
	ExamDates   *string       `json:"examDates"` // "No exam dates provided" if none
	Sections    []SectionData `json:"sections"`
}

type SectionData struct {
	SectionCode string        `json:"sectionCode"`
	Instructor  string        `json:"instructor"`
	Lectures    []LectureData `json:"lectures"`
}

type LectureData struct {
	DayOfWeek string `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Location  string `json:"location"`
}

// Document is the binary payload handed to the extractor. MIMEType must be
// confirmed application/pdf before the adapter is invoked; size limits are
// the provider's own concern and are passed through.
type Document struct {
	Data     []byte
	MIMEType string
	Filename string
}

// DocumentExtractor is the interface the ingestion pipeline depends on.
// Implementations make exactly one attempt; retry is a user-initiated
// re-upload.
type DocumentExtractor interface {
	ExtractCourse(ctx context.Context, doc Document) (ExtractedCourseData, []byte /*rawJSON*/, error)
}
