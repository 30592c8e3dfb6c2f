package constants

// CourseStatus is the canonical status for rows in courses.
type CourseStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending  CourseStatus = "pending"  // placeholder created, extraction in flight
	StatusComplete CourseStatus = "complete" // extraction finished, fields populated
	// StatusFailed is transient: a failed extraction is compensated by
	// deleting the pending row before the response is written, so this
	// value is surfaced in responses but never stored.
	StatusFailed CourseStatus = "failed"
)

func (s CourseStatus) String() string { return string(s) }
