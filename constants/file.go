package constants

import "strings"

// MIMEPDF is the only content type accepted for syllabus uploads.
const MIMEPDF = "application/pdf"

// UploadField is the multipart form field carrying the syllabus file.
const UploadField = "pdf"

// TBD is the fallback literal for section and lecture fields the
// extraction could not fill.
const TBD = "TBD"

// Sentinel strings the extraction model is instructed to return for
// optional fields with no content in the document.
const (
	NoMaterialsSentinel = "No required materials found"
	NoExamDatesSentinel = "No exam dates provided"
)

// AllowedExtensions holds the allowed file extensions for syllabus uploads.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without a leading dot) is an
// accepted upload extension.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
