package llm

import (
	"strings"

	"github.com/coursedesk/syllabus-tracker/constants"
)

// BuildSyllabusPrompt composes the instruction set sent alongside the PDF.
// The rules are deliberately spelled out field by field: percentage weights
// must come from grading tables verbatim, exam dates exclude routine
// quizzes, and missing optional fields get fixed sentinel strings so the
// storage layer never has to guess.
func BuildSyllabusPrompt() string {
	parts := []string{
		"Analyze this course syllabus PDF and extract the following information in JSON format:",
		"",
		`{
  "name": "Course name/title",
  "term": "Semester/term (e.g., Fall 2024)",
  "description": "Course description",
  "materials": "Required textbooks, supplies, or materials (if none found, use 'No required materials found')",
  "assessment": "Grading breakdown with percentages",
  "policies": "Course policies, attendance rules, academic integrity, etc.",
  "examDates": "Important exam dates (midterms, finals, major quizzes with dates/times) or 'No exam dates provided' if none found",
  "sections": [
    {
      "sectionCode": "Section code (e.g., LEC0101)",
      "instructor": "Instructor name",
      "lectures": [
        {
          "dayOfWeek": "Day (e.g., Monday)",
          "startTime": "Start time (e.g., 2:00 PM)",
          "endTime": "End time (e.g., 3:00 PM)",
          "location": "Room/building (e.g., BA 1190)"
        }
      ]
    }
  ]
}`,
		"",
		"CRITICAL INSTRUCTIONS FOR ASSESSMENT:",
		"- Look carefully for tables, charts, or structured data showing grade breakdowns",
		"- Extract the ACTUAL percentages from grading tables, not just descriptive text",
		"- If you see a table with assessment items and percentages, extract those exact values",
		"- Include specific percentage values (e.g., \"Midterm: 25%, Final Exam: 50%\")",
		"- Look for words like \"weight\", \"percentage\", \"points\", \"marks\" near assessment information",
		"- If there are multiple assessment methods, list them all with their percentages",
		"- The percentage values listed under column headers like \"Total quizzes\" or \"Total final exam\" are the weight for that assessment category; extract the numbers in the table cells, not just the row labels",
		"",
		"CRITICAL INSTRUCTIONS FOR EXAM DATES:",
		"- Look for specific dates and times for major exams (midterms, finals, major quizzes)",
		"- Do NOT include weekly quizzes or regular assignments",
		"- Extract actual dates, times, and locations if available",
		"- Examples: \"Midterm 1: March 15, 2:00-4:00 PM, Room BA 1190\", \"Final Exam: April 20, 9:00 AM-12:00 PM\"",
		"- If no specific exam dates are found, use \"No exam dates provided\"",
		"",
		"INSTRUCTIONS FOR DESCRIPTION AND POLICIES:",
		"- Extract the full course description as provided in the syllabus",
		"- Include all relevant course policies (attendance, late work, academic integrity, participation, etc.)",
		"",
		"INSTRUCTIONS FOR MATERIALS:",
		"- If no required textbooks, supplies, or materials are mentioned, use \"No required materials found\"",
		"- If materials are found, list them clearly",
		"",
		"If any information is not found, use null for that field except for:",
		"- materials: use \"" + constants.NoMaterialsSentinel + "\"",
		"- examDates: use \"" + constants.NoExamDatesSentinel + "\"",
		"Extract ALL sections, instructors, and lecture times if multiple exist.",
		"Return ONLY a single JSON object matching the structure above.",
	}
	return strings.Join(parts, "\n")
}
