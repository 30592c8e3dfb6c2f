package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coursedesk/syllabus-tracker/internal/common"
	"github.com/coursedesk/syllabus-tracker/internal/llm"
)

// generateContent request/response shapes, trimmed to what we use.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

type generationConfig struct {
	ResponseMIMEType string  `json:"response_mime_type,omitempty"`
	Temperature      float32 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractCourse implements llm.DocumentExtractor against the Gemini
// generateContent endpoint, attaching the PDF as inline base64 data and
// forcing a JSON response. One attempt per call; the provider's own size
// limits apply to the payload.
func (c *Client) ExtractCourse(ctx context.Context, doc llm.Document) (llm.ExtractedCourseData, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"mime_type", doc.MIMEType,
		"pdf_bytes", len(doc.Data),
		"filename", doc.Filename,
	)

	body := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: llm.BuildSyllabusPrompt()},
				{InlineData: &inlineData{
					MIMEType: doc.MIMEType,
					Data:     base64.StdEncoding.EncodeToString(doc.Data),
				}},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseMIMEType: "application/json",
			Temperature:      c.cfg.Temperature,
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + c.cfg.Model + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	raw, status, httpErr := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.log)
	if httpErr != nil {
		if isRateLimited(status, raw) {
			c.log.Warn("llm.extract.rate_limited",
				"req_id", rid, "status", status,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.ExtractedCourseData{}, raw, fmt.Errorf("gemini status %d: %w", status, common.ErrRateLimited)
		}
		c.log.Error("llm.extract.http_error",
			"req_id", rid, "status", status, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedCourseData{}, raw, fmt.Errorf("gemini request: %v: %w", httpErr, common.ErrExtractionFailed)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.log.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedCourseData{}, raw, fmt.Errorf("decode gemini response: %v: %w", err, common.ErrMalformedExtraction)
	}
	if gr.Error != nil {
		if isRateLimitSignal(gr.Error.Code, gr.Error.Status, gr.Error.Message) {
			return llm.ExtractedCourseData{}, raw, fmt.Errorf("gemini error %s: %w", gr.Error.Status, common.ErrRateLimited)
		}
		return llm.ExtractedCourseData{}, raw, fmt.Errorf("gemini error %s: %s: %w", gr.Error.Status, gr.Error.Message, common.ErrExtractionFailed)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		c.log.Error("llm.extract.no_candidates",
			"req_id", rid, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedCourseData{}, raw, fmt.Errorf("no candidates in gemini response: %w", common.ErrMalformedExtraction)
	}
	rawContent := []byte(strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text))

	cleaned, dropped, sErr := llm.NormalizeAndSanitizeJSON(rawContent, c.log)
	if sErr != nil {
		c.log.Error("llm.extract.sanitize_failed",
			"req_id", rid, "error", sErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedCourseData{}, rawContent, fmt.Errorf("sanitize: %v: %w", sErr, common.ErrMalformedExtraction)
	}
	if len(dropped) > 0 {
		c.log.Warn("llm.extract.sanitize_applied", "req_id", rid, "dropped", dropped)
	}

	schema := llm.BuildCourseJSONSchema()
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		c.log.Error("llm.extract.schema_validation_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedCourseData{}, cleaned, fmt.Errorf("schema validation: %v: %w", err, common.ErrMalformedExtraction)
	}

	var out llm.ExtractedCourseData
	if err := json.Unmarshal(cleaned, &out); err != nil {
		c.log.Error("llm.extract.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ExtractedCourseData{}, cleaned, fmt.Errorf("unmarshal fields: %v: %w", err, common.ErrMalformedExtraction)
	}

	c.log.Info("llm.extract.ok",
		"req_id", rid,
		"name", strOrNull(out.Name),
		"term", strOrNull(out.Term),
		"sections", len(out.Sections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}

// isRateLimited inspects an HTTP failure for quota signaling. Gemini uses
// 429 / RESOURCE_EXHAUSTED; the body check catches proxies that rewrite the
// status.
func isRateLimited(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	s := strings.ToLower(string(body))
	return strings.Contains(s, "resource_exhausted") || strings.Contains(s, "quota")
}

func isRateLimitSignal(code int, status, message string) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	if strings.EqualFold(status, "RESOURCE_EXHAUSTED") {
		return true
	}
	return strings.Contains(strings.ToLower(message), "quota")
}

func strOrNull(s *string) string {
	if s == nil {
		return "<null>"
	}
	return *s
}
