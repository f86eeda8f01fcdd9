package tools

import "strings"

// ContentTypeText is the only content type tools produce.
const ContentTypeText = "text"

// Content is one item of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the outcome of a tool call: either content (success) or an
// error message with IsError set. It is serialised as-is on the MCP wire.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// TextResult wraps text as a successful single-item result.
func TextResult(text string) *Result {
	return &Result{Content: []Content{{Type: ContentTypeText, Text: text}}}
}

// ErrorResult wraps text as a failed single-item result.
func ErrorResult(text string) *Result {
	return &Result{Content: []Content{{Type: ContentTypeText, Text: text}}, IsError: true}
}

// Text concatenates all text content items.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		if c.Type == ContentTypeText {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
