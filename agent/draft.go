package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDraft = errors.New("invalid draft")

// Draft is the parsed text-model response. It is never persisted as-is.
type Draft struct {
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Tags            []string `json:"tags"`
	ThumbnailIdeas  []string `json:"thumbnailIdeas"`
	Excerpt         string   `json:"excerpt"`
	MetaDescription string   `json:"metaDescription"`
}

// StripCodeFence removes a surrounding markdown code fence (``` or ```json).
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseDraft strips fences, decodes the JSON object and validates it against
// DraftSchema. Unknown keys are ignored; absent optional keys stay empty.
func ParseDraft(raw string) (Draft, error) {
	body := []byte(StripCodeFence(raw))

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Draft{}, fmt.Errorf("%w: malformed json: %v", ErrInvalidDraft, err)
	}

	var d Draft
	if err := json.Unmarshal(body, &d); err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrInvalidDraft, err)
	}

	for _, name := range DraftSchema.RequiredNames() {
		v, ok := fields[name]
		if !ok || string(v) == "null" {
			return Draft{}, fmt.Errorf("%w: missing required field %q", ErrInvalidDraft, name)
		}
	}
	if strings.TrimSpace(d.Content) == "" {
		return Draft{}, fmt.Errorf("%w: content is empty", ErrInvalidDraft)
	}

	d.Title = strings.TrimSpace(d.Title)
	d.Tags = cleanList(d.Tags)
	d.ThumbnailIdeas = cleanList(d.ThumbnailIdeas)
	return d, nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
