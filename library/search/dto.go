package search

import (
	"bytes"
	"encoding/json"

	errors "github.com/Laisky/errors/v2"
)

// ResultItem captures a single ranked entry returned by the search provider.
type ResultItem struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	RawContent    string  `json:"raw_content,omitempty"`
	PublishedDate string  `json:"published_date,omitempty"`
	Favicon       string  `json:"favicon,omitempty"`
}

// Image is one related image. The provider encodes images either as bare URL
// strings or, when descriptions were requested, as objects carrying an
// AI-generated description; both forms round-trip unchanged.
type Image struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts both the bare-string and the object encoding.
func (i *Image) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return errors.Wrap(json.Unmarshal(trimmed, &i.URL), "decode image url")
	}

	type plain Image
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return errors.Wrap(err, "decode image")
	}
	*i = Image(decoded)
	return nil
}

// MarshalJSON re-emits the same encoding the provider used.
func (i Image) MarshalJSON() ([]byte, error) {
	if i.Description == "" {
		return json.Marshal(i.URL)
	}
	type plain Image
	return json.Marshal(plain(i))
}

// Response is the provider's successful search payload. A degraded success
// carries the fallback tags so callers can distinguish a full result from a
// reduced one.
type Response struct {
	Query             string         `json:"query"`
	Answer            string         `json:"answer,omitempty"`
	FollowUpQuestions []string       `json:"follow_up_questions,omitempty"`
	Images            []Image        `json:"images"`
	Results           []ResultItem   `json:"results"`
	AutoParameters    map[string]any `json:"auto_parameters,omitempty"`
	ResponseTime      float64        `json:"response_time"`
	RequestID         string         `json:"request_id,omitempty"`

	FallbackUsed  string `json:"_fallback_used,omitempty"`
	OriginalError string `json:"_original_error,omitempty"`
}
