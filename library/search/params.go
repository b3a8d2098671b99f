package search

import (
	"encoding/json"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"

	TopicGeneral    = "general"
	TopicNews       = "news"
	TopicFinance    = "finance"
	TopicHealth     = "health"
	TopicScientific = "scientific"
	TopicTravel     = "travel"

	AnswerBasic    = "basic"
	AnswerAdvanced = "advanced"

	RawContentMarkdown = "markdown"
	RawContentText     = "text"
)

// OptionFlag models the upstream bool-or-mode union used by the answer and
// raw-content options. A zero flag marshals as false; a flag with a mode
// marshals as the bare mode string.
type OptionFlag struct {
	Enabled bool
	Mode    string
}

// FlagEnabled returns a plain boolean option flag.
func FlagEnabled(enabled bool) OptionFlag {
	return OptionFlag{Enabled: enabled}
}

// FlagMode returns a mode-valued option flag.
func FlagMode(mode string) OptionFlag {
	return OptionFlag{Mode: mode}
}

// Truthy reports whether the option requests any output at all.
func (f OptionFlag) Truthy() bool {
	return f.Enabled || f.Mode != ""
}

// MarshalJSON renders the flag as either a boolean or a mode string.
func (f OptionFlag) MarshalJSON() ([]byte, error) {
	if f.Mode != "" {
		return json.Marshal(f.Mode)
	}
	return json.Marshal(f.Enabled)
}

// UnmarshalJSON accepts both boolean and string encodings.
func (f *OptionFlag) UnmarshalJSON(data []byte) error {
	var enabled bool
	if err := json.Unmarshal(data, &enabled); err == nil {
		f.Enabled = enabled
		f.Mode = ""
		return nil
	}

	var mode string
	if err := json.Unmarshal(data, &mode); err != nil {
		return errors.Errorf("option flag must be a boolean or a string, got %s", string(data))
	}
	f.Enabled = false
	f.Mode = mode
	return nil
}

// Request is the canonical shape of a validated, normalized outbound search.
// Optional scalar fields marshal only when set; the domain filter lists always
// marshal, as empty arrays when unset, because the upstream API distinguishes
// absent from explicitly empty. Timeout is a client-side deadline in seconds
// and never reaches the wire.
type Request struct {
	Query                    string     `json:"query"`
	SearchDepth              string     `json:"search_depth"`
	Topic                    string     `json:"topic"`
	AutoParameters           bool       `json:"auto_parameters"`
	MaxResults               int        `json:"max_results"`
	Days                     *int       `json:"days,omitempty"`
	TimeRange                string     `json:"time_range,omitempty"`
	StartDate                string     `json:"start_date,omitempty"`
	EndDate                  string     `json:"end_date,omitempty"`
	ChunksPerSource          *int       `json:"chunks_per_source,omitempty"`
	IncludeImages            bool       `json:"include_images"`
	IncludeImageDescriptions bool       `json:"include_image_descriptions"`
	IncludeAnswer            OptionFlag `json:"include_answer"`
	IncludeRawContent        OptionFlag `json:"include_raw_content"`
	IncludeFavicon           bool       `json:"include_favicon"`
	IncludeDomains           []string   `json:"include_domains"`
	ExcludeDomains           []string   `json:"exclude_domains"`
	Country                  string     `json:"country,omitempty"`

	Timeout int `json:"-"`
}

// Normalize applies defaulting and cross-field corrections in place, resolving
// the request to the exact shape dispatched upstream. An explicit start/end
// date pair naming the same day collapses to a one-day relative window. The
// timeout is estimated from request complexity when the caller supplied none.
func (r *Request) Normalize() {
	if strings.TrimSpace(r.SearchDepth) == "" {
		r.SearchDepth = DepthBasic
	}
	if strings.TrimSpace(r.Topic) == "" {
		r.Topic = TopicGeneral
	}

	if r.StartDate != "" && r.EndDate != "" && r.StartDate == r.EndDate {
		r.StartDate = ""
		r.EndDate = ""
		oneDay := 1
		r.Days = &oneDay
	}

	if r.IncludeDomains == nil {
		r.IncludeDomains = []string{}
	}
	if r.ExcludeDomains == nil {
		r.ExcludeDomains = []string{}
	}

	if r.Timeout <= 0 {
		r.Timeout = EstimateTimeout(r.SearchDepth, r.IncludeRawContent.Truthy(), r.MaxResults, r.AutoParameters)
	}
}
