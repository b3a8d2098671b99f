package search

import (
	errors "github.com/Laisky/errors/v2"
	"github.com/jinzhu/copier"
)

// Ladder rung identifiers, surfaced to callers through the fallback tag on
// degraded successes.
const (
	RungPrimary           = "primary"
	RungReducedComplexity = "reduced_complexity"
	RungMinimal           = "minimal_search"
)

// ReducedComplexity derives the second ladder rung from a failed primary
// request: basic depth, auto-parameters off, at most five results, no chunk
// splitting, and downgraded content options. The query, topic, and filters
// survive so the degraded call still answers the caller's question.
func ReducedComplexity(req *Request) (*Request, error) {
	reduced := new(Request)
	if err := copier.Copy(reduced, req); err != nil {
		return nil, errors.Wrap(err, "copy request")
	}

	reduced.SearchDepth = DepthBasic
	reduced.AutoParameters = false
	if reduced.MaxResults > 5 {
		reduced.MaxResults = 5
	}
	reduced.ChunksPerSource = nil
	if reduced.IncludeRawContent.Truthy() {
		reduced.IncludeRawContent = OptionFlag{}
	}
	if reduced.IncludeAnswer.Mode == AnswerAdvanced {
		reduced.IncludeAnswer = FlagMode(AnswerBasic)
	}

	return reduced, nil
}

// Minimal derives the last-resort rung preserving only the query, with a
// short fixed deadline.
func Minimal(req *Request) *Request {
	return &Request{
		Query:          req.Query,
		SearchDepth:    DepthBasic,
		Topic:          TopicGeneral,
		MaxResults:     3,
		IncludeDomains: []string{},
		ExcludeDomains: []string{},
		Timeout:        MinimalTimeoutSeconds,
	}
}
