package search

import (
	"strings"

	errors "github.com/Laisky/errors/v2"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const dateLayout = "2006-01-02"

// ValidationHint accompanies every validation failure so callers know where
// to look for the offending parameter.
const ValidationHint = "Check the parameter requirements in the error message above"

// Validate rejects semantically invalid parameter combinations before any
// upstream call is made. A violation produces a ValidationError whose message
// names the offending parameter, the supplied value, the valid range, and a
// remediation hint. Validation has no side effects and must run before
// Normalize so cross-field rules see the caller's literal input.
func (r *Request) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Query, validation.By(requireText)),
		validation.Field(&r.SearchDepth, validation.By(checkSearchDepth)),
		validation.Field(&r.Topic, validation.By(checkTopic)),
		validation.Field(&r.MaxResults, validation.By(checkMaxResults)),
		validation.Field(&r.ChunksPerSource, validation.By(r.checkChunksPerSource)),
		validation.Field(&r.TimeRange,
			validation.In("day", "week", "month", "year", "d", "w", "m", "y").
				Error("must be one of day, week, month, year, d, w, m, y")),
		validation.Field(&r.StartDate, validation.Date(dateLayout).Error("must use YYYY-MM-DD format")),
		validation.Field(&r.EndDate, validation.Date(dateLayout).Error("must use YYYY-MM-DD format")),
		validation.Field(&r.Country, validation.By(r.checkCountry)),
		validation.Field(&r.IncludeAnswer, validation.By(checkAnswerFlag)),
		validation.Field(&r.IncludeRawContent, validation.By(checkRawContentFlag)),
	)
	if err == nil {
		return nil
	}

	typed := NewErrorf(KindValidation, "%s", err.Error())
	typed.Err = err
	return typed.WithHint(ValidationHint)
}

func requireText(value interface{}) error {
	text, _ := value.(string)
	if strings.TrimSpace(text) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

func checkSearchDepth(value interface{}) error {
	depth, _ := value.(string)
	switch depth {
	case "", DepthBasic, DepthAdvanced:
		return nil
	}
	return errors.Errorf("must be 'basic' or 'advanced', got '%s'", depth)
}

func checkTopic(value interface{}) error {
	topic, _ := value.(string)
	switch topic {
	case "", TopicGeneral, TopicNews, TopicFinance, TopicHealth, TopicScientific, TopicTravel:
		return nil
	}
	return errors.Errorf("must be one of general, news, finance, health, scientific, travel; got '%s'", topic)
}

func checkMaxResults(value interface{}) error {
	count, _ := value.(int)
	if count < 0 || count > 20 {
		return errors.Errorf(
			"must be between 0 and 20, got %d. Use 5-10 for most searches, 15-20 for comprehensive research.",
			count)
	}
	return nil
}

func (r *Request) checkChunksPerSource(value interface{}) error {
	chunks, ok := value.(*int)
	if !ok || chunks == nil {
		return nil
	}

	if r.SearchDepth != DepthAdvanced {
		return errors.Errorf(
			"only available with search_depth='advanced', got search_depth='%s'. "+
				"Either set search_depth='advanced' or remove chunks_per_source parameter.",
			r.SearchDepth)
	}
	if *chunks < 1 || *chunks > 3 {
		return errors.Errorf(
			"must be between 1 and 3, got %d. Use 1 for brief snippets, 3 for detailed content extraction.",
			*chunks)
	}
	return nil
}

func (r *Request) checkCountry(value interface{}) error {
	country, _ := value.(string)
	if country == "" {
		return nil
	}

	if r.Topic != TopicGeneral {
		return errors.Errorf(
			"only available with topic='general', got topic='%s'. "+
				"Use topic='general' for country-specific searches, or remove country parameter.",
			r.Topic)
	}
	return nil
}

func checkAnswerFlag(value interface{}) error {
	flag, _ := value.(OptionFlag)
	switch flag.Mode {
	case "", AnswerBasic, AnswerAdvanced:
		return nil
	}
	return errors.Errorf("must be a boolean or one of 'basic', 'advanced', got '%s'", flag.Mode)
}

func checkRawContentFlag(value interface{}) error {
	flag, _ := value.(OptionFlag)
	switch flag.Mode {
	case "", RawContentMarkdown, RawContentText:
		return nil
	}
	return errors.Errorf("must be a boolean or one of 'markdown', 'text', got '%s'", flag.Mode)
}
