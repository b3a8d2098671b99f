package search

import (
	"context"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	appLog "github.com/Laisky/tavily-mcp/library/log"
)

const defaultMaxRetries = 2

// Remediation copy attached to terminal orchestrator failures.
const (
	QuotaSuggestion = "Check your Tavily API usage limits and billing status. " +
		"Try using search_depth='basic' to reduce credit consumption."
	QuotaFallbackAction = "Use qna_search for simple questions to save credits"

	ExhaustedSuggestion = "Try simplifying your query or using qna_search for basic questions"
)

// Searcher executes one normalized request against the upstream provider.
// Implementations are responsible for honoring the request's Timeout field.
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// sleepFunc waits for the given duration unless the context ends first.
type sleepFunc func(ctx context.Context, wait time.Duration) error

// OrchestratorOption customises an Orchestrator during construction.
type OrchestratorOption func(*Orchestrator)

// WithLogger overrides the fallback logger used when no contextual logger is available.
func WithLogger(logger logSDK.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxRetries adjusts how many fallback attempts are permitted after the primary try.
func WithMaxRetries(retries int) OrchestratorOption {
	return func(o *Orchestrator) {
		if retries >= 0 {
			o.maxRetries = retries
		}
	}
}

// WithSleep supplies a deterministic wait function, primarily for testing.
func WithSleep(sleep sleepFunc) OrchestratorOption {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// Orchestrator executes search requests through a degrading fallback ladder:
// the primary request, then a reduced-complexity variant, then a minimal
// last-resort probe. Quota failures terminate the ladder immediately since
// retrying only burns more credits. Timeout failures back off exponentially
// before the next rung; every other failure waits a flat second. Rungs run
// strictly in sequence, a later rung only dispatches after the prior one has
// failed.
type Orchestrator struct {
	searcher   Searcher
	maxRetries int
	sleep      sleepFunc
	logger     logSDK.Logger
}

// NewOrchestrator constructs an Orchestrator around the provided searcher.
func NewOrchestrator(searcher Searcher, opts ...OrchestratorOption) (*Orchestrator, error) {
	if searcher == nil {
		return nil, errors.New("orchestrator requires a searcher")
	}

	orchestrator := &Orchestrator{
		searcher:   searcher,
		maxRetries: defaultMaxRetries,
		sleep:      sleepContext,
		logger:     appLog.Logger.Named("orchestrator"),
	}

	for _, opt := range opts {
		opt(orchestrator)
	}

	return orchestrator, nil
}

// Execute walks the fallback ladder until a rung succeeds, a quota error
// terminates it, or every rung is exhausted. The request is normalized in
// place first so the primary rung always dispatches with a resolved timeout.
// A success on a non-primary rung is tagged with the rung name and the error
// that triggered the degradation.
func (o *Orchestrator) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, NewError(KindValidation, "search request is required")
	}
	req.Normalize()

	logger := o.logger
	if ctx != nil {
		if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
			logger = ctxLogger.Named("orchestrator")
		}
	}
	if logger != nil {
		logger = logger.With(zap.String("query", req.Query))
	}

	var lastErr *Error
	attempts := 0

	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		rungReq, rung, err := o.rungRequest(req, attempt)
		if err != nil {
			return nil, errors.Wrap(err, "derive fallback request")
		}
		attempts++

		if logger != nil {
			logger.Debug("dispatching search rung",
				zap.String("rung", rung),
				zap.Int("attempt", attempts),
				zap.Int("timeout_seconds", rungReq.Timeout),
			)
		}

		resp, searchErr := o.searcher.Search(ctx, rungReq)
		if searchErr == nil {
			if attempt > 0 {
				resp.FallbackUsed = rung
				resp.OriginalError = lastErr.Error()
			}
			if logger != nil {
				logger.Info("search succeeded",
					zap.String("rung", rung),
					zap.Int("attempt", attempts),
				)
			}
			return resp, nil
		}

		classified := Classify(searchErr, statusCodeOf(searchErr))
		lastErr = classified

		if logger != nil {
			logger.Warn("search rung failed",
				zap.String("rung", rung),
				zap.Int("attempt", attempts),
				zap.String("kind", string(classified.Kind)),
				zap.Error(searchErr),
			)
		}

		if classified.Kind == KindQuota {
			quota := NewErrorf(KindQuota, "API quota/credit limit reached: %s", classified.Message)
			quota.StatusCode = classified.StatusCode
			quota.Attempts = attempts
			quota.Err = classified
			return nil, quota.WithHint(QuotaSuggestion)
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, "search aborted")
		}

		if attempt < o.maxRetries {
			wait := time.Second
			if classified.Kind == KindTimeout {
				wait = time.Duration(1<<attempt) * time.Second
			}
			if sleepErr := o.sleep(ctx, wait); sleepErr != nil {
				return nil, errors.Wrap(sleepErr, "search aborted")
			}
		}
	}

	exhausted := NewErrorf(lastErr.Kind, "All search attempts failed: %s", lastErr.Message)
	exhausted.StatusCode = lastErr.StatusCode
	exhausted.Attempts = attempts
	exhausted.Err = lastErr
	return nil, exhausted.WithHint(ExhaustedSuggestion)
}

func (o *Orchestrator) rungRequest(primary *Request, attempt int) (*Request, string, error) {
	switch {
	case attempt == 0:
		return primary, RungPrimary, nil
	case attempt == 1:
		reduced, err := ReducedComplexity(primary)
		if err != nil {
			return nil, RungReducedComplexity, err
		}
		return reduced, RungReducedComplexity, nil
	default:
		return Minimal(primary), RungMinimal, nil
	}
}

func statusCodeOf(err error) int {
	if typed, ok := AsError(err); ok {
		return typed.StatusCode
	}
	return 0
}

func sleepContext(ctx context.Context, wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return errors.WithStack(ctx.Err())
	case <-timer.C:
		return nil
	}
}
