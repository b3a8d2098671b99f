package search

import (
	"context"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

// scriptedSearcher replays one outcome per call and records the requests it saw.
type scriptedSearcher struct {
	responses []*Response
	errs      []error
	requests  []*Request
}

func (s *scriptedSearcher) Search(_ context.Context, req *Request) (*Response, error) {
	call := len(s.requests)
	s.requests = append(s.requests, req)

	if call < len(s.errs) && s.errs[call] != nil {
		return nil, s.errs[call]
	}
	if call < len(s.responses) {
		return s.responses[call], nil
	}
	return nil, errors.Errorf("unscripted call %d", call)
}

func noSleep(t *testing.T) (sleepFunc, *[]time.Duration) {
	t.Helper()

	waits := &[]time.Duration{}
	return func(_ context.Context, wait time.Duration) error {
		*waits = append(*waits, wait)
		return nil
	}, waits
}

func TestOrchestratorPrimarySuccess(t *testing.T) {
	searcher := &scriptedSearcher{
		responses: []*Response{{Query: "q", Results: []ResultItem{{URL: "https://example.com"}}}},
	}
	sleep, waits := noSleep(t)

	orchestrator, err := NewOrchestrator(searcher, WithSleep(sleep))
	require.NoError(t, err)

	resp, err := orchestrator.Execute(context.Background(), &Request{Query: "q"})
	require.NoError(t, err)
	require.Empty(t, resp.FallbackUsed)
	require.Empty(t, resp.OriginalError)
	require.Len(t, searcher.requests, 1)
	require.Empty(t, *waits)

	// Execute normalizes before dispatch.
	require.Equal(t, DepthBasic, searcher.requests[0].SearchDepth)
	require.Equal(t, 60, searcher.requests[0].Timeout)
}

func TestOrchestratorTagsReducedComplexitySuccess(t *testing.T) {
	searcher := &scriptedSearcher{
		errs:      []error{errors.New("connection reset by peer")},
		responses: []*Response{nil, {Query: "q", Results: []ResultItem{}}},
	}
	sleep, waits := noSleep(t)

	orchestrator, err := NewOrchestrator(searcher, WithSleep(sleep))
	require.NoError(t, err)

	primary := &Request{Query: "q", SearchDepth: DepthAdvanced, MaxResults: 15}
	resp, err := orchestrator.Execute(context.Background(), primary)
	require.NoError(t, err)
	require.Equal(t, RungReducedComplexity, resp.FallbackUsed)
	require.Contains(t, resp.OriginalError, "connection reset by peer")
	require.Len(t, searcher.requests, 2)
	require.Equal(t, []time.Duration{time.Second}, *waits)

	// The second rung carries the downgraded request.
	require.Equal(t, DepthBasic, searcher.requests[1].SearchDepth)
	require.Equal(t, 5, searcher.requests[1].MaxResults)
}

func TestOrchestratorMinimalSuccessAfterTwoFailures(t *testing.T) {
	searcher := &scriptedSearcher{
		errs:      []error{errors.New("boom"), errors.New("still broken")},
		responses: []*Response{nil, nil, {Query: "q", Results: []ResultItem{}}},
	}
	sleep, waits := noSleep(t)

	orchestrator, err := NewOrchestrator(searcher, WithSleep(sleep))
	require.NoError(t, err)

	resp, err := orchestrator.Execute(context.Background(), &Request{Query: "q"})
	require.NoError(t, err)
	require.Equal(t, RungMinimal, resp.FallbackUsed)
	// The tag names the most recent prior failure, not the first.
	require.Equal(t, "still broken", resp.OriginalError)
	require.Len(t, searcher.requests, 3)
	require.Equal(t, []time.Duration{time.Second, time.Second}, *waits)

	require.Equal(t, 3, searcher.requests[2].MaxResults)
	require.Equal(t, MinimalTimeoutSeconds, searcher.requests[2].Timeout)
}

func TestOrchestratorQuotaStopsLadder(t *testing.T) {
	searcher := &scriptedSearcher{
		errs: []error{errors.New("you have exceeded your credit quota")},
	}
	sleep, waits := noSleep(t)

	orchestrator, err := NewOrchestrator(searcher, WithSleep(sleep))
	require.NoError(t, err)

	resp, err := orchestrator.Execute(context.Background(), &Request{Query: "q"})
	require.Error(t, err)
	require.Nil(t, resp)
	require.Len(t, searcher.requests, 1)
	require.Empty(t, *waits)

	typed, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindQuota, typed.Kind)
	require.Equal(t, 1, typed.Attempts)
	require.Contains(t, typed.Message, "API quota/credit limit reached")
	require.Equal(t, QuotaSuggestion, typed.Hint)
}

func TestOrchestratorExhaustedReportsLastError(t *testing.T) {
	searcher := &scriptedSearcher{
		errs: []error{
			errors.New("first failure"),
			errors.New("second failure"),
			errors.New("request took too long"),
		},
	}
	sleep, waits := noSleep(t)

	orchestrator, err := NewOrchestrator(searcher, WithSleep(sleep))
	require.NoError(t, err)

	resp, err := orchestrator.Execute(context.Background(), &Request{Query: "q"})
	require.Error(t, err)
	require.Nil(t, resp)
	require.Len(t, searcher.requests, 3)
	require.Equal(t, []time.Duration{time.Second, time.Second}, *waits)

	typed, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindTimeout, typed.Kind)
	require.Equal(t, 3, typed.Attempts)
	require.Equal(t, "All search attempts failed: request took too long", typed.Message)
	require.Equal(t, ExhaustedSuggestion, typed.Hint)
}

func TestOrchestratorTimeoutBackoffDoubles(t *testing.T) {
	searcher := &scriptedSearcher{
		errs: []error{
			errors.New("request timeout"),
			errors.New("request timeout"),
			errors.New("request timeout"),
		},
	}
	sleep, waits := noSleep(t)

	orchestrator, err := NewOrchestrator(searcher, WithSleep(sleep))
	require.NoError(t, err)

	_, err = orchestrator.Execute(context.Background(), &Request{Query: "q"})
	require.Error(t, err)
	require.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestOrchestratorAbortsWhenContextCancelled(t *testing.T) {
	searcher := &scriptedSearcher{
		errs: []error{errors.New("boom")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	orchestrator, err := NewOrchestrator(searcher, WithSleep(func(sleepCtx context.Context, _ time.Duration) error {
		cancel()
		return sleepCtx.Err()
	}))
	require.NoError(t, err)

	resp, err := orchestrator.Execute(ctx, &Request{Query: "q"})
	require.Error(t, err)
	require.Nil(t, resp)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, searcher.requests, 1)
}

func TestOrchestratorRejectsNilRequest(t *testing.T) {
	orchestrator, err := NewOrchestrator(&scriptedSearcher{})
	require.NoError(t, err)

	resp, err := orchestrator.Execute(context.Background(), nil)
	require.Error(t, err)
	require.Nil(t, resp)
	require.True(t, IsKind(err, KindValidation))
}

func TestNewOrchestratorRequiresSearcher(t *testing.T) {
	orchestrator, err := NewOrchestrator(nil)
	require.Error(t, err)
	require.Nil(t, orchestrator)
}

func TestSleepContextHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleepContext(ctx, time.Minute)
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepContextReturnsAfterWait(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))
}
