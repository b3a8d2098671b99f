package search

import (
	"context"
	"net/http"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"
)

func TestClassifyKinds(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
		want       Kind
		retryable  bool
	}{
		{
			name: "quota keyword in message",
			err:  errors.New("you have run out of credits"),
			want: KindQuota,
		},
		{
			name: "billing keyword in message",
			err:  errors.New("billing account suspended"),
			want: KindQuota,
		},
		{
			name:       "quota keyword wins over server status",
			err:        errors.New("usage limit exceeded"),
			statusCode: http.StatusInternalServerError,
			want:       KindQuota,
		},
		{
			name:       "429 status without keyword",
			err:        errors.New("slow down"),
			statusCode: http.StatusTooManyRequests,
			want:       KindQuota,
		},
		{
			name:       "tavily plan limit status",
			err:        errors.New("request rejected"),
			statusCode: 432,
			want:       KindQuota,
		},
		{
			name:       "tavily pay-as-you-go limit status",
			err:        errors.New("request rejected"),
			statusCode: 433,
			want:       KindQuota,
		},
		{
			name:       "gateway timeout status",
			err:        errors.New("bad gateway response"),
			statusCode: http.StatusGatewayTimeout,
			want:       KindTimeout,
			retryable:  true,
		},
		{
			name:      "timeout keyword",
			err:       errors.New("request took too long to complete"),
			want:      KindTimeout,
			retryable: true,
		},
		{
			name:      "deadline exceeded",
			err:       errors.Wrap(context.DeadlineExceeded, "send request"),
			want:      KindTimeout,
			retryable: true,
		},
		{
			name:       "server error status",
			err:        errors.New("internal failure"),
			statusCode: http.StatusInternalServerError,
			want:       KindUpstream,
			retryable:  true,
		},
		{
			name:      "connection refused",
			err:       errors.New("dial tcp 10.0.0.1:443: connection refused"),
			want:      KindTransport,
			retryable: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			classified := Classify(tc.err, tc.statusCode)
			require.Equal(t, tc.want, classified.Kind)
			require.Equal(t, tc.retryable, classified.Retryable)
			require.Equal(t, tc.statusCode, classified.StatusCode)
		})
	}
}

func TestClassifyKeepsExistingTypedError(t *testing.T) {
	original := NewError(KindValidation, "query cannot be blank")
	wrapped := errors.Wrap(original, "validate request")

	classified := Classify(wrapped, http.StatusInternalServerError)
	require.Same(t, original, classified)
}

func TestErrorUnwrapAndIs(t *testing.T) {
	cause := errors.New("socket closed")
	typed := NewError(KindTransport, "request failed")
	typed.Err = cause

	require.ErrorIs(t, typed, cause)
	require.True(t, IsKind(typed, KindTransport))
	require.False(t, IsKind(typed, KindTimeout))

	wrapped := errors.Wrap(typed, "outer")
	extracted, ok := AsError(wrapped)
	require.True(t, ok)
	require.Same(t, typed, extracted)
}

func TestErrorMessageRendering(t *testing.T) {
	require.Equal(t, "boom", NewError(KindUpstream, "boom").Error())
	require.Equal(t, "search error: Timeout", (&Error{Kind: KindTimeout}).Error())
}

func TestWithHintChains(t *testing.T) {
	typed := NewError(KindQuota, "out of credits").WithHint("check billing")
	require.Equal(t, "check billing", typed.Hint)
	require.Equal(t, "out of credits", typed.Error())
}

func TestAsErrorOnNil(t *testing.T) {
	typed, ok := AsError(nil)
	require.False(t, ok)
	require.Nil(t, typed)
}
