package refine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/variantlab/internal/judge"
)

type stubClient struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
	model     string
}

func (s *stubClient) Query(ctx context.Context, text, model string, opts *judge.QueryOptions) (string, error) {
	s.prompts = append(s.prompts, text)
	s.model = model
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func (s *stubClient) Close() error { return nil }

func fastRetry(attempts int) judge.RetryConfig {
	return judge.RetryConfig{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
}

func TestRefine_FormatsPromptAndTrims(t *testing.T) {
	client := &stubClient{responses: []string{"  revised passage text \n"}}
	r := NewLLMRefiner(client, "gemini-2.5-pro", fastRetry(1))

	out, err := r.Refine(context.Background(), "original text", "the middle section wanders")
	require.NoError(t, err)

	assert.Equal(t, "revised passage text", out)
	assert.Equal(t, "gemini-2.5-pro", client.model)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "original text")
	assert.Contains(t, client.prompts[0], "the middle section wanders")
}

func TestRefine_RetriesTransientErrors(t *testing.T) {
	client := &stubClient{
		errs:      []error{&judge.TransientError{Provider: "gemini", Message: "overloaded"}},
		responses: []string{"", "a longer revised passage"},
	}
	r := NewLLMRefiner(client, "m", fastRetry(3))

	out, err := r.Refine(context.Background(), "text", "rationale")
	require.NoError(t, err)
	assert.Equal(t, "a longer revised passage", out)
	assert.Equal(t, 2, client.calls)
}

func TestRefine_PermanentErrorStopsImmediately(t *testing.T) {
	client := &stubClient{
		errs: []error{
			&judge.PermanentError{Provider: "gemini", Message: "invalid key"},
			&judge.PermanentError{Provider: "gemini", Message: "invalid key"},
			&judge.PermanentError{Provider: "gemini", Message: "invalid key"},
		},
		responses: []string{""},
	}
	r := NewLLMRefiner(client, "m", fastRetry(3))

	_, err := r.Refine(context.Background(), "text", "rationale")
	require.Error(t, err)
	assert.Equal(t, 1, client.calls)
}

func TestRefine_ExhaustionPropagatesError(t *testing.T) {
	client := &stubClient{
		errs: []error{
			&judge.TransientError{Provider: "gemini", Message: "overloaded"},
			&judge.TransientError{Provider: "gemini", Message: "overloaded"},
		},
		responses: []string{""},
	}
	r := NewLLMRefiner(client, "m", fastRetry(2))

	_, err := r.Refine(context.Background(), "text", "rationale")
	assert.Error(t, err)
	assert.Equal(t, 2, client.calls)
}
