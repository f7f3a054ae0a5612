package perception

import (
	"context"
	"sync"
)

// scriptedClient replays canned replies and errors in order.
type scriptedClient struct {
	model   string
	mu      sync.Mutex
	replies []string
	errs    []error
	calls   int
	prompts []string
}

func (s *scriptedClient) Model() string { return s.model }

func (s *scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.CompleteWithSystem(ctx, "", prompt)
}

func (s *scriptedClient) CompleteWithSystem(_ context.Context, _, userPrompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	s.prompts = append(s.prompts, userPrompt)
	var (
		reply string
		err   error
	)
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return reply, err
}

func (s *scriptedClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
