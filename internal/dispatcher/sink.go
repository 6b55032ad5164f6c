package dispatcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// Sink receives membership-change notifications.
type Sink interface {
	Name() string
	Ready() bool
	Acquire() bool
	Notify(ctx context.Context, payload []byte) error
}

// HTTPSink POSTs notification payloads to a configured endpoint, guarded by
// a micro circuit breaker.
type HTTPSink struct {
	name    string
	baseURL string
	path    string
	client  *http.Client
	br      *MicroBreaker
}

func NewHTTPSink(name, baseURL, path string, timeoutMs, failThreshold, openForMs int) *HTTPSink {
	if timeoutMs <= 0 {
		timeoutMs = 3000
	}

	if failThreshold <= 0 {
		failThreshold = 3
	}

	if openForMs <= 0 {
		openForMs = 15000
	}

	return &HTTPSink{
		name:    name,
		baseURL: baseURL,
		path:    path,
		client:  &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
		br:      NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (s *HTTPSink) Name() string  { return s.name }
func (s *HTTPSink) Ready() bool   { return s.br.Ready() }
func (s *HTTPSink) Acquire() bool { return s.br.TryAcquire() }

func (s *HTTPSink) Notify(ctx context.Context, payload []byte) error {
	if err := s.post(ctx, payload); err != nil {
		s.br.OnFailure()
		return err
	}

	s.br.OnSuccess()

	return nil
}

func (s *HTTPSink) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+s.path, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}

	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return fmt.Errorf("sink=%s status=%d", s.name, res.StatusCode)
	}

	return nil
}
