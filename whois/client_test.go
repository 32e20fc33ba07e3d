package whois

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPResolverExtractsResponse(t *testing.T) {
	var gotPath, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(sampleRaw))
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, 2*time.Second)
	result, err := r.Resolve(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/example.com" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotUA != "Mozilla/5.0 (WHOIS API Service)" {
		t.Errorf("user agent = %q", gotUA)
	}
	if result.Domain != "example.com" || !result.Complete() {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPResolverUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, 2*time.Second)
	_, err := r.Resolve(context.Background(), "example.com")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", upstream.Status)
	}
}

func TestHTTPResolverTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(3 * time.Second):
		}
	}))
	defer srv.Close()

	r := NewHTTPResolver(srv.URL, 50*time.Millisecond)
	_, err := r.Resolve(context.Background(), "example.com")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

type stubResolver struct {
	results map[string]*Result
	err     error
	calls   int
}

func (s *stubResolver) Resolve(_ context.Context, domain string) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if r, ok := s.results[domain]; ok {
		return r, nil
	}
	return &Result{}, nil
}

func TestChainResolverFirstCompleteWins(t *testing.T) {
	incomplete := &stubResolver{results: map[string]*Result{}}
	complete := &stubResolver{results: map[string]*Result{
		"example.com": {Domain: "example.com", CreationDate: "2020-01-01", ExpiryDate: "2030-01-01"},
	}}
	chain := &ChainResolver{Resolvers: []Resolver{incomplete, complete}}

	result, err := chain.Resolve(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Complete() {
		t.Fatalf("expected complete result, got %+v", result)
	}
	if incomplete.calls != 1 || complete.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", incomplete.calls, complete.calls)
	}
}

func TestChainResolverShortCircuits(t *testing.T) {
	first := &stubResolver{results: map[string]*Result{
		"example.com": {Domain: "example.com", CreationDate: "2020-01-01", ExpiryDate: "2030-01-01"},
	}}
	second := &stubResolver{}
	chain := &ChainResolver{Resolvers: []Resolver{first, second}}

	if _, err := chain.Resolve(context.Background(), "example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.calls != 0 {
		t.Errorf("second resolver called %d times, want 0", second.calls)
	}
}

type blockingResolver struct{}

func (blockingResolver) Resolve(ctx context.Context, _ string) (*Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestTimeoutResolverBoundsUpstream(t *testing.T) {
	r := TimeoutResolver{Upstream: blockingResolver{}, Timeout: 50 * time.Millisecond}

	start := time.Now()
	_, err := r.Resolve(context.Background(), "example.com")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("resolve took %v, upstream not bounded", elapsed)
	}
}

func TestTimeoutResolverPassesThroughSuccess(t *testing.T) {
	upstream := &stubResolver{results: map[string]*Result{
		"example.com": {Domain: "example.com", CreationDate: "2020-01-01", ExpiryDate: "2030-01-01"},
	}}
	r := TimeoutResolver{Upstream: upstream, Timeout: time.Second}

	result, err := r.Resolve(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Complete() {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestChainResolverAllFail(t *testing.T) {
	boom := errors.New("boom")
	chain := &ChainResolver{Resolvers: []Resolver{&stubResolver{err: boom}}}
	if _, err := chain.Resolve(context.Background(), "example.com"); !errors.Is(err, boom) {
		t.Fatalf("expected last error propagated, got %v", err)
	}
}
