package httpclient

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"testing"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type fakeRT struct {
	calls int
	errs  []error
}

func (f *fakeRT) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= len(f.errs) && f.errs[f.calls-1] != nil {
		return nil, f.errs[f.calls-1]
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
}

func newGet(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "https://api.example.org/getUpdates", nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return req
}

func TestRetryTransportRecoversFromTimeout(t *testing.T) {
	rt := &fakeRT{errs: []error{timeoutErr{}}}
	tr := &retryTransport{base: rt, maxRetries: 3}

	resp, err := tr.RoundTrip(newGet(t))
	if err != nil {
		t.Fatalf("RoundTrip: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if rt.calls != 2 {
		t.Errorf("calls = %d, want 2", rt.calls)
	}
}

func TestRetryTransportStopsOnPermanentError(t *testing.T) {
	rt := &fakeRT{errs: []error{errors.New("boom")}}
	tr := &retryTransport{base: rt, maxRetries: 3}

	if _, err := tr.RoundTrip(newGet(t)); err == nil {
		t.Fatal("expected error")
	}
	if rt.calls != 1 {
		t.Errorf("calls = %d, want 1", rt.calls)
	}
}

func TestRetryTransportGivesUpAfterMaxRetries(t *testing.T) {
	rt := &fakeRT{errs: []error{timeoutErr{}, timeoutErr{}, timeoutErr{}, timeoutErr{}}}
	tr := &retryTransport{base: rt, maxRetries: 3}

	if _, err := tr.RoundTrip(newGet(t)); err == nil {
		t.Fatal("expected error")
	}
	if rt.calls != 4 {
		t.Errorf("calls = %d, want 4", rt.calls)
	}
}

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"timeout", timeoutErr{}, true},
		{"dial op", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"url timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, true},
		{"url permanent", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("boom")}, false},
	}
	for _, tc := range cases {
		if got := shouldRetry(tc.err); got != tc.want {
			t.Errorf("%s: shouldRetry = %v, want %v", tc.name, got, tc.want)
		}
	}
}
