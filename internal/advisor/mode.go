package advisor

import (
	"context"
	"net/http"
	"time"
)

// ConnectivityProbe answers whether the generative provider is reachable.
type ConnectivityProbe interface {
	Online(ctx context.Context) bool
}

// HTTPProbe checks reachability with a short HEAD request against the
// provider base URL.
type HTTPProbe struct {
	URL    string
	Client *http.Client
}

// NewHTTPProbe constructs a probe with a 2 second budget.
func NewHTTPProbe(url string) *HTTPProbe {
	return &HTTPProbe{
		URL:    url,
		Client: &http.Client{Timeout: 2 * time.Second},
	}
}

// Online reports whether the provider endpoint answered at all. Any HTTP
// status counts as reachable; only transport errors mean offline.
func (p *HTTPProbe) Online(ctx context.Context) bool {
	if p.URL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL, nil)
	if err != nil {
		return false
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// ModeSelector resolves the effective inference mode for a request.
type ModeSelector struct {
	probe ConnectivityProbe
}

// NewModeSelector constructs a ModeSelector.
func NewModeSelector(probe ConnectivityProbe) *ModeSelector {
	return &ModeSelector{probe: probe}
}

// Select honors an explicit mode and resolves auto via the connectivity
// probe: reachable provider means standard, otherwise offline. Without a
// probe the default is standard.
func (s *ModeSelector) Select(ctx context.Context, requested string) string {
	switch requested {
	case ModeStandard, ModeLite, ModeOffline:
		return requested
	}
	if s.probe == nil || s.probe.Online(ctx) {
		return ModeStandard
	}
	return ModeOffline
}
