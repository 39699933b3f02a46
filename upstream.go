package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrUpstreamStatus = errors.New("unexpected upstream status")

// Upstream is the origin serving the HTML template.
type Upstream struct {
	URL    string
	Client *http.Client
}

func NewUpstream(url string, timeout time.Duration) *Upstream {
	return &Upstream{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch requests the template. The caller closes the returned body.
func (u *Upstream) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating upstream request: %w", err)
	}

	req.Header.Set("User-Agent", "linktree/"+version)
	req.Header.Set("Accept", "text/html")
	// The rewriter needs the body uncompressed.
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching upstream: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, resp.Status)
	}

	return resp.Body, nil
}
