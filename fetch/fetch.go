package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/time/rate"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBodySize caps downloaded bodies at 10 MB.
const maxBodySize = 10 * 1024 * 1024

// ErrTooManyRedirects is returned when a request exceeds the redirect cap.
var ErrTooManyRedirects = errors.New("fetch: too many redirects")

// Client performs plain HTTP requests with a Chrome TLS fingerprint (utls)
// and a per-host politeness limiter. It is safe for concurrent use.
type Client struct {
	hc *http.Client

	limiterRate  rate.Limit
	limiterBurst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient creates a Client that follows at most maxRedirects redirects
// and sustains at most perHostRate requests per second per host.
func NewClient(maxRedirects int, perHostRate float64, burst int) *Client {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}

	return &Client{
		hc: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return ErrTooManyRedirects
				}
				return nil
			},
		},
		limiterRate:  rate.Limit(perHostRate),
		limiterBurst: burst,
		limiters:     make(map[string]*rate.Limiter),
	}
}

// Head issues a HEAD request, following redirects, and returns the final
// post-redirect URL and the response status.
func (c *Client) Head(ctx context.Context, targetURL string) (finalURL string, status int, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("fetch: build request: %w", err)
	}
	setChromeHeaders(req)

	if err := c.waitHost(ctx, req.URL.Hostname()); err != nil {
		return "", 0, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("fetch: head %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	return resp.Request.URL.String(), resp.StatusCode, nil
}

// Get retrieves a URL body (capped at 10 MB). Used for image downloads.
func (c *Client) Get(ctx context.Context, targetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	setChromeHeaders(req)

	if err := c.waitHost(ctx, req.URL.Hostname()); err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: get %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}
	return body, nil
}

// waitHost blocks on the host's limiter until a request slot is available.
func (c *Client) waitHost(ctx context.Context, host string) error {
	c.mu.Lock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(c.limiterRate, c.limiterBurst)
		c.limiters[host] = lim
	}
	c.mu.Unlock()

	return lim.Wait(ctx)
}

func setChromeHeaders(req *http.Request) {
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint via utls.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(rawConn, &tls.Config{
		ServerName: host,
	}, tls.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
