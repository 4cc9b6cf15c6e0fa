package cover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
)

var (
	// ErrNotAnImage is returned when a candidate responds but the body
	// does not decode as an image.
	ErrNotAnImage = errors.New("not an image")
	// ErrBlankImage is returned for 1x1 spacer images some vendors serve
	// instead of a 404.
	ErrBlankImage = errors.New("blank image")
	// ErrBlockedAddress is returned for candidates on loopback, private,
	// link-local or otherwise non-public addresses.
	ErrBlockedAddress = errors.New("address not allowed")
	// ErrUnsupportedScheme is returned for candidates that are not http(s).
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

const defaultMaxImageBytes = 5 << 20

// HTTPProber loads candidate images over HTTP. It is used both for
// off-screen probes and for fetching the image that is finally shown.
// Candidate URLs come from callers, so every connection, redirects
// included, is checked against the resolved IP before it is made.
type HTTPProber struct {
	httpClient   *http.Client
	userAgent    string
	maxBytes     int64
	allowPrivate bool
}

// NewHTTPProber creates a prober. A zero timeout leaves the client
// without its own deadline.
func NewHTTPProber(userAgent string, timeout time.Duration) *HTTPProber {
	p := &HTTPProber{
		userAgent: userAgent,
		maxBytes:  defaultMaxImageBytes,
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second, Control: p.checkAddress}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	p.httpClient = &http.Client{Timeout: timeout, Transport: transport}
	return p
}

// checkAddress runs after DNS resolution, so host names that resolve
// to internal addresses are rejected too.
func (p *HTTPProber) checkAddress(_, address string, _ syscall.RawConn) error {
	if p.allowPrivate {
		return nil
	}
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return ErrBlockedAddress
	}
	ip := net.ParseIP(host)
	if ip == nil || !isPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

var carrierNAT = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

func isPublicIP(ip net.IP) bool {
	switch {
	case ip.IsLoopback(), ip.IsPrivate(), ip.IsUnspecified(),
		ip.IsLinkLocalUnicast(), ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(), ip.IsMulticast():
		return false
	case carrierNAT.Contains(ip):
		return false
	}
	return true
}

// Image is a fetched, validated cover image.
type Image struct {
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Probe reports whether rawURL loads as a real image.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) error {
	_, err := p.Fetch(ctx, rawURL)
	return err
}

// Fetch downloads rawURL and validates that it decodes as an image larger
// than a single pixel.
func (p *HTTPProber) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if p.userAgent != "" {
		req.Header.Set("User-Agent", p.userAgent)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 1 || bounds.Dy() <= 1 {
		return nil, ErrBlankImage
	}

	// The upstream Content-Type is never trusted; the label is the
	// format that actually decoded.
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	return &Image{
		ContentType: "image/" + format,
		Data:        data,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}
