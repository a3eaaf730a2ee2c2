package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"syscall"
	"time"
)

const (
	maxRemoteDocumentBytes = 32 << 20
	maxRedirects           = 5
)

// ErrBlockedAddress is returned when a URL resolves to a loopback, private,
// link-local or otherwise non-public address.
var ErrBlockedAddress = errors.New("address is not publicly routable")

// sharedAddressSpace is the carrier-grade NAT range, not covered by netip.Addr.IsPrivate.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// Fetcher downloads syllabus documents published on the web.
type Fetcher struct {
	httpClient *http.Client
	allowAddr  func(netip.AddrPort) bool
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(*Fetcher)

// AllowPrivateNetworks lets the Fetcher reach loopback and private addresses.
func AllowPrivateNetworks() FetcherOption {
	return func(f *Fetcher) {
		f.allowAddr = nil
	}
}

// NewFetcher creates a Fetcher with a bounded request timeout. Unless
// AllowPrivateNetworks is given, every connection, redirects included, is
// checked after DNS resolution and refused for non-public addresses.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{allowAddr: func(ap netip.AddrPort) bool { return isPublic(ap.Addr()) }}
	for _, opt := range opts {
		opt(f)
	}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
	}
	if f.allowAddr != nil {
		dialer.Control = f.checkDial
	}

	f.httpClient = &http.Client{
		Timeout:   15 * time.Second,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return checkScheme(req.URL.Scheme)
		},
	}
	return f
}

// FromURL fetches a syllabus page or PDF and returns its text.
func (f *Fetcher) FromURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if err := checkScheme(req.URL.Scheme); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: failed to fetch URL: status %d", ErrUnreadable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	name := "document.html"
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/pdf" || strings.HasSuffix(strings.ToLower(resp.Request.URL.Path), ".pdf"):
		name = "document.pdf"
	case mediaType == "text/plain":
		name = "document.txt"
	}
	return Text(name, data)
}

func checkScheme(scheme string) error {
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("unsupported URL scheme %q", scheme)
	}
	return nil
}

// checkDial runs after DNS resolution, right before the socket connects.
func (f *Fetcher) checkDial(network, address string, _ syscall.RawConn) error {
	ap, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	if !f.allowAddr(ap) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ap.Addr())
	}
	return nil
}

func isPublic(addr netip.Addr) bool {
	addr = addr.Unmap()
	switch {
	case !addr.IsValid(),
		addr.IsLoopback(),
		addr.IsPrivate(),
		addr.IsLinkLocalUnicast(),
		addr.IsLinkLocalMulticast(),
		addr.IsInterfaceLocalMulticast(),
		addr.IsMulticast(),
		addr.IsUnspecified(),
		sharedAddressSpace.Contains(addr):
		return false
	}
	return true
}
