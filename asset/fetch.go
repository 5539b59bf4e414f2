package asset

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// Defaults for HTTPFetcher.
const (
	DefaultTimeout  = 15 * time.Second
	DefaultRetries  = 2
	DefaultMaxBytes = 20 << 20
)

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient sets the HTTP client used for remote sources.
func WithClient(c *http.Client) Option {
	return func(f *HTTPFetcher) { f.client = c }
}

// WithTimeout bounds each fetch, retries included.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) { f.timeout = d }
}

// WithRetries sets how many times a failed remote fetch is retried.
// Only network errors and 5xx responses are retried.
func WithRetries(n int) Option {
	return func(f *HTTPFetcher) { f.retries = n }
}

// WithMaxBytes limits the size of a single source.
func WithMaxBytes(n int64) Option {
	return func(f *HTTPFetcher) { f.maxBytes = n }
}

// WithFileAccess allows sources that name local files.
func WithFileAccess(allow bool) Option {
	return func(f *HTTPFetcher) { f.allowFiles = allow }
}

// WithCache caches raw remote bytes.
func WithCache(c Cache) Option {
	return func(f *HTTPFetcher) { f.cache = c }
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *HTTPFetcher) { f.logger = l }
}

// HTTPFetcher loads data URIs, http(s) URLs and optionally local files.
type HTTPFetcher struct {
	client     *http.Client
	timeout    time.Duration
	retries    int
	maxBytes   int64
	allowFiles bool
	cache      Cache
	logger     *slog.Logger
	backoff    time.Duration
}

// NewHTTPFetcher creates a fetcher. Without options it allows remote and
// inline sources only, with DefaultTimeout, DefaultRetries and
// DefaultMaxBytes.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:   http.DefaultClient,
		timeout:  DefaultTimeout,
		retries:  DefaultRetries,
		maxBytes: DefaultMaxBytes,
		backoff:  200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch loads and normalizes src.
func (f *HTTPFetcher) Fetch(ctx context.Context, src string) (*Asset, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}

	data, err := f.load(ctx, src)
	if err != nil {
		return nil, err
	}
	return Normalize(display(src), data)
}

func (f *HTTPFetcher) load(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURI(src, f.maxBytes)
	}

	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return f.remote(ctx, src)
	case "file":
		return f.file(u.Path)
	case "":
		return f.file(src)
	default:
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedSource, u.Scheme)
	}
}

func (f *HTTPFetcher) file(path string) ([]byte, error) {
	if !f.allowFiles {
		return nil, fmt.Errorf("%w: local files are disabled", ErrUnsupportedSource)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("asset: %w", err)
	}
	defer fh.Close()
	return readLimited(fh, f.maxBytes)
}

func (f *HTTPFetcher) remote(ctx context.Context, src string) ([]byte, error) {
	key := cacheKey(src)
	if f.cache != nil {
		if data, ok := f.cache.Get(ctx, key); ok {
			f.logger.Debug("asset served from cache", "src", src)
			return data, nil
		}
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	var (
		data    []byte
		attempt int
	)
	backoff := retry.WithMaxRetries(uint64(max(f.retries, 0)), retry.NewExponential(f.backoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var err error
		data, err = f.get(ctx, src)
		if err != nil && attempt <= f.retries {
			f.logger.Debug("asset fetch attempt failed", "src", src, "attempt", attempt, "error", err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		f.cache.Set(ctx, key, data)
	}
	return data, nil
}

// get performs one request. Transient failures are marked retryable.
func (f *HTTPFetcher) get(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSource, err)
	}
	req.Header.Set("Accept", "image/*, application/pdf;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("asset: fetching %s: %w", src, ctx.Err())
		}
		return nil, retry.RetryableError(fmt.Errorf("asset: fetching %s: %w", src, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, retry.RetryableError(&StatusError{URL: src, Code: resp.StatusCode})
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: src, Code: resp.StatusCode}
	}
	if resp.ContentLength > f.maxBytes && f.maxBytes > 0 {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, src, resp.ContentLength)
	}
	return readLimited(resp.Body, f.maxBytes)
}

// StatusError is returned when a remote source answers with a non-200 status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("asset: %s: unexpected status %d", e.URL, e.Code)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("asset: reading: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

// decodeDataURI parses "data:[<mediatype>][;base64],<data>".
func decodeDataURI(src string, limit int64) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", ErrUnsupportedSource)
	}
	if limit > 0 && int64(len(payload)) > limit*4/3+4 {
		return nil, fmt.Errorf("%w: data URI of %d bytes", ErrTooLarge, len(payload))
	}

	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		payload = strings.Map(func(r rune) rune {
			if r == ' ' || r == '\n' || r == '\r' || r == '\t' {
				return -1
			}
			return r
		}, payload)
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		}
		if err != nil {
			return nil, fmt.Errorf("%w: data URI: %v", ErrUndecodable, err)
		}
		return data, nil
	}

	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: data URI: %v", ErrUndecodable, err)
	}
	return []byte(s), nil
}

func cacheKey(src string) string {
	sum := sha256.Sum256([]byte(src))
	return hex.EncodeToString(sum[:])
}

// display shortens data URIs for logs and error messages.
func display(src string) string {
	if strings.HasPrefix(src, "data:") && len(src) > 48 {
		return src[:48] + "..."
	}
	return src
}
