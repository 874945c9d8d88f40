// Package apiclient is a typed client for the kitchen's REST API: auth,
// profile, the public menu, orders and the admin back-office.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/tiffin-storefront/internal/domain/auth"
	"github.com/xenking/tiffin-storefront/pkg/httpmiddleware"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:5000/api/v1"

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

// ErrNotAuthenticated is returned by bearer calls when no token is stored.
// No request is sent.
var ErrNotAuthenticated = auth.ErrNotAuthenticated

// Error is a non-2xx response from the API.
type Error struct {
	// Op names the client operation, e.g. "login".
	Op string
	// Status is the HTTP status code.
	Status int
	// Message is the body's message field, or a per-operation fallback.
	Message string
}

func (e *Error) Error() string { return e.Message }

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient     *http.Client
	timeout        time.Duration
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithHTTPClient sets the underlying HTTP client. Its transport is still
// wrapped with tracing and request id propagation.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithTracerProvider sets the tracer provider for outgoing requests.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

// WithMeterProvider sets the meter provider for outgoing requests.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

// Client calls the kitchen API.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens TokenSource
}

// New creates a Client for baseURL. tokens may be nil when only public
// endpoints are used.
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("unsupported scheme %q in base url", u.Scheme)
	}

	o := options{timeout: 15 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		*hc = *o.httpClient
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	var otelOpts []otelhttp.Option
	if o.tracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(o.tracerProvider))
	}
	if o.meterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(o.meterProvider))
	}
	hc.Transport = httpmiddleware.Transport(otelhttp.NewTransport(base, otelOpts...))
	if hc.Timeout == 0 {
		hc.Timeout = o.timeout
	}

	return &Client{base: u, http: hc, tokens: tokens}, nil
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// call describes one API request.
type call struct {
	op       string
	method   string
	path     string
	bearer   bool
	fallback string

	// body is JSON encoded unless it is a *multipartBody.
	body any
}

// do sends the request and returns the response body of a 2xx response.
func (c *Client) do(ctx context.Context, cl call) ([]byte, error) {
	var (
		body        io.Reader
		contentType string
	)
	switch b := cl.body.(type) {
	case nil:
	case *multipartBody:
		body, contentType = b.reader, b.contentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: encode request", cl.op)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.base.String()+cl.path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: create request", cl.op)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cl.bearer {
		token, err := c.token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: send request", cl.op)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrapf(err, "%s: read response", cl.op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(data)
		if msg == "" {
			msg = cl.fallback
		}
		return nil, &Error{Op: cl.op, Status: resp.StatusCode, Message: msg}
	}
	return data, nil
}

func (c *Client) token(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", ErrNotAuthenticated
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotAuthenticated
	}
	return token, nil
}

// errorMessage extracts a string "message" field from a JSON object body.
// Anything else yields "".
func errorMessage(body []byte) string {
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return ""
	}
	var msg string
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key != "message" || d.Next() != jx.String {
			return d.Skip()
		}
		v, err := d.Str()
		msg = v
		return err
	}); err != nil {
		return ""
	}
	return msg
}

// dataField returns the raw "data" member of a JSON object body. A missing
// member yields nil.
func dataField(body []byte) (jx.Raw, error) {
	var raw jx.Raw
	err := jx.DecodeBytes(body).Obj(func(d *jx.Decoder, key string) error {
		if key != "data" {
			return d.Skip()
		}
		v, err := d.Raw()
		if err != nil {
			return err
		}
		raw = append(jx.Raw(nil), v...)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode envelope")
	}
	return raw, nil
}

// decodeData unmarshals the "data" member of body into v. A missing or null
// member leaves v untouched.
func decodeData(op string, body []byte, v any) error {
	raw, err := dataField(body)
	if err != nil {
		return errors.Wrap(err, op)
	}
	if len(raw) == 0 || raw.Type() == jx.Null {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "%s: decode data", op)
	}
	return nil
}
