package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/imvestor-client/internal/config"
	"github.com/jrsteele09/imvestor-client/internal/errors"
	"github.com/jrsteele09/imvestor-client/session"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const (
	tracerName      = "github.com/jrsteele09/imvestor-client/apiclient"
	headerRequestID = "X-Request-ID"
	contentTypeJSON = "application/json"
)

// Request is a single outbound call. Body is held as bytes so the request can
// be re-issued after a token refresh.
type Request struct {
	Method string
	Path   string // Relative to the base URL, e.g. "/entrepreneur"
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Response is a successful (2xx) reply. Body is returned untouched.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// SessionExpiredHandler is called after a failed refresh has cleared the
// session. It is the client's "redirect to login".
type SessionExpiredHandler func(loginURL string)

// Client attaches session credentials to outbound calls and recovers from an
// expired access token with exactly one refresh per request.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	refreshPath string
	loginURL    string
	store       session.Store
	onExpired   SessionExpiredHandler
	observer    StateObserver
	tracer      trace.Tracer
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client (e.g. an httptest server client)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionExpiredHandler sets the hook run when the session cannot be refreshed
func WithSessionExpiredHandler(h SessionExpiredHandler) Option {
	return func(c *Client) {
		c.onExpired = h
	}
}

// WithStateObserver reports every state transition of every request
func WithStateObserver(o StateObserver) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New creates a client for the API described by cfg, reading and writing
// credentials through store.
func New(cfg config.APIConfig, store session.Store, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.GetTimeout()},
		baseURL:     strings.TrimRight(cfg.GetBaseURL(), "/"),
		refreshPath: cfg.GetRefreshPath(),
		loginURL:    cfg.GetLoginURL(),
		store:       store,
		tracer:      otel.Tracer(tracerName),
	}
	c.onExpired = func(loginURL string) {
		log.Warn().Str("login", loginURL).Msg("Session expired, sign in again")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the session store the client reads credentials from
func (c *Client) Store() session.Store {
	return c.store
}

// Send dispatches req, attaching the session's access token when one is held.
//
// A 401 on a request that carried a token triggers one refresh. If the refresh
// succeeds the request is re-issued once and its outcome returned as is; a
// second 401 is not retried. If the refresh fails the session is cleared, the
// session-expired hook runs and ErrSessionExpired is returned. Every other
// failure is propagated unchanged.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.Method == "" {
		return nil, fmt.Errorf("%w: method is required", errors.ErrInvalidRequest)
	}

	ctx, span := c.tracer.Start(ctx, "imvestor.send", trace.WithAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
	))
	defer span.End()

	resp, err := c.send(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if status := errors.StatusCode(err); status != 0 {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}

func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	f := newFlow(c.observer)

	sess, ok := c.store.Get()
	attached := ok && sess.Authenticated()
	var accessToken string
	if attached {
		accessToken = sess.AccessToken
		if err := f.advance(StateAuthenticated); err != nil {
			return nil, err
		}
	}

	if err := f.advance(StateDispatched); err != nil {
		return nil, err
	}
	resp, err := c.dispatch(ctx, req, accessToken)
	if err == nil {
		return resp, f.advance(StateSucceeded)
	}

	// Only a request that carried a token can be rescued by a refresh
	if !attached || !errors.Is(err, errors.ErrUnauthorized) {
		return nil, f.fail(err)
	}

	if aerr := f.advance(StateRefreshing); aerr != nil {
		return nil, aerr
	}
	log.Info().Str("method", req.Method).Str("path", req.Path).Msg("Access token rejected, refreshing")

	newToken, rerr := c.refresh(ctx, sess.RefreshToken)
	if rerr == nil {
		rerr = c.store.SetAccessToken(newToken)
	}
	if rerr != nil {
		if aerr := f.advance(StateSessionExpired); aerr != nil {
			return nil, aerr
		}
		c.expire()
		return nil, fmt.Errorf("%w: %w", errors.ErrSessionExpired, rerr)
	}

	if aerr := f.advance(StateRetrying); aerr != nil {
		return nil, aerr
	}
	resp, err = c.dispatch(ctx, req, newToken)
	if err != nil {
		return nil, f.fail(err)
	}
	return resp, f.advance(StateSucceeded)
}

// expire clears every session key and hands control to the login hook
func (c *Client) expire() {
	c.store.Clear()
	log.Warn().Msg("Token refresh failed, session cleared")
	if c.onExpired != nil {
		c.onExpired(c.loginURL)
	}
}

// dispatch performs one HTTP round trip. Non-2xx replies become *errors.APIError.
func (c *Client) dispatch(ctx context.Context, req *Request, accessToken string) (*Response, error) {
	httpReq, err := c.newHTTPRequest(ctx, req, accessToken)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("request_id", httpReq.Header.Get(headerRequestID)).
		Bool("auth", accessToken != "").
		Msg("Sending request")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", errors.ErrTransport, req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s %s response: %w", errors.ErrTransport, req.Method, req.Path, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &errors.APIError{
			StatusCode: httpResp.StatusCode,
			Method:     req.Method,
			Path:       req.Path,
			Body:       body,
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req *Request, accessToken string) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrInvalidRequest, err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", contentTypeJSON)
	}
	httpReq.Header.Set(headerRequestID, uuid.NewString())

	if accessToken != "" {
		bearer := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
		bearer.SetAuthHeader(httpReq)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	return httpReq, nil
}

// Do is a JSON convenience over Send: in (if non-nil) is encoded as the body
// and a non-empty response body is decoded into out (if non-nil).
func (c *Client) Do(ctx context.Context, method, path string, in, out any) error {
	req := &Request{Method: method, Path: path}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode %s %s body: %w", errors.ErrInvalidRequest, method, path, err)
		}
		req.Body = data
	}

	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
