// HTTP client wrapper shared by every backend service
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/studyx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL   = "http://localhost:8080"
	defaultUserAgent = "studyx"
	loginRoute       = "/login"
	beaconTimeout    = 10 * time.Second
)

// DefaultPublicRoutes are the routes on which a 401 does not redirect to the login screen.
var DefaultPublicRoutes = []string{"/", "/login", "/register", "/find-password", "/open-study"}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string // server supplied message/error, or a generic status message
	Code    string // server supplied error code, if any
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap classifies the failure: 401 is [shared.ErrUnauthorized], everything else [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return shared.ErrUnauthorized
	}
	return shared.ErrAPIRequest
}

// HasCode reports whether the error carries the given machine-readable code in either field.
func (e *APIError) HasCode(code string) bool {
	return strings.EqualFold(e.Code, code) || strings.EqualFold(e.Message, code)
}

// AsAPIError unwraps err into an [APIError].
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Method: method, Path: path, Status: status}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		switch {
		case strings.TrimSpace(payload.Message) != "":
			apiErr.Message = payload.Message
		case strings.TrimSpace(payload.Error) != "":
			apiErr.Message = payload.Error
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP error, status %d", status)
	}
	return apiErr
}

// Navigator exposes the caller's current route and lets the client send it to the login screen.
type Navigator interface {
	Current() string
	Navigate(route string)
}

// RouteNavigator is a [Navigator] that records the current route and notifies a callback on redirect.
type RouteNavigator struct {
	mu         sync.Mutex
	current    string
	redirects  []string
	onNavigate func(route string)
}

// NewRouteNavigator creates a navigator positioned at route.
func NewRouteNavigator(route string, onNavigate func(route string)) *RouteNavigator {
	return &RouteNavigator{current: route, onNavigate: onNavigate}
}

func (n *RouteNavigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// SetCurrent moves the navigator without counting a redirect.
func (n *RouteNavigator) SetCurrent(route string) {
	n.mu.Lock()
	n.current = route
	n.mu.Unlock()
}

func (n *RouteNavigator) Navigate(route string) {
	n.mu.Lock()
	n.current = route
	n.redirects = append(n.redirects, route)
	cb := n.onNavigate
	n.mu.Unlock()

	if cb != nil {
		cb(route)
	}
}

// Redirects returns every route navigated to, oldest first.
func (n *RouteNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}

// MultipartFile is a file part of a [Multipart] body.
type MultipartFile struct {
	Field    string
	Filename string
	Content  io.Reader // read instead of Path when set
	Path     string
}

// Multipart is a multipart/form-data request body. JSON values are sent as application/json parts.
type Multipart struct {
	Fields map[string]string
	JSON   map[string]any
	Files  []MultipartFile
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range m.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	for name, value := range m.JSON {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode part %s: %w", name, err)
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, name))
		h.Set("Content-Type", "application/json")
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	for _, f := range m.Files {
		if err := writeFilePart(w, f); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, f MultipartFile) error {
	content := f.Content
	name := f.Filename
	if content == nil {
		file, err := os.Open(f.Path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", f.Path, err)
		}
		defer file.Close()
		content = file
		if name == "" {
			name = filepath.Base(f.Path)
		}
	}

	part, err := w.CreateFormFile(f.Field, name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to write file part %s: %w", f.Field, err)
	}
	return nil
}

// ClientOptions configures an [APIClient].
type ClientOptions struct {
	BaseURL      string
	UserAgent    string
	PublicRoutes []string
	Transport    http.RoundTripper // defaults to [http.DefaultTransport]
	Navigator    Navigator
	Logger       *log.Logger
}

// APIClient issues JSON requests against the study backend.
//
// A cookie jar is always attached so the server-managed session cookie round-trips. When the backend issued an
// access token it is attached as a bearer token until its exp claim passes.
type APIClient struct {
	baseURL    string
	userAgent  string
	public     map[string]bool
	httpClient *http.Client
	jar        *sessionJar
	navigator  Navigator
	logger     *log.Logger

	mu      sync.RWMutex
	token   *oauth2.Token
	onToken func(token string)

	beacons sync.WaitGroup
}

// NewAPIClient creates a client for opts.BaseURL.
func NewAPIClient(opts ClientOptions) *APIClient {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	routes := opts.PublicRoutes
	if len(routes) == 0 {
		routes = DefaultPublicRoutes
	}
	public := make(map[string]bool, len(routes))
	for _, r := range routes {
		public[normalizeRoute(r)] = true
	}
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	c := &APIClient{
		baseURL:   baseURL,
		userAgent: userAgent,
		public:    public,
		jar:       newSessionJar(),
		navigator: opts.Navigator,
		logger:    logger,
	}
	c.httpClient = &http.Client{Jar: c.jar, Transport: &bearerTransport{client: c, base: base}}
	return c
}

// BaseURL returns the backend root.
func (c *APIClient) BaseURL() string { return c.baseURL }

// SetNavigator replaces the navigator consulted on 401 responses.
func (c *APIClient) SetNavigator(n Navigator) { c.navigator = n }

// SetLogger replaces the diagnostic logger, e.g. while a full-screen view owns the terminal.
func (c *APIClient) SetLogger(l *log.Logger) {
	if l != nil {
		c.logger = l
	}
}

// IsPublicRoute reports whether route is on the allow-list.
func (c *APIClient) IsPublicRoute(route string) bool {
	return c.public[normalizeRoute(route)]
}

// SetToken stores the bearer token. A JWT whose exp has passed is rejected with [shared.ErrTokenExpired].
// An empty token clears it.
func (c *APIClient) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		c.setToken(nil)
		return nil
	}

	expiry, err := tokenExpiry(token)
	if err != nil {
		return err
	}
	if !expiry.IsZero() && !expiry.After(time.Now()) {
		c.setToken(nil)
		return fmt.Errorf("%w: expired at %s", shared.ErrTokenExpired, expiry.Format(time.RFC3339))
	}

	c.setToken(&oauth2.Token{AccessToken: token, TokenType: "Bearer", Expiry: expiry})
	return nil
}

// Token returns the stored bearer token, or "" when none is stored or it expired.
func (c *APIClient) Token() string {
	if tok := c.activeToken(); tok != nil {
		return tok.AccessToken
	}
	return ""
}

// OnTokenChange registers a callback invoked whenever the stored token changes.
func (c *APIClient) OnTokenChange(fn func(token string)) {
	c.mu.Lock()
	c.onToken = fn
	c.mu.Unlock()
}

func (c *APIClient) setToken(tok *oauth2.Token) {
	c.mu.Lock()
	c.token = tok
	cb := c.onToken
	c.mu.Unlock()

	if cb != nil {
		value := ""
		if tok != nil {
			value = tok.AccessToken
		}
		cb(value)
	}
}

func (c *APIClient) activeToken() *oauth2.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return nil
	}
	if !c.token.Expiry.IsZero() && !c.token.Expiry.After(time.Now()) {
		return nil
	}
	return c.token
}

// tokenExpiry reads the exp claim of a JWT without verifying it. Opaque tokens have no expiry.
func tokenExpiry(token string) (time.Time, error) {
	if strings.Count(token, ".") != 2 {
		return time.Time{}, nil
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed access token: %v", shared.ErrInvalidInput, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, nil
	}
	return claims.ExpiresAt.Time, nil
}

// Cookies returns the session cookies held for the backend.
func (c *APIClient) Cookies() []*http.Cookie {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil
	}
	return c.jar.Cookies(u)
}

// SetCookies seeds the jar, e.g. from a stored session.
func (c *APIClient) SetCookies(cookies []*http.Cookie) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("%w: base url: %v", shared.ErrInvalidConfig, err)
	}
	c.jar.SetCookies(u, cookies)
	return nil
}

// ClearSession drops every cookie and the bearer token.
func (c *APIClient) ClearSession() {
	c.jar.Reset()
	c.setToken(nil)
}

func (c *APIClient) Get(ctx context.Context, path string, dest any) error {
	return c.Do(ctx, http.MethodGet, path, nil, dest)
}

func (c *APIClient) Post(ctx context.Context, path string, body, dest any) error {
	return c.Do(ctx, http.MethodPost, path, body, dest)
}

func (c *APIClient) Put(ctx context.Context, path string, body, dest any) error {
	return c.Do(ctx, http.MethodPut, path, body, dest)
}

func (c *APIClient) Patch(ctx context.Context, path string, body, dest any) error {
	return c.Do(ctx, http.MethodPatch, path, body, dest)
}

func (c *APIClient) Delete(ctx context.Context, path string, body, dest any) error {
	return c.Do(ctx, http.MethodDelete, path, body, dest)
}

// Do performs one request and decodes the response into dest.
//
// dest may be nil (body discarded), *string (raw text), *[]byte, or any JSON target. Non-2xx responses return
// an [*APIError]; a 401 additionally redirects to the login route unless the current route is public.
func (c *APIClient) Do(ctx context.Context, method, path string, body, dest any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		c.logger.Error("failed to build request", "method", method, "path", path, "error", err)
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read response", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(method, path, resp.StatusCode, data)
		c.logger.Warn("request rejected", "method", method, "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized()
		}
		return apiErr
	}

	if err := decodeBody(data, dest); err != nil {
		c.logger.Error("failed to decode response", "method", method, "path", path, "error", err)
		return err
	}
	return nil
}

// Beacon sends a fire-and-forget request on a detached context. It never blocks and its outcome is only logged.
func (c *APIClient) Beacon(method, path string) {
	c.beacons.Add(1)
	go func() {
		defer c.beacons.Done()

		ctx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
		defer cancel()

		req, err := c.newRequest(ctx, method, path, nil)
		if err != nil {
			c.logger.Debug("beacon not sent", "path", path, "error", err)
			return
		}
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Debug("beacon failed", "path", path, "error", err)
			return
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		c.logger.Debug("beacon delivered", "path", path, "status", resp.StatusCode)
	}()
}

// WaitBeacons waits up to timeout for in-flight beacons and reports whether they all finished.
func (c *APIClient) WaitBeacons(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		c.beacons.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (c *APIClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var (
		reader      io.Reader
		contentType string
	)

	switch b := body.(type) {
	case nil:
	case *Multipart:
		r, ct, err := b.encode()
		if err != nil {
			return nil, fmt.Errorf("failed to encode multipart body: %w", err)
		}
		reader, contentType = r, ct
	case []byte:
		reader, contentType = bytes.NewReader(b), "application/json"
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", shared.GenerateID())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func (c *APIClient) handleUnauthorized() {
	c.setToken(nil)

	if c.navigator == nil {
		return
	}
	route := c.navigator.Current()
	if c.IsPublicRoute(route) {
		c.logger.Debug("unauthorized on public route", "route", route)
		return
	}
	c.logger.Info("session invalid, redirecting to login", "from", route)
	c.navigator.Navigate(loginRoute)
}

func decodeBody(data []byte, dest any) error {
	switch d := dest.(type) {
	case nil:
		return nil
	case *string:
		*d = string(data)
		return nil
	case *[]byte:
		*d = append((*d)[:0], data...)
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}

// bearerTransport attaches the client's current token through an [oauth2.Transport].
type bearerTransport struct {
	client *APIClient
	base   http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.client.activeToken()
	if tok == nil {
		return t.base.RoundTrip(req)
	}
	return (&oauth2.Transport{Source: oauth2.StaticTokenSource(tok), Base: t.base}).RoundTrip(req)
}

// sessionJar is a cookie jar that can be emptied in place.
type sessionJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func newSessionJar() *sessionJar {
	jar, _ := cookiejar.New(nil)
	return &sessionJar{jar: jar}
}

func (s *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.jar.SetCookies(u, cookies)
}

func (s *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jar.Cookies(u)
}

// Reset replaces the jar with an empty one.
func (s *sessionJar) Reset() {
	jar, _ := cookiejar.New(nil)
	s.mu.Lock()
	s.jar = jar
	s.mu.Unlock()
}
