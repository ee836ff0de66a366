package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/studyx/internal/shared"
	tu "github.com/desertthunder/studyx/internal/testing"
	"github.com/golang-jwt/jwt/v5"
)

func newTestClient(baseURL string, nav Navigator) *APIClient {
	return NewAPIClient(ClientOptions{BaseURL: baseURL, Navigator: nav, Logger: tu.DiscardLogger()})
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return tok
}

func TestAPIClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			c := NewAPIClient(ClientOptions{Logger: tu.DiscardLogger()})

			if c.BaseURL() != "http://localhost:8080" {
				t.Errorf("expected default base URL, got %s", c.BaseURL())
			}
			if c.userAgent != "studyx" {
				t.Errorf("expected default user agent, got %s", c.userAgent)
			}
			for _, route := range DefaultPublicRoutes {
				if !c.IsPublicRoute(route) {
					t.Errorf("expected %s to be public", route)
				}
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			c := newTestClient("http://example.com/", nil)
			if c.BaseURL() != "http://example.com" {
				t.Errorf("expected trimmed base URL, got %s", c.BaseURL())
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Decodes JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/api/profile" {
					t.Errorf("expected path '/api/profile', got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{"id": 7, "username": "kim"})
			}))
			defer server.Close()

			var got struct {
				ID       json.Number `json:"id"`
				Username string      `json:"username"`
			}
			if err := newTestClient(server.URL, nil).Get(context.Background(), "/api/profile", &got); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Username != "kim" || got.ID.String() != "7" {
				t.Errorf("unexpected body %+v", got)
			}
		})

		t.Run("Text Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			var got string
			if err := newTestClient(server.URL, nil).Get(context.Background(), "/x", &got); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != "plain text response" {
				t.Errorf("expected body 'plain text response', got %s", got)
			}
		})

		t.Run("Empty Body With Target", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			var got map[string]any
			if err := newTestClient(server.URL, nil).Get(context.Background(), "/x", &got); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Standard Headers", func(t *testing.T) {
			var ids []string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Accept") != "application/json" {
					t.Errorf("expected Accept application/json, got %s", r.Header.Get("Accept"))
				}
				if r.Header.Get("User-Agent") != "studyx-test" {
					t.Errorf("expected custom user agent, got %s", r.Header.Get("User-Agent"))
				}
				if r.Header.Get("Content-Type") != "" {
					t.Errorf("expected no content type without a body, got %s", r.Header.Get("Content-Type"))
				}
				ids = append(ids, r.Header.Get("X-Request-ID"))
			}))
			defer server.Close()

			c := NewAPIClient(ClientOptions{BaseURL: server.URL, UserAgent: "studyx-test", Logger: tu.DiscardLogger()})
			c.Get(context.Background(), "/a", nil)
			c.Get(context.Background(), "/b", nil)

			if len(ids) != 2 || ids[0] == "" || ids[0] == ids[1] {
				t.Errorf("expected two distinct request ids, got %v", ids)
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			c := NewAPIClient(ClientOptions{
				BaseURL:   "http://example.com",
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
				Logger:    tu.DiscardLogger(),
			})
			err := c.Get(context.Background(), "/test", nil)

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "connection failed") {
				t.Errorf("expected cause in message, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			c := NewAPIClient(ClientOptions{
				BaseURL: "http://example.com",
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
				Logger: tu.DiscardLogger(),
			})
			err := c.Get(context.Background(), "/test", nil)

			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("Invalid Path", func(t *testing.T) {
			err := newTestClient("http://example.com", nil).Get(context.Background(), "/test\x00invalid", nil)
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})
	})

	t.Run("Errors", func(t *testing.T) {
		tt := []struct {
			name     string
			status   int
			body     string
			wantMsg  string
			wantCode string
			sentinel error
		}{
			{name: "message field", status: 400, body: `{"message":"방이 가득 찼습니다"}`, wantMsg: "방이 가득 찼습니다", sentinel: shared.ErrAPIRequest},
			{name: "error field", status: 404, body: `{"error":"Not Found"}`, wantMsg: "Not Found", sentinel: shared.ErrAPIRequest},
			{name: "message wins over error", status: 400, body: `{"message":"m","error":"e","code":"C1"}`, wantMsg: "m", wantCode: "C1", sentinel: shared.ErrAPIRequest},
			{name: "unparsable body", status: 500, body: `<html>oops</html>`, wantMsg: "HTTP error, status 500", sentinel: shared.ErrAPIRequest},
			{name: "empty fields", status: 502, body: `{"message":"  "}`, wantMsg: "HTTP error, status 502", sentinel: shared.ErrAPIRequest},
			{name: "unauthorized", status: 401, body: `{"message":"UNAUTHORIZED"}`, wantMsg: "UNAUTHORIZED", sentinel: shared.ErrUnauthorized},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					w.WriteHeader(tc.status)
					w.Write([]byte(tc.body))
				}))
				defer server.Close()

				err := newTestClient(server.URL, nil).Post(context.Background(), "/api/x", map[string]string{"a": "b"}, nil)

				apiErr, ok := AsAPIError(err)
				if !ok {
					t.Fatalf("expected APIError, got %T %v", err, err)
				}
				if apiErr.Message != tc.wantMsg {
					t.Errorf("message = %q, want %q", apiErr.Message, tc.wantMsg)
				}
				if apiErr.Code != tc.wantCode {
					t.Errorf("code = %q, want %q", apiErr.Code, tc.wantCode)
				}
				if apiErr.Status != tc.status || apiErr.Path != "/api/x" || apiErr.Method != http.MethodPost {
					t.Errorf("unexpected error metadata %+v", apiErr)
				}
				if !errors.Is(err, tc.sentinel) {
					t.Errorf("expected errors.Is(%v)", tc.sentinel)
				}
			})
		}
	})

	t.Run("Unauthorized Redirect", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		tt := []struct {
			route        string
			wantRedirect bool
		}{
			{route: "/login", wantRedirect: false},
			{route: "/", wantRedirect: false},
			{route: "/open-study", wantRedirect: false},
			{route: "/register/", wantRedirect: false},
			{route: "/profile", wantRedirect: true},
			{route: "/checklist?date=2025-06-03", wantRedirect: true},
			{route: "/open-study/rooms/3", wantRedirect: true},
		}

		for _, tc := range tt {
			t.Run(tc.route, func(t *testing.T) {
				nav := NewRouteNavigator(tc.route, nil)
				err := newTestClient(server.URL, nav).Get(context.Background(), "/api/profile", nil)

				if !errors.Is(err, shared.ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}

				redirects := nav.Redirects()
				if tc.wantRedirect {
					if len(redirects) != 1 || redirects[0] != "/login" {
						t.Errorf("expected one redirect to /login, got %v", redirects)
					}
					if nav.Current() != "/login" {
						t.Errorf("expected navigator at /login, got %s", nav.Current())
					}
				} else if len(redirects) != 0 {
					t.Errorf("expected no redirect, got %v", redirects)
				}
			})
		}

		t.Run("Callback", func(t *testing.T) {
			var got string
			nav := NewRouteNavigator("/profile", func(route string) { got = route })
			newTestClient(server.URL, nav).Get(context.Background(), "/api/profile", nil)
			if got != "/login" {
				t.Errorf("expected callback with /login, got %q", got)
			}
		})

		t.Run("Custom Allow List", func(t *testing.T) {
			nav := NewRouteNavigator("/profile", nil)
			c := NewAPIClient(ClientOptions{
				BaseURL: server.URL, Navigator: nav, PublicRoutes: []string{"/profile"}, Logger: tu.DiscardLogger(),
			})
			c.Get(context.Background(), "/api/profile", nil)
			if len(nav.Redirects()) != 0 {
				t.Errorf("expected no redirect on custom public route, got %v", nav.Redirects())
			}
		})
	})

	t.Run("Multipart", func(t *testing.T) {
		dir := t.TempDir()
		imagePath := filepath.Join(dir, "avatar.png")
		if err := os.WriteFile(imagePath, []byte("png-bytes"), 0644); err != nil {
			t.Fatalf("failed to write image: %v", err)
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "multipart/form-data; boundary=") {
				t.Errorf("expected multipart boundary content type, got %s", ct)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatalf("failed to parse multipart: %v", err)
			}
			if r.FormValue("title") != "hello" {
				t.Errorf("expected title field, got %q", r.FormValue("title"))
			}
			if !strings.Contains(r.FormValue("data"), `"username":"kim"`) {
				t.Errorf("expected JSON data part, got %q", r.FormValue("data"))
			}
			f, header, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("expected file part: %v", err)
			}
			content, _ := io.ReadAll(f)
			if header.Filename != "avatar.png" || string(content) != "png-bytes" {
				t.Errorf("unexpected file %s %q", header.Filename, content)
			}
		}))
		defer server.Close()

		body := &Multipart{
			Fields: map[string]string{"title": "hello"},
			JSON:   map[string]any{"data": map[string]string{"username": "kim"}},
			Files:  []MultipartFile{{Field: "file", Path: imagePath}},
		}
		if err := newTestClient(server.URL, nil).Post(context.Background(), "/upload", body, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Missing Multipart File", func(t *testing.T) {
		body := &Multipart{Files: []MultipartFile{{Field: "file", Path: "/nonexistent/file.png"}}}
		err := newTestClient("http://example.com", nil).Post(context.Background(), "/upload", body, nil)
		if err == nil || !strings.Contains(err.Error(), "multipart") {
			t.Errorf("expected multipart encoding error, got %v", err)
		}
	})

	t.Run("Cookies", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/login":
				http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
			case "/check":
				c, err := r.Cookie("JSESSIONID")
				if err != nil || c.Value != "abc" {
					w.WriteHeader(http.StatusUnauthorized)
				}
			}
		}))
		defer server.Close()

		c := newTestClient(server.URL, nil)
		if err := c.Post(context.Background(), "/login", nil, nil); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if err := c.Get(context.Background(), "/check", nil); err != nil {
			t.Fatalf("expected cookie to be sent back, got %v", err)
		}
		if len(c.Cookies()) != 1 {
			t.Errorf("expected one stored cookie, got %d", len(c.Cookies()))
		}

		c.ClearSession()
		if len(c.Cookies()) != 0 {
			t.Error("expected cookies to be cleared")
		}
		if err := c.Get(context.Background(), "/check", nil); !errors.Is(err, shared.ErrUnauthorized) {
			t.Errorf("expected ErrUnauthorized after clearing, got %v", err)
		}

		if err := c.SetCookies([]*http.Cookie{{Name: "JSESSIONID", Value: "abc", Path: "/"}}); err != nil {
			t.Fatalf("failed to seed cookies: %v", err)
		}
		if err := c.Get(context.Background(), "/check", nil); err != nil {
			t.Errorf("expected seeded cookie to be sent, got %v", err)
		}
	})

	t.Run("Bearer Token", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
		}))
		defer server.Close()

		t.Run("Valid JWT Is Attached", func(t *testing.T) {
			c := newTestClient(server.URL, nil)
			token := signedToken(t, time.Now().Add(time.Hour))
			if err := c.SetToken(token); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			c.Get(context.Background(), "/", nil)
			if gotAuth != "Bearer "+token {
				t.Errorf("expected bearer token, got %q", gotAuth)
			}
		})

		t.Run("Expired JWT Is Rejected", func(t *testing.T) {
			c := newTestClient(server.URL, nil)
			err := c.SetToken(signedToken(t, time.Now().Add(-time.Minute)))
			if !errors.Is(err, shared.ErrTokenExpired) {
				t.Fatalf("expected ErrTokenExpired, got %v", err)
			}
			c.Get(context.Background(), "/", nil)
			if gotAuth != "" {
				t.Errorf("expected no authorization header, got %q", gotAuth)
			}
			if c.Token() != "" {
				t.Error("expected no stored token")
			}
		})

		t.Run("Opaque Token Is Attached", func(t *testing.T) {
			c := newTestClient(server.URL, nil)
			if err := c.SetToken("opaque-token"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			c.Get(context.Background(), "/", nil)
			if gotAuth != "Bearer opaque-token" {
				t.Errorf("expected opaque bearer token, got %q", gotAuth)
			}
		})

		t.Run("Malformed JWT", func(t *testing.T) {
			c := newTestClient(server.URL, nil)
			if err := c.SetToken("a.b.c"); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("Change Callback", func(t *testing.T) {
			c := newTestClient(server.URL, nil)
			var changes []string
			c.OnTokenChange(func(token string) { changes = append(changes, token) })
			c.SetToken("one")
			c.ClearSession()
			if len(changes) != 2 || changes[0] != "one" || changes[1] != "" {
				t.Errorf("unexpected token changes %v", changes)
			}
		})
	})

	t.Run("Beacon", func(t *testing.T) {
		release := make(chan struct{})
		received := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received <- r.Method + " " + r.URL.Path
			<-release
		}))
		defer server.Close()

		c := newTestClient(server.URL, nil)

		start := time.Now()
		c.Beacon(http.MethodPost, "/api/open-study/rooms/1/leave")
		if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
			t.Errorf("beacon blocked the caller for %v", elapsed)
		}

		select {
		case got := <-received:
			if got != "POST /api/open-study/rooms/1/leave" {
				t.Errorf("unexpected beacon request %s", got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("beacon was never delivered")
		}

		if c.WaitBeacons(10 * time.Millisecond) {
			t.Error("expected beacon still in flight")
		}
		close(release)
		if !c.WaitBeacons(2 * time.Second) {
			t.Error("expected beacon to finish")
		}
	})

	t.Run("Beacon Failure Is Silent", func(t *testing.T) {
		c := NewAPIClient(ClientOptions{
			BaseURL:   "http://example.com",
			Transport: tu.NewMockRoundTripper(nil, errors.New("offline")),
			Logger:    tu.DiscardLogger(),
		})
		c.Beacon(http.MethodPost, "/api/timer/end")
		if !c.WaitBeacons(time.Second) {
			t.Error("expected failed beacon to finish")
		}
	})
}
