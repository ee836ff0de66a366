package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	tt := []struct {
		name        string
		curlCmd     string
		wantHeaders map[string]string
		wantCookie  string
		wantURL     string
		wantErr     bool
	}{
		{
			name:        "single header with single quotes",
			curlCmd:     `curl -H 'Authorization: Bearer token123' https://api.example.com`,
			wantHeaders: map[string]string{"Authorization": "Bearer token123"},
			wantURL:     "",
		},
		{
			name:        "cookie in -b flag",
			curlCmd:     `curl 'http://localhost:8080/api/profile' -b 'JSESSIONID=abc123'`,
			wantHeaders: map[string]string{},
			wantCookie:  "JSESSIONID=abc123",
			wantURL:     "http://localhost:8080/api/profile",
		},
		{
			name:        "cookie in -H header",
			curlCmd:     `curl -H 'Cookie: JSESSIONID=abc123; theme=dark' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "JSESSIONID=abc123; theme=dark",
		},
		{
			name:        "-b cookie takes precedence over -H cookie",
			curlCmd:     `curl -H 'Cookie: old=value' -b 'new=value' https://api.example.com`,
			wantHeaders: map[string]string{},
			wantCookie:  "new=value",
		},
		{
			name: "multiline curl with backslashes",
			curlCmd: `curl 'http://localhost:8080/api/checklist?date=2025-06-03' \
  -H 'accept: application/json' \
  -H 'cookie: JSESSIONID=xyz' \
  --compressed`,
			wantHeaders: map[string]string{"accept": "application/json"},
			wantCookie:  "JSESSIONID=xyz",
			wantURL:     "http://localhost:8080/api/checklist?date=2025-06-03",
		},
		{
			name:    "no headers or cookies",
			curlCmd: `curl https://api.example.com`,
			wantErr: true,
		},
		{
			name:    "empty command",
			curlCmd: "",
			wantErr: true,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseCurlCommand(tc.curlCmd)

			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseCurlCommand() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}

			if len(result.Headers) != len(tc.wantHeaders) {
				t.Errorf("headers count = %v, want %v", len(result.Headers), len(tc.wantHeaders))
			}
			for key, want := range tc.wantHeaders {
				if got := result.Headers[key]; got != want {
					t.Errorf("header[%s] = %v, want %v", key, got, want)
				}
			}
			if result.Cookie != tc.wantCookie {
				t.Errorf("cookie = %v, want %v", result.Cookie, tc.wantCookie)
			}
			if tc.wantURL != "" && result.URL != tc.wantURL {
				t.Errorf("url = %v, want %v", result.URL, tc.wantURL)
			}
		})
	}
}

func TestCurlHeaders(t *testing.T) {
	t.Run("Cookies", func(t *testing.T) {
		h := &CurlHeaders{Cookie: "JSESSIONID=abc; broken; theme=dark"}
		cookies := h.Cookies()

		if len(cookies) != 2 {
			t.Fatalf("expected 2 cookies, got %d", len(cookies))
		}
		if cookies[0].Name != "JSESSIONID" || cookies[0].Value != "abc" {
			t.Errorf("unexpected first cookie %s=%s", cookies[0].Name, cookies[0].Value)
		}
		if cookies[1].Name != "theme" || cookies[1].Value != "dark" {
			t.Errorf("unexpected second cookie %s=%s", cookies[1].Name, cookies[1].Value)
		}
	})

	t.Run("BearerToken", func(t *testing.T) {
		h := &CurlHeaders{Headers: map[string]string{"authorization": "Bearer tok-1"}}
		if got := h.BearerToken(); got != "tok-1" {
			t.Errorf("BearerToken() = %q, want tok-1", got)
		}

		h = &CurlHeaders{Headers: map[string]string{"Authorization": "Basic abc"}}
		if got := h.BearerToken(); got != "" {
			t.Errorf("BearerToken() = %q, want empty", got)
		}
	})
}

func TestParseCurlFile(t *testing.T) {
	t.Run("successful file parse", func(t *testing.T) {
		curlFile := filepath.Join(t.TempDir(), "curl.sh")
		if err := os.WriteFile(curlFile, []byte(`curl -b 'JSESSIONID=abc' http://localhost:8080/api/profile`), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		result, err := ParseCurlFile(curlFile)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}
		if result.Cookie != "JSESSIONID=abc" {
			t.Errorf("cookie = %q", result.Cookie)
		}
	})

	t.Run("file does not exist", func(t *testing.T) {
		if _, err := ParseCurlFile("/nonexistent/file.sh"); err == nil {
			t.Error("expected error for nonexistent file")
		}
	})
}
