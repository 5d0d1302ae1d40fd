package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"ilanportali/internal/util"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/api/"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestRequestSendsJSONBodyAndHeaders(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type = %q, want application/json", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("accept = %q, want application/json", got)
		}
		if got := r.Header.Get("X-Request-Id"); got == "" {
			t.Errorf("expected request id header")
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["email"] != "a@b.com" {
			t.Errorf("email = %q", body["email"])
		}
		_, _ = w.Write([]byte(`{"token":"abc"}`))
	})

	payload, err := c.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.com", "password": "x"}, nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if string(payload) != `{"token":"abc"}` {
		t.Fatalf("payload = %s", payload)
	}
}

func TestRequestKeepsCallerRequestID(t *testing.T) {
	var (
		mu  sync.Mutex
		got []string
	)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("X-Request-Id"))
		mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	})

	headers := http.Header{}
	headers.Set("x-request-id", "caller-1")
	ctx := util.ContextWithRequestID(context.Background(), "ctx-1")
	if _, err := c.Request(ctx, http.MethodGet, "/listings", nil, headers); err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := c.Request(ctx, http.MethodGet, "/listings", nil, nil); err != nil {
		t.Fatalf("request: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 || got[0] != "caller-1" || got[1] != "ctx-1" {
		t.Fatalf("request ids = %v, want [caller-1 ctx-1]", got)
	}
}

func TestRequestWithoutBodyOmitsContentType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "" {
			t.Errorf("content type = %q, want none", got)
		}
		_, _ = w.Write([]byte(`[]`))
	})
	if _, err := c.Get(context.Background(), "/listings"); err != nil {
		t.Fatalf("get: %v", err)
	}
}

func TestSetAuthTokenAddsAndRemovesBearer(t *testing.T) {
	var seen []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	})

	c.SetAuthToken("tok-1")
	if _, err := c.Get(context.Background(), "/auth/me"); err != nil {
		t.Fatalf("get with token: %v", err)
	}
	c.SetAuthToken("")
	if _, err := c.Get(context.Background(), "/auth/me"); err != nil {
		t.Fatalf("get without token: %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(seen))
	}
	if seen[0] != "Bearer tok-1" {
		t.Fatalf("first authorization = %q", seen[0])
	}
	if seen[1] != "" {
		t.Fatalf("second authorization = %q, want none", seen[1])
	}
}

func TestRequestMultipartStripsExplicitContentType(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if !strings.HasPrefix(ct, "multipart/form-data; boundary=") {
			t.Errorf("content type = %q, want multipart with boundary", ct)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if got := r.FormValue("title"); got != "Bisiklet" {
			t.Errorf("title = %q", got)
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if string(data) != "png-bytes" || hdr.Filename != "bisiklet.png" {
			t.Errorf("unexpected file %q %q", hdr.Filename, data)
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	})

	body := NewMultipart().
		AddField("title", "Bisiklet").
		AddFile(FormFile{Field: "image", Filename: "bisiklet.png", ContentType: "image/png", Body: strings.NewReader("png-bytes")})
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	if _, err := c.Post(context.Background(), "/listings", body, headers); err != nil {
		t.Fatalf("post multipart: %v", err)
	}
}

func TestRequestErrorMessagePriority(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantPayload string
	}{
		{name: "payload message", status: http.StatusBadRequest, body: `{"message":"E-posta zaten kayıtlı"}`, wantMessage: "E-posta zaten kayıtlı", wantPayload: "E-posta zaten kayıtlı"},
		{name: "status text", status: http.StatusUnauthorized, body: `not json`, wantMessage: "Unauthorized", wantPayload: "Unauthorized"},
		{name: "payload without message", status: http.StatusConflict, body: `{"error":"dup"}`, wantMessage: "Conflict", wantPayload: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Get(context.Background(), "/x")
			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("expected HTTPError, got %v", err)
			}
			if httpErr.Status != tc.status {
				t.Fatalf("status = %d, want %d", httpErr.Status, tc.status)
			}
			if httpErr.Message != tc.wantMessage {
				t.Fatalf("message = %q, want %q", httpErr.Message, tc.wantMessage)
			}
			if got := httpErr.ServerMessage(); got != tc.wantPayload {
				t.Fatalf("payload message = %q, want %q", got, tc.wantPayload)
			}
		})
	}
}

func TestNewHTTPErrorFallsBackToGenericMessage(t *testing.T) {
	err := newHTTPError(599, "", nil)
	if err.Message != unknownErrorMessage {
		t.Fatalf("message = %q, want %q", err.Message, unknownErrorMessage)
	}
}

func TestRequestUnparseableSuccessBodyYieldsNilPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>ok</html>`))
	})
	payload, err := c.Get(context.Background(), "/listings")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if payload != nil {
		t.Fatalf("payload = %s, want nil", payload)
	}
}

func TestRequestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: baseURL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.Get(context.Background(), "/listings")
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.Path != "/listings" {
		t.Fatalf("path = %q", transportErr.Path)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
