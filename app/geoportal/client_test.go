package geoportal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient wires a client against a test server acting as both the map
// page (session bootstrap) and the search API.
func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL+"/api/geoportal/v2/search/geoportal", server.URL+"/map", "test-agent/1.0")
	return client, server
}

func TestLookupSuccess(t *testing.T) {
	var sessionRequests, searchRequests int
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/map"):
			sessionRequests++
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc"})
			w.Write([]byte("<html></html>"))
		case strings.HasPrefix(r.URL.Path, "/api/"):
			searchRequests++
			if searchRequests == 1 && r.URL.Query().Get("query") != "77:01:0001:1" {
				t.Errorf("Unexpected query parameter: %q", r.URL.Query().Get("query"))
			}
			if cookie, err := r.Cookie("session"); err != nil || cookie.Value != "abc" {
				t.Error("Expected bootstrap session cookie on lookup request")
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"data": {"features": []}}`))
		}
	})
	defer server.Close()

	payload, diag := client.Lookup(context.Background(), "77:01:0001:1")
	if diag != "" {
		t.Fatalf("Expected no diagnostic, got: %s", diag)
	}
	if payload != `{"data":{"features":[]}}` {
		t.Errorf("Expected compacted JSON payload, got: %q", payload)
	}
	if sessionRequests != 1 {
		t.Errorf("Expected exactly 1 session bootstrap, got %d", sessionRequests)
	}

	// Second lookup must reuse the session
	client.Lookup(context.Background(), "77:01:0001:2")
	if sessionRequests != 1 {
		t.Errorf("Expected session reuse, got %d bootstrap requests", sessionRequests)
	}
	if searchRequests != 2 {
		t.Errorf("Expected 2 search requests, got %d", searchRequests)
	}
}

func TestLookupRemoteError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/map") {
			w.Write([]byte("ok"))
			return
		}
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("access denied"))
	})
	defer server.Close()

	payload, diag := client.Lookup(context.Background(), "77:01:0001:1")
	if payload != "" {
		t.Errorf("Expected empty payload on remote error, got: %q", payload)
	}
	if !strings.Contains(diag, "Status: 403") {
		t.Errorf("Expected status in diagnostic, got: %s", diag)
	}
	if !strings.Contains(diag, "Body: access denied") {
		t.Errorf("Expected body in diagnostic, got: %s", diag)
	}
	if !strings.Contains(diag, "URL: ") {
		t.Errorf("Expected URL in diagnostic, got: %s", diag)
	}
}

func TestLookupTransportError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	server.Close() // force a connection failure

	payload, diag := client.Lookup(context.Background(), "77:01:0001:1")
	if payload != "" {
		t.Errorf("Expected empty payload, got: %q", payload)
	}
	if !strings.HasPrefix(diag, "Exception: ") {
		t.Errorf("Expected exception diagnostic, got: %s", diag)
	}
}

func TestLookupInvalidJSON(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/map") {
			w.Write([]byte("ok"))
			return
		}
		w.Write([]byte("<html>not json</html>"))
	})
	defer server.Close()

	payload, diag := client.Lookup(context.Background(), "77:01:0001:1")
	if payload != "" {
		t.Errorf("Expected empty payload for invalid JSON, got: %q", payload)
	}
	if !strings.HasPrefix(diag, "Exception: ") {
		t.Errorf("Expected exception diagnostic, got: %s", diag)
	}
}

func TestLookupBootstrapFailure(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	payload, diag := client.Lookup(context.Background(), "77:01:0001:1")
	if payload != "" {
		t.Errorf("Expected empty payload, got: %q", payload)
	}
	if !strings.Contains(diag, "map session returned HTTP 502") {
		t.Errorf("Expected bootstrap failure diagnostic, got: %s", diag)
	}
}
