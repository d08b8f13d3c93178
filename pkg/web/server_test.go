package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corvidlabs/go-aura/pkg/audioio"
	"github.com/corvidlabs/go-aura/pkg/session"
	"github.com/corvidlabs/go-aura/pkg/visual"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := session.DefaultConfig()
	cfg.Capture.Backend = audioio.BackendMock
	cfg.Playback.Backend = audioio.BackendMock
	manager := session.NewManager(cfg, nil)
	engine := visual.NewEngine(visual.DefaultProfile(), visual.WithSeed(1))

	return NewServer("0", manager, engine, nil)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.app.Test(req, int(5*time.Second/time.Millisecond))
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Mode != session.ModeIdle {
		t.Errorf("mode = %v, want idle", st.Mode)
	}
	if st.Connected {
		t.Error("connected before any session")
	}
}

func TestModeOverride(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/mode", ModeRequest{Mode: "searching"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}
	if got := s.EffectiveMode(); got != session.ModeSearching {
		t.Errorf("effective mode = %v, want searching", got)
	}

	// Clearing the override falls back to the session's mode.
	doJSON(t, s, http.MethodPost, "/api/mode", ModeRequest{Mode: ""})
	if got := s.EffectiveMode(); got != session.ModeIdle {
		t.Errorf("effective mode after clear = %v, want idle", got)
	}

	resp = doJSON(t, s, http.MethodPost, "/api/mode", ModeRequest{Mode: "dancing"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown mode status = %d, want 400", resp.StatusCode)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/api/profile", nil)
	var p visual.Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.Kind != visual.LayoutParticleRing {
		t.Errorf("default kind = %v", p.Kind)
	}

	p.Name = "Nebula"
	p.Kind = visual.LayoutSphere
	resp = doJSON(t, s, http.MethodPut, "/api/profile", p)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d", resp.StatusCode)
	}
	if got := s.engine.Profile().Kind; got != visual.LayoutSphere {
		t.Errorf("engine kind = %v, want sphere", got)
	}

	p.Kind = "hypercube"
	resp = doJSON(t, s, http.MethodPut, "/api/profile", p)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid kind status = %d, want 400", resp.StatusCode)
	}
}

func TestPutProfileWithNegativeDensitySurvives(t *testing.T) {
	s := newTestServer(t)

	p := s.engine.Profile()
	p.Settings.Density = -1
	resp := doJSON(t, s, http.MethodPut, "/api/profile", p)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put status = %d", resp.StatusCode)
	}

	// The server is still serving and the population collapsed to
	// empty instead of crashing.
	resp = doJSON(t, s, http.MethodGet, "/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status after bad profile = %d", resp.StatusCode)
	}
}

func TestConnectWithoutCredentialFails(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/connect", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] == "" {
		t.Error("expected a human-readable error")
	}
}

func TestThemeEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodPost, "/api/theme", ThemeRequest{Theme: "light"})
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d, want 204", resp.StatusCode)
	}

	resp = doJSON(t, s, http.MethodPost, "/api/theme", ThemeRequest{Theme: "sepia"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown theme status = %d, want 400", resp.StatusCode)
	}
}

func TestDisconnectClearsOverride(t *testing.T) {
	s := newTestServer(t)

	doJSON(t, s, http.MethodPost, "/api/mode", ModeRequest{Mode: "searching"})
	doJSON(t, s, http.MethodPost, "/api/disconnect", nil)

	if got := s.EffectiveMode(); got != session.ModeIdle {
		t.Errorf("effective mode = %v, want idle", got)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET / status = %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp := doJSON(t, s, http.MethodGet, "/api/metrics", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var m session.Metrics
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
}
