package api_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/xraph/forge"

	"github.com/xraph/scribe/api"
)

func forgeServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()

	s := newScribe(t, calls)
	srv := httptest.NewServer(api.NewForgeAPI(s, "/notion", forge.NewNoopLogger()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestForgeListProcessors(t *testing.T) {
	var calls atomic.Int32
	srv := forgeServer(t, &calls)

	resp, err := http.Get(srv.URL + "/notion/processors")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got []api.ProcessorInfo
	decodeBody(t, resp, &got)
	if len(got) != 1 || got[0].ID != "summarize" || got[0].Name != "Summarize pages" {
		t.Errorf("processors = %+v", got)
	}
}

func TestForgeMatch(t *testing.T) {
	var calls atomic.Int32
	srv := forgeServer(t, &calls)

	resp, err := http.Post(srv.URL+"/notion/match", "application/json", bytes.NewBufferString(pageCreated))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got api.MatchResponse
	decodeBody(t, resp, &got)
	if got.EventType != "page.created" || len(got.Matched) != 1 || got.Matched[0].ID != "summarize" {
		t.Errorf("match = %+v", got)
	}
	if calls.Load() != 0 {
		t.Errorf("match ran %d executors", calls.Load())
	}
}

func TestForgeHealth(t *testing.T) {
	var calls atomic.Int32
	srv := forgeServer(t, &calls)

	resp, err := http.Get(srv.URL + "/notion/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var h api.HealthResponse
	decodeBody(t, resp, &h)
	if h.Status != "ok" || h.Processors != 1 {
		t.Errorf("health = %+v", h)
	}
}
