package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/netfab/bdscan/internal/discovery"
	"github.com/netfab/bdscan/internal/domain"
	"github.com/netfab/bdscan/internal/httpserver/deps"
	"github.com/netfab/bdscan/internal/index"
	"github.com/netfab/bdscan/internal/logger"
)

func testDeps() deps.Deps {
	return deps.Deps{
		Logger:      logger.Nop(),
		StartTime:   time.Now(),
		Version:     "test",
		MemoryIndex: index.NewMemoryIndex(),
	}
}

func TestHealthz(t *testing.T) {
	d := testDeps()
	rec := httptest.NewRecorder()

	Healthz(d)(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestReadyzBeforeFirstRun(t *testing.T) {
	d := testDeps()
	rec := httptest.NewRecorder()

	Readyz(d)(rec, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 before the first pipeline run", rec.Code)
	}
}

func TestReadyzAfterRun(t *testing.T) {
	d := testDeps()
	d.MemoryIndex.SetLastRun(&discovery.RunReport{})
	rec := httptest.NewRecorder()

	Readyz(d)(rec, httptest.NewRequest("GET", "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 after a run", rec.Code)
	}
}

func TestInstancesList(t *testing.T) {
	d := testDeps()
	d.MemoryIndex.UpdateInstances([]*domain.ServiceInstance{
		{Name: "g_bob_v200", Signature: "global:bob:vlan:200"},
		{Name: "g_alice_v100", Signature: "global:alice:vlan:100"},
	})
	rec := httptest.NewRecorder()

	Instances(d)(rec, httptest.NewRequest("GET", "/instances", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Count     int                       `json:"count"`
		Instances []*domain.ServiceInstance `json:"instances"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Count != 2 {
		t.Errorf("count = %d, want 2", body.Count)
	}
	if body.Instances[0].Signature != "global:alice:vlan:100" {
		t.Errorf("instances not sorted by signature: %q first", body.Instances[0].Signature)
	}
}

func TestInstancesLookupBySignature(t *testing.T) {
	d := testDeps()
	d.MemoryIndex.UpdateInstances([]*domain.ServiceInstance{
		{Name: "g_alice_v100", Signature: "global:alice:vlan:100"},
	})

	rec := httptest.NewRecorder()
	Instances(d)(rec, httptest.NewRequest("GET", "/instances?signature=global:alice:vlan:100", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for a known signature", rec.Code)
	}

	rec = httptest.NewRecorder()
	Instances(d)(rec, httptest.NewRequest("GET", "/instances?signature=global:nobody:vlan:1", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an unknown signature", rec.Code)
	}
}

func TestReviewList(t *testing.T) {
	d := testDeps()
	d.MemoryIndex.UpdateReview([]*domain.ServiceInstance{{Name: "hybrid_thing"}})
	rec := httptest.NewRecorder()

	Review(d)(rec, httptest.NewRequest("GET", "/review", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body.Count != 1 {
		t.Errorf("count = %d, want 1", body.Count)
	}
}

func TestGroupsWithoutRun(t *testing.T) {
	d := testDeps()
	rec := httptest.NewRecorder()

	Groups(d)(rec, httptest.NewRequest("GET", "/groups", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 before the first run", rec.Code)
	}
}

func TestReloadTrigger(t *testing.T) {
	d := testDeps()
	d.ReloadTrigger = make(chan struct{}, 1)

	rec := httptest.NewRecorder()
	Reload(d)(rec, httptest.NewRequest("POST", "/reload", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202 on first trigger", rec.Code)
	}

	// The buffered trigger is full now: a second request gets throttled.
	rec = httptest.NewRecorder()
	Reload(d)(rec, httptest.NewRequest("POST", "/reload", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 while a reload is pending", rec.Code)
	}
}

func TestConsolidateTrigger(t *testing.T) {
	d := testDeps()
	d.RunTrigger = make(chan struct{}, 1)

	rec := httptest.NewRecorder()
	Consolidate(d)(rec, httptest.NewRequest("POST", "/consolidate", nil))
	if rec.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202 on first trigger", rec.Code)
	}

	select {
	case <-d.RunTrigger:
	default:
		t.Error("trigger channel should carry the queued run")
	}
}
