package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/novesfi/canton-sentinel/internal/alerting/registry"
	"github.com/novesfi/canton-sentinel/internal/alerting/state"
)

func testRouter(t *testing.T, instances []*registry.Instance, store state.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	New(router, instances, store, nil)
	return router
}

func TestListAlerts(t *testing.T) {
	store := state.NewMemoryStore()
	id := state.InstanceID{Family: "concentration", Index: 1}
	if err := store.Set(context.Background(), id, state.Record{Status: state.StatusTriggered}); err != nil {
		t.Fatal(err)
	}
	instances := []*registry.Instance{
		{ID: id, Name: "Top 2 Concentration", Interval: 30 * time.Minute},
		{ID: state.InstanceID{Family: "traffic"}, Name: "Canton Traffic Monitor", Interval: 10 * time.Minute},
	}
	router := testRouter(t, instances, store)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/alerts", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Alerts []struct {
			Family string `json:"family"`
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Alerts) != 2 {
		t.Fatalf("alerts = %+v", body.Alerts)
	}
	if body.Alerts[0].Status != "triggered" {
		t.Fatalf("stored status not reflected: %+v", body.Alerts[0])
	}
	if body.Alerts[1].Status != "normal" {
		t.Fatalf("absent record must read as normal: %+v", body.Alerts[1])
	}
}

func TestListSnapshotsRequiresFamily(t *testing.T) {
	router := testRouter(t, nil, state.NewMemoryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/snapshots", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestListSnapshotsWithoutDB(t *testing.T) {
	router := testRouter(t, nil, state.NewMemoryStore())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/snapshots?family=concentration&index=1", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want empty ok response", w.Code)
	}
}
