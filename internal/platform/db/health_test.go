package db

import (
	"encoding/json"
	"testing"
)

func TestHealthResponse_JSONShape(t *testing.T) {
	resp := healthResponse{
		Status: "healthy",
		Pool: PoolSnapshot{
			Total:     8,
			Idle:      6,
			InUse:     2,
			Max:       20,
			WaitCount: 143,
			WaitTime:  "250ms",
		},
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", got["status"])
	}
	if _, present := got["error"]; present {
		t.Error("error key must be omitted for a healthy response")
	}
	pool, ok := got["pool"].(map[string]interface{})
	if !ok {
		t.Fatalf("pool = %v, want an object", got["pool"])
	}
	if pool["in_use"].(float64) != 2 {
		t.Errorf("pool.in_use = %v, want 2", pool["in_use"])
	}
	if pool["wait_time"] != "250ms" {
		t.Errorf("pool.wait_time = %v, want 250ms", pool["wait_time"])
	}
}

func TestHealthResponse_ErrorIncluded(t *testing.T) {
	resp := healthResponse{Status: "unhealthy", Error: "connection refused"}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["status"] != "unhealthy" {
		t.Errorf("status = %v, want unhealthy", got["status"])
	}
	if got["error"] != "connection refused" {
		t.Errorf("error = %v, want the ping failure", got["error"])
	}
}
