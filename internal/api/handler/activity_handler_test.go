package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stockroom/inventory-system/internal/core/domain"
)

type stubActivityService struct {
	gotLimit int
	entries  []*domain.Activity
}

func (s *stubActivityService) Process(context.Context, domain.Activity) error { return nil }

func (s *stubActivityService) Recent(_ context.Context, limit int) ([]*domain.Activity, error) {
	s.gotLimit = limit
	return s.entries, nil
}

func TestActivityHandler_Recent(t *testing.T) {
	stub := &stubActivityService{entries: []*domain.Activity{
		{ID: "a2", Action: domain.ActionLogout, ActorID: "u1"},
		{ID: "a1", Action: domain.ActionLogin, ActorID: "u1"},
	}}
	handler := NewActivityHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/api/activitylogs?limit=2", "")
	if err := handler.Recent(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if stub.gotLimit != 2 {
		t.Fatalf("expected limit 2, got %d", stub.gotLimit)
	}

	var got []domain.Activity
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a2" {
		t.Fatalf("unexpected activities %+v", got)
	}
}

func TestActivityHandler_EmptyIsArray(t *testing.T) {
	handler := NewActivityHandler(&stubActivityService{})

	c, rec := newTestContext(http.MethodGet, "/api/activitylogs", "")
	if err := handler.Recent(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}

func TestActivityHandler_BadLimit(t *testing.T) {
	handler := NewActivityHandler(&stubActivityService{})

	for _, q := range []string{"abc", "-1"} {
		c, _ := newTestContext(http.MethodGet, "/api/activitylogs?limit="+q, "")
		if code := httpStatus(t, handler.Recent(c)); code != http.StatusBadRequest {
			t.Fatalf("limit=%s: expected 400, got %d", q, code)
		}
	}
}
