package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendSSEEvent(t *testing.T) {
	rec := httptest.NewRecorder()
	SetupSSEHeaders(rec)

	if err := SendSSEEvent(rec, rec, "render", "evt-1", map[string]int{"slot": 2}); err != nil {
		t.Fatalf("SendSSEEvent err: %v", err)
	}
	if err := SendSSEComment(rec, rec, "ping"); err != nil {
		t.Fatalf("SendSSEComment err: %v", err)
	}

	want := "id: evt-1\nevent: render\ndata: {\"slot\":2}\n\n: ping\n\n"
	if got := rec.Body.String(); got != want {
		t.Fatalf("unexpected body:\n%q\nwant\n%q", got, want)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !rec.Flushed {
		t.Fatal("expected flush")
	}
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := RespondError(rec, http.StatusBadRequest, "bad"); err != nil {
		t.Fatalf("RespondError err: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"error\":\"bad\"}\n" {
		t.Fatalf("unexpected body %q", got)
	}
}
