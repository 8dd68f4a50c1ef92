package workflow_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kendevco/discordant/internal/workflow"
)

func TestDispatchSendsHeadersAndPayload(t *testing.T) {
	var gotHeaders http.Header
	var gotPayload workflow.Payload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := workflow.NewDispatcher(workflow.DispatcherOptions{Endpoint: srv.URL})

	route := workflow.Route("schedule a meeting", false)
	payload := workflow.NewPayload("schedule a meeting", route, "chan-1", "srv-1", "msg-42")

	if err := d.Dispatch(context.Background(), payload); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if got := gotHeaders.Get("X-Workflow-Id"); got != route.WorkflowID {
		t.Fatalf("X-Workflow-Id = %q, want %q", got, route.WorkflowID)
	}
	if got := gotHeaders.Get("X-Webhook-Path"); got != route.WebhookPath {
		t.Fatalf("X-Webhook-Path = %q, want %q", got, route.WebhookPath)
	}
	if got := gotHeaders.Get("User-Agent"); got != "Discordant-Chat-App/1.0" {
		t.Fatalf("User-Agent = %q", got)
	}
	if got := gotHeaders.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q", got)
	}

	if gotPayload.ProcessingMessageID != "msg-42" {
		t.Fatalf("processingMessageId = %q, want msg-42", gotPayload.ProcessingMessageID)
	}
	if gotPayload.ChannelID != "chan-1" || gotPayload.ServerID != "srv-1" {
		t.Fatalf("payload ids = %q/%q", gotPayload.ChannelID, gotPayload.ServerID)
	}
}

func TestDispatchNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "workflow exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	d := workflow.NewDispatcher(workflow.DispatcherOptions{Endpoint: srv.URL})
	payload := workflow.NewPayload("x", workflow.Route("x", false), "chan-1", "", "msg-1")

	if err := d.Dispatch(context.Background(), payload); err == nil {
		t.Fatal("expected error on HTTP 502")
	}
}

func TestDispatchTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	d := workflow.NewDispatcher(workflow.DispatcherOptions{
		Endpoint: srv.URL,
		Timeout:  50 * time.Millisecond,
	})
	payload := workflow.NewPayload("x", workflow.Route("x", false), "chan-1", "", "msg-1")

	start := time.Now()
	err := d.Dispatch(context.Background(), payload)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("dispatch did not honor its deadline, took %v", elapsed)
	}
}
