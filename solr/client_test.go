package solr

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type capture struct {
	method string
	path   string
	query  string
	body   []byte
}

func newServer(t *testing.T, status int) (*httptest.Server, *capture) {
	t.Helper()
	cap := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cap.method = r.Method
		cap.path = r.URL.Path
		cap.query = r.URL.RawQuery
		cap.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, cap
}

func TestAdd(t *testing.T) {
	srv, cap := newServer(t, http.StatusOK)
	c := NewClient(srv.URL)

	docs := []Document{{"id": "source_1", "title_s": "Sonatas"}}
	if err := c.Add(context.Background(), "staging", docs); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if cap.path != "/solr/staging/update" {
		t.Fatalf("Add path = %q", cap.path)
	}
	var sent []Document
	if err := json.Unmarshal(cap.body, &sent); err != nil {
		t.Fatalf("Add body is not a JSON array: %v", err)
	}
	if len(sent) != 1 || sent[0].ID() != "source_1" {
		t.Fatalf("Add sent %v", sent)
	}
}

func TestAddStatusError(t *testing.T) {
	srv, _ := newServer(t, http.StatusBadRequest)
	c := NewClient(srv.URL)

	err := c.Add(context.Background(), "staging", []Document{{"id": "x"}})
	se, ok := err.(StatusError)
	if !ok {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusBadRequest {
		t.Fatalf("StatusError code = %d", se.Code)
	}
}

func TestDeleteByQuery(t *testing.T) {
	srv, cap := newServer(t, http.StatusOK)
	c := NewClient(srv.URL)

	if err := c.DeleteByQuery(context.Background(), "live", "project_s:muscat"); err != nil {
		t.Fatalf("DeleteByQuery: %v", err)
	}
	var body map[string]map[string]string
	if err := json.Unmarshal(cap.body, &body); err != nil {
		t.Fatalf("delete body: %v", err)
	}
	if body["delete"]["query"] != "project_s:muscat" {
		t.Fatalf("delete body = %v", body)
	}
}

func TestAdminOps(t *testing.T) {
	srv, cap := newServer(t, http.StatusOK)
	c := NewClient(srv.URL)

	if err := c.Reload(context.Background(), "staging"); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cap.path != "/solr/admin/cores" || cap.query != "action=RELOAD&core=staging" {
		t.Fatalf("Reload request = %q?%q", cap.path, cap.query)
	}

	if err := c.Swap(context.Background(), "staging", "live"); err != nil {
		t.Fatalf("Swap: %v", err)
	}
	if cap.query != "action=SWAP&core=staging&other=live" {
		t.Fatalf("Swap query = %q", cap.query)
	}
}
