// Package appwritetest provides an in-memory fake of the Appwrite Databases
// REST API for tests, compatible with the official Go SDK.
package appwritetest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"
)

// Server is an httptest server speaking the subset of the Appwrite
// Databases API used by the appwrite storage backend.
type Server struct {
	*httptest.Server

	ProjectID  string
	DatabaseID string
	APIKey     string

	mu     sync.Mutex
	docs   map[string]map[string]map[string]any // collection -> id -> document
	order  map[string][]string                  // collection -> insertion order
	failed []int                                // queued status codes to return
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		ProjectID:  "focusflow-test",
		DatabaseID: "focusflow",
		APIKey:     "test-key",
		docs:       make(map[string]map[string]map[string]any),
		order:      make(map[string][]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint returns the API base URL, including the /v1 prefix.
func (s *Server) Endpoint() string {
	return s.URL + "/v1"
}

// FailNext makes the next request fail with the given HTTP status.
func (s *Server) FailNext(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, status)
}

// Count returns the number of documents stored in a collection.
func (s *Server) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs[collection])
}

// Document returns a copy of a stored document, or nil.
func (s *Server) Document(collection, id string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return nil
	}
	return clone(doc)
}

func clone(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, map[string]any{"message": msg, "code": status, "type": typ})
}

type query struct {
	Method    string `json:"method"`
	Attribute string `json:"attribute"`
	Values    []any  `json:"values"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.failed) > 0 {
		status := s.failed[0]
		s.failed = s.failed[1:]
		writeError(w, status, "general_server_error", "injected failure")
		return
	}
	if r.Header.Get("X-Appwrite-Project") != s.ProjectID {
		writeError(w, http.StatusUnauthorized, "project_not_found", "Project not found")
		return
	}
	if s.APIKey != "" && r.Header.Get("X-Appwrite-Key") != s.APIKey {
		writeError(w, http.StatusUnauthorized, "user_unauthorized", "Invalid API key")
		return
	}

	// /v1/databases/{db}/collections/{col}/documents[/{id}]
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v1/databases/"), "/")
	if len(parts) < 4 || parts[1] != "collections" || parts[3] != "documents" {
		writeError(w, http.StatusNotFound, "general_route_not_found", "Route not found")
		return
	}
	if parts[0] != s.DatabaseID {
		writeError(w, http.StatusNotFound, "database_not_found", "Database not found")
		return
	}
	collection := parts[2]
	id := ""
	if len(parts) > 4 {
		id = parts[4]
	}

	switch {
	case r.Method == http.MethodPost && id == "":
		s.create(w, r, collection)
	case r.Method == http.MethodGet && id == "":
		s.list(w, r, collection)
	case r.Method == http.MethodGet:
		s.get(w, collection, id)
	case r.Method == http.MethodPatch:
		s.update(w, r, collection, id)
	case r.Method == http.MethodDelete:
		s.delete(w, collection, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "general_not_implemented", "Method not allowed")
	}
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, collection string) {
	var body struct {
		DocumentID string         `json:"documentId"`
		Data       map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "document_invalid_structure", "Invalid document structure")
		return
	}
	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string]map[string]any)
	}
	if _, ok := s.docs[collection][body.DocumentID]; ok {
		writeError(w, http.StatusConflict, "document_already_exists", "Document with the requested ID already exists.")
		return
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	doc := clone(body.Data)
	doc["$id"] = body.DocumentID
	doc["$collectionId"] = collection
	doc["$databaseId"] = s.DatabaseID
	doc["$createdAt"] = now
	doc["$updatedAt"] = now
	s.docs[collection][body.DocumentID] = doc
	s.order[collection] = append(s.order[collection], body.DocumentID)
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) get(w http.ResponseWriter, collection, id string) {
	doc, ok := s.docs[collection][id]
	if !ok {
		writeError(w, http.StatusNotFound, "document_not_found", "Document with the requested ID could not be found.")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, collection string) {
	var (
		filters       []query
		limit, offset = 25, 0
	)
	for _, raw := range queries(r) {
		var q query
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			writeError(w, http.StatusBadRequest, "general_query_invalid", "Invalid query: "+raw)
			return
		}
		switch q.Method {
		case "equal":
			filters = append(filters, q)
		case "limit":
			if len(q.Values) == 1 {
				limit = int(q.Values[0].(float64))
			}
		case "offset":
			if len(q.Values) == 1 {
				offset = int(q.Values[0].(float64))
			}
		default:
			writeError(w, http.StatusBadRequest, "general_query_invalid", "Unsupported query method: "+q.Method)
			return
		}
	}

	var matched []map[string]any
	for _, id := range s.order[collection] {
		doc, ok := s.docs[collection][id]
		if !ok {
			continue
		}
		if matches(doc, filters) {
			matched = append(matched, doc)
		}
	}
	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	if matched == nil {
		matched = []map[string]any{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "documents": matched})
}

// queries collects the queries parameter whether the client sent it as
// queries[] or as indexed queries[0], queries[1].
func queries(r *http.Request) []string {
	values := r.URL.Query()
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "queries" || strings.HasPrefix(k, "queries[") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		out = append(out, values[k]...)
	}
	return out
}

func matches(doc map[string]any, filters []query) bool {
	for _, f := range filters {
		got := fmt.Sprint(doc[f.Attribute])
		ok := false
		for _, v := range f.Values {
			if fmt.Sprint(v) == got {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, collection, id string) {
	doc, ok := s.docs[collection][id]
	if !ok {
		writeError(w, http.StatusNotFound, "document_not_found", "Document with the requested ID could not be found.")
		return
	}
	var body struct {
		Data map[string]any `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "document_invalid_structure", "Invalid document structure")
		return
	}
	for k, v := range body.Data {
		if strings.HasPrefix(k, "$") {
			continue
		}
		doc[k] = v
	}
	doc["$updatedAt"] = time.Now().UTC().Format(time.RFC3339Nano)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) delete(w http.ResponseWriter, collection, id string) {
	if _, ok := s.docs[collection][id]; !ok {
		writeError(w, http.StatusNotFound, "document_not_found", "Document with the requested ID could not be found.")
		return
	}
	delete(s.docs[collection], id)
	order := s.order[collection][:0]
	for _, oid := range s.order[collection] {
		if oid != id {
			order = append(order, oid)
		}
	}
	s.order[collection] = order
	w.WriteHeader(http.StatusNoContent)
}
