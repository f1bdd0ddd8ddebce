// Package opensearchtest provides a fake OpenSearch server covering the
// endpoints an upload run touches: the root info endpoint, composable index
// templates, and _bulk. Tests point a real client at Server.URL and inspect
// what arrived.
package opensearchtest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Failure makes the fake store reject a single document inside an otherwise
// accepted bulk request
type Failure struct {
	Status int
	Type   string
	Reason string
}

// Received is one action/document pair accepted by the bulk endpoint, in
// arrival order
type Received struct {
	Index    string
	Document map[string]any
}

// Server emulates OpenSearch for upload tests
type Server struct {
	*httptest.Server

	// Reject, when set, is consulted once per incoming document; a non-nil
	// result becomes a per-item error in the bulk response. Set it before
	// issuing requests.
	Reject func(index string, doc map[string]any) *Failure

	// InfoStatus, TemplateStatus and BulkStatus override the HTTP status
	// of the respective endpoints when non-zero.
	InfoStatus     int
	TemplateStatus int
	BulkStatus     int

	mu                  sync.Mutex
	received            []Received
	templateCalls       int
	templateBody        []byte
	templateContentType string
	bulkCalls           int
	bulkContentType     string
	lastAuth            string
}

// New starts a fake server. Callers own its lifetime and must Close it.
func New() *Server {
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Received returns a copy of every document accepted so far
func (s *Server) Received() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Received, len(s.received))
	copy(out, s.received)
	return out
}

// ReceivedByIndex returns the number of accepted documents per index
func (s *Server) ReceivedByIndex() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range s.received {
		counts[r.Index]++
	}
	return counts
}

// TemplateCalls returns how many times the index-template endpoint was hit
func (s *Server) TemplateCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateCalls
}

// TemplateBody returns the body of the last index-template request
func (s *Server) TemplateBody() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateBody
}

// TemplateContentType returns the Content-Type of the last index-template
// request, with repeated header values joined
func (s *Server) TemplateContentType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateContentType
}

// BulkCalls returns how many bulk requests arrived
func (s *Server) BulkCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulkCalls
}

// BulkContentType returns the Content-Type of the last bulk request, with
// repeated header values joined so a duplicated header fails an equality
// check
func (s *Server) BulkContentType() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bulkContentType
}

// LastAuthorization returns the Authorization header of the most recent
// request, empty when the client sent none
func (s *Server) LastAuthorization() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAuth
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.lastAuth = r.Header.Get("Authorization")
	s.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		s.handleInfo(w)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/_index_template/"):
		s.handleTemplate(w, r)
	case strings.HasSuffix(r.URL.Path, "/_bulk"):
		s.handleBulk(w, r)
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("unhandled path %s %s", r.Method, r.URL.Path),
		})
	}
}

func (s *Server) handleInfo(w http.ResponseWriter) {
	if s.InfoStatus != 0 {
		writeJSON(w, s.InfoStatus, map[string]any{
			"error": map[string]any{
				"type":   "security_exception",
				"reason": "authentication required",
			},
			"status": s.InfoStatus,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         "opensearchtest",
		"cluster_name": "opensearchtest",
		"version": map[string]any{
			"distribution": "opensearch",
			"number":       "2.11.1",
		},
	})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	var body bytes.Buffer
	body.ReadFrom(r.Body)

	s.mu.Lock()
	s.templateCalls++
	s.templateBody = body.Bytes()
	s.templateContentType = strings.Join(r.Header.Values("Content-Type"), ", ")
	s.mu.Unlock()

	if s.TemplateStatus != 0 {
		writeJSON(w, s.TemplateStatus, map[string]any{"error": "template rejected"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.bulkCalls++
	s.bulkContentType = strings.Join(r.Header.Values("Content-Type"), ", ")
	s.mu.Unlock()

	if s.BulkStatus != 0 {
		writeJSON(w, s.BulkStatus, map[string]any{"error": "bulk rejected"})
		return
	}

	items, errored, err := s.scanBulkBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"took":   3,
		"errors": errored,
		"items":  items,
	})
}

// scanBulkBody walks the NDJSON action/document pairs, records every
// document, and builds the per-item response entries
func (s *Server) scanBulkBody(r *http.Request) ([]map[string]any, bool, error) {
	scanner := bufio.NewScanner(r.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var items []map[string]any
	errored := false

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var action map[string]struct {
			Index string `json:"_index"`
		}
		if err := json.Unmarshal(line, &action); err != nil {
			return nil, false, fmt.Errorf("malformed action line: %w", err)
		}
		if len(action) != 1 {
			return nil, false, fmt.Errorf("action line must hold exactly one operation, got %d", len(action))
		}

		var opType, index string
		for k, v := range action {
			opType, index = k, v.Index
		}

		if !scanner.Scan() {
			return nil, false, fmt.Errorf("action for %s has no document line", index)
		}
		var doc map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &doc); err != nil {
			return nil, false, fmt.Errorf("malformed document line: %w", err)
		}

		item := map[string]any{"_index": index, "status": http.StatusCreated}
		if s.Reject != nil {
			if failure := s.Reject(index, doc); failure != nil {
				errored = true
				item["status"] = failure.Status
				item["error"] = map[string]any{
					"type":   failure.Type,
					"reason": failure.Reason,
				}
				items = append(items, map[string]any{opType: item})
				continue
			}
		}

		s.mu.Lock()
		s.received = append(s.received, Received{Index: index, Document: doc})
		s.mu.Unlock()

		items = append(items, map[string]any{opType: item})
	}

	if err := scanner.Err(); err != nil {
		return nil, false, err
	}
	return items, errored, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
