package opensearch

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/redhat/virt-capacity-benchmark/feeder/config"
	"github.com/redhat/virt-capacity-benchmark/feeder/opensearch/opensearchtest"
)

func TestEnsureIndexTemplate(t *testing.T) {
	srv := opensearchtest.New()
	defer srv.Close()

	c := newTestClient(t, config.Default().WithURL(srv.URL))
	defer c.Close()

	if err := c.EnsureIndexTemplate(context.Background(), "test-idx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls := srv.TemplateCalls(); calls != 1 {
		t.Fatalf("expected 1 template request, got %d", calls)
	}

	// Only bulk requests carry the newline-delimited content type.
	if ct := srv.TemplateContentType(); ct != "application/json" {
		t.Errorf("expected application/json for the template request, got %q", ct)
	}

	var tpl struct {
		IndexPatterns []string `json:"index_patterns"`
		Template      struct {
			Settings map[string]any `json:"settings"`
			Mappings struct {
				Properties map[string]map[string]any `json:"properties"`
			} `json:"mappings"`
		} `json:"template"`
	}
	if err := json.Unmarshal(srv.TemplateBody(), &tpl); err != nil {
		t.Fatalf("failed to decode template body: %v", err)
	}

	if len(tpl.IndexPatterns) != 1 || tpl.IndexPatterns[0] != "test-idx*" {
		t.Errorf("expected index pattern test-idx*, got %v", tpl.IndexPatterns)
	}

	props := tpl.Template.Mappings.Properties
	checks := map[string]string{
		"@timestamp":      "date",
		"timestamp":       "date",
		"uuid":            "keyword",
		"dataType":        "keyword",
		"source":          "keyword",
		"jobIteration":    "keyword",
		"replica":         "keyword",
		"vmReadyLatency":  "float",
		"dvBoundLatency":  "float",
		"podReadyLatency": "float",
	}
	for field, wantType := range checks {
		p, ok := props[field]
		if !ok {
			t.Errorf("expected mapping for %s", field)
			continue
		}
		if p["type"] != wantType {
			t.Errorf("expected %s mapped as %s, got %v", field, wantType, p["type"])
		}
	}

	if _, ok := props["metadata"]; !ok {
		t.Error("expected nested metadata mapping")
	}
}

func TestEnsureIndexTemplate_Failure(t *testing.T) {
	srv := opensearchtest.New()
	defer srv.Close()
	srv.TemplateStatus = 500

	c := newTestClient(t, config.Default().WithURL(srv.URL))
	defer c.Close()

	if err := c.EnsureIndexTemplate(context.Background(), "test-idx"); err == nil {
		t.Error("expected error for rejected template")
	}
}
