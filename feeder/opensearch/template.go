package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// TemplateName is the composable index template installed before the first
// bulk write of a run
const TemplateName = "kube-burner-template"

// Shared metadata fields present on documents of every data type
var keywordFields = []string{
	"metricName",
	"uuid",
	"namespace",
	"jobName",
	"jobIteration",
	"replica",
	"source",
	"dataType",
	"organizationID",
	"podName",
	"nodeName",
	"vmName",
	"vmiName",
	"dvName",
}

// Latency measurements across the known record shapes, indexed as floats so
// sub-second values survive
var latencyFields = []string{
	"podCreatedLatency",
	"podReadyLatency",
	"podScheduledLatency",
	"podInitializedLatency",
	"podContainersReadyLatency",
	"vmiCreatedLatency",
	"vmiPendingLatency",
	"vmiSchedulingLatency",
	"vmiScheduledLatency",
	"vmiRunningLatency",
	"vmReadyLatency",
	"dvBoundLatency",
	"dvRunningLatency",
	"dvReadyLatency",
}

// indexTemplate builds one flexible template covering all data-type indices
// under the prefix
func indexTemplate(prefix string) map[string]any {
	properties := map[string]any{
		"@timestamp": map[string]any{"type": "date"},
		"timestamp":  map[string]any{"type": "date"},
		"metadata": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"ocpMajorVersion": map[string]any{"type": "keyword"},
				"ocpVersion":      map[string]any{"type": "keyword"},
			},
		},
	}
	for _, f := range keywordFields {
		properties[f] = map[string]any{"type": "keyword"}
	}
	for _, f := range latencyFields {
		properties[f] = map[string]any{"type": "float"}
	}

	return map[string]any{
		"index_patterns": []string{prefix + "*"},
		"template": map[string]any{
			"settings": map[string]any{
				"number_of_shards":       1,
				"number_of_replicas":     1,
				"index.refresh_interval": "30s",
			},
			"mappings": map[string]any{
				"properties": properties,
			},
		},
	}
}

// EnsureIndexTemplate installs the index template for the given prefix.
// Indices created by later bulk writes pick up its mappings; a failure here
// leaves the store auto-creating indices with dynamic mappings, so callers
// treat it as non-fatal.
func (c *Client) EnsureIndexTemplate(ctx context.Context, prefix string) error {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	body, err := json.Marshal(indexTemplate(prefix))
	if err != nil {
		return fmt.Errorf("failed to encode index template: %w", err)
	}

	res, err := opensearchapi.IndicesPutIndexTemplateRequest{
		Name: TemplateName,
		Body: bytes.NewReader(body),
	}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("failed to put index template: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index template rejected with status %s: %s", res.Status(), readBody(res.Body))
	}

	io.Copy(io.Discard, res.Body)
	return nil
}
