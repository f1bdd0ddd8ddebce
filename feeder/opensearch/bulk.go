package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// Document is one normalized record bound for a specific index
type Document struct {
	Index string
	Body  any
}

// DocumentError describes one document the store rejected inside an
// otherwise accepted bulk batch
type DocumentError struct {
	Index  string
	Status int
	Type   string
	Reason string
}

func (e DocumentError) String() string {
	return fmt.Sprintf("%s: status %d, %s: %s", e.Index, e.Status, e.Type, e.Reason)
}

// Result aggregates the per-item outcomes of all bulk writes in one run
type Result struct {
	Attempted int
	Succeeded int
	Failed    int
	Failures  []DocumentError
}

// bulkAction is the NDJSON action line preceding each document
type bulkAction struct {
	Index bulkActionMeta `json:"index"`
}

type bulkActionMeta struct {
	Index string `json:"_index"`
}

// bulkResponse is the store's reply to one _bulk request
type bulkResponse struct {
	Took   int                           `json:"took"`
	Errors bool                          `json:"errors"`
	Items  []map[string]bulkResponseItem `json:"items"`
}

type bulkResponseItem struct {
	Index  string `json:"_index"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

// SubmitAll bulk-writes the documents, one request per destination index so
// each batch stays small and self-contained. Individual rejections are
// collected into the Result and never abort the remaining batches; only
// transport or whole-request failures return an error.
func (c *Client) SubmitAll(ctx context.Context, docs []Document) (*Result, error) {
	result := &Result{Attempted: len(docs)}

	// Group by destination index, preserving first-seen order so batch
	// order is deterministic.
	var order []string
	groups := make(map[string][]Document)
	for _, doc := range docs {
		if _, ok := groups[doc.Index]; !ok {
			order = append(order, doc.Index)
		}
		groups[doc.Index] = append(groups[doc.Index], doc)
	}

	for _, index := range order {
		batch, err := c.submitBatch(ctx, index, groups[index])
		if err != nil {
			return nil, err
		}
		result.Succeeded += batch.Succeeded
		result.Failed += batch.Failed
		result.Failures = append(result.Failures, batch.Failures...)
	}

	return result, nil
}

func (c *Client) submitBatch(ctx context.Context, index string, docs []Document) (*Result, error) {
	ctx, cancel := c.opContext(ctx)
	defer cancel()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		if err := enc.Encode(bulkAction{Index: bulkActionMeta{Index: doc.Index}}); err != nil {
			return nil, fmt.Errorf("failed to encode bulk action for %s: %w", index, err)
		}
		if err := enc.Encode(doc.Body); err != nil {
			return nil, fmt.Errorf("failed to encode document for %s: %w", index, err)
		}
	}

	res, err := opensearchapi.BulkRequest{Body: &buf}.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("bulk write to %s failed: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("bulk write to %s rejected with status %s: %s", index, res.Status(), readBody(res.Body))
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode bulk response from %s: %w", index, err)
	}

	batch := &Result{}
	for _, item := range parsed.Items {
		// Each item holds a single key matching the action that produced it.
		for _, detail := range item {
			if detail.Status >= 300 {
				batch.Failed++
				failure := DocumentError{Index: detail.Index, Status: detail.Status}
				if failure.Index == "" {
					failure.Index = index
				}
				if detail.Error != nil {
					failure.Type = detail.Error.Type
					failure.Reason = detail.Error.Reason
				}
				batch.Failures = append(batch.Failures, failure)
			} else {
				batch.Succeeded++
			}
		}
	}

	return batch, nil
}
