// Package feeder uploads kube-burner measurement results to OpenSearch.
//
// A run reads one JSON results file, classifies every record by the latency
// markers it carries, normalizes the record for indexing, routes it to a
// type-specific index, and submits everything in bulk.
//
// # Quick Start
//
// Create a feeder from the environment and upload a results file:
//
//	f, err := feeder.New(nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	summary, err := f.Run(context.Background(), "results/vmiLatencyMeasurement.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("uploaded %d/%d documents\n", summary.Succeeded, summary.Attempted)
//
// # Configuration
//
// Explicit configuration overrides the environment:
//
//	cfg := config.Default().
//	    WithURL("https://opensearch.example.com:9200").
//	    WithPassword("secret").
//	    WithIndexPrefix("capacity-results")
//
//	f, err := feeder.New(cfg, feeder.WithLogger(logger))
//
// # Partial Failures
//
// The store may reject individual documents while accepting the rest. Run
// reports rejections in the Summary and still returns nil as long as at
// least one document was indexed; only an unreachable store, bad
// credentials, or a fully rejected upload fail the run.
//
// # Package Structure
//
// The feeder is organized into subpackages:
//
//   - config: Centralized configuration with environment variable support
//   - records: Results-file loading, classification, and normalization
//   - opensearch: Store client, index templates, and bulk submission
//   - routes: OpenShift route discovery for in-cluster stores
package feeder
