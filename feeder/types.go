package feeder

import (
	"time"

	"github.com/redhat/virt-capacity-benchmark/feeder/opensearch"
)

// Summary reports the outcome of one upload run
type Summary struct {
	// File is the path of the results file that was read
	File string

	// DryRun is true when the store was never contacted
	DryRun bool

	// Attempted is the number of documents submitted to the store
	Attempted int

	// Succeeded is the number of documents the store accepted
	Succeeded int

	// Failed is the number of documents the store rejected
	Failed int

	// Indices maps each destination index to the number of documents
	// routed to it
	Indices map[string]int

	// Failures holds the per-document rejection details, if any
	Failures []opensearch.DocumentError

	// Duration is the wall-clock time of the whole run
	Duration time.Duration
}
