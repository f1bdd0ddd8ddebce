package feeder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/redhat/virt-capacity-benchmark/feeder/config"
	"github.com/redhat/virt-capacity-benchmark/feeder/opensearch"
	"github.com/redhat/virt-capacity-benchmark/feeder/records"
)

// Feeder drives one upload run: load the results file, classify and normalize
// each record, route it to its index, and submit everything in bulk.
type Feeder struct {
	config  *config.Config
	logger  logrus.FieldLogger
	store   *opensearch.Client
	runUUID string
	dryRun  bool
}

// Option is a function that configures the Feeder
type Option func(*Feeder)

// WithLogger sets a custom logger for the feeder
func WithLogger(logger logrus.FieldLogger) Option {
	return func(f *Feeder) {
		f.logger = logger
	}
}

// WithDryRun makes Run classify, normalize, and route records without
// contacting the store
func WithDryRun(dryRun bool) Option {
	return func(f *Feeder) {
		f.dryRun = dryRun
	}
}

// WithRunUUID overrides the generated run identifier used as the uuid
// fallback for records that carry none
func WithRunUUID(id string) Option {
	return func(f *Feeder) {
		f.runUUID = id
	}
}

// New creates a new Feeder for the given configuration. A nil configuration
// is resolved from the environment. The store client is only built for real
// runs; dry runs never open a connection.
func New(cfg *config.Config, opts ...Option) (*Feeder, error) {
	if cfg == nil {
		cfg = config.FromEnv()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f := &Feeder{
		config:  cfg,
		logger:  logrus.StandardLogger(),
		runUUID: uuid.NewString(),
	}

	// Apply options
	for _, opt := range opts {
		opt(f)
	}

	if !f.dryRun {
		store, err := opensearch.NewClient(cfg)
		if err != nil {
			return nil, NewConnectionError(cfg.URL, err)
		}
		f.store = store
	}

	return f, nil
}

// Config returns the feeder configuration
func (f *Feeder) Config() *config.Config {
	return f.config
}

// RunUUID returns the uuid fallback applied to records that carry none
func (f *Feeder) RunUUID() string {
	return f.runUUID
}

// Run executes the pipeline against a single results file and reports what
// happened to every record. When the store rejects every document, Run
// returns the populated Summary together with ErrAllDocumentsRejected;
// input and connection failures return a nil Summary.
func (f *Feeder) Run(ctx context.Context, path string) (*Summary, error) {
	start := time.Now()

	recs, err := records.LoadFile(path)
	if err != nil {
		return nil, NewInputError(path, err)
	}

	summary := &Summary{
		File:    path,
		DryRun:  f.dryRun,
		Indices: make(map[string]int),
	}

	if len(recs) == 0 {
		f.logger.Warnf("no records found in %s, nothing to upload", path)
		summary.Duration = time.Since(start)
		return summary, nil
	}
	f.logger.Infof("loaded %d records from %s", len(recs), path)

	normalizer := records.NewNormalizer(f.config.OrganizationID, f.runUUID)
	docs := make([]opensearch.Document, 0, len(recs))
	for _, r := range recs {
		dataType := records.Classify(r, f.config.DataType)
		index := dataType.IndexName(f.config.IndexPrefix)
		docs = append(docs, opensearch.Document{
			Index: index,
			Body:  normalizer.Normalize(r, dataType),
		})
		summary.Indices[index]++
	}
	summary.Attempted = len(docs)

	for index, count := range summary.Indices {
		f.logger.Infof("routing %d records to index %s", count, index)
	}

	if f.dryRun {
		f.logger.Info("dry run, skipping upload")
		summary.Duration = time.Since(start)
		return summary, nil
	}

	defer f.store.Close()

	if err := f.store.Ping(ctx); err != nil {
		return nil, NewConnectionError(f.config.URL, err)
	}
	f.logger.Infof("connected to %s", f.config.URL)

	// Missing templates only cost mapping quality, never the upload.
	if err := f.store.EnsureIndexTemplate(ctx, f.config.IndexPrefix); err != nil {
		f.logger.Warnf("index template not installed: %v", err)
	}

	result, err := f.store.SubmitAll(ctx, docs)
	if err != nil {
		return nil, NewConnectionError(f.config.URL, err)
	}

	summary.Succeeded = result.Succeeded
	summary.Failed = result.Failed
	summary.Failures = result.Failures
	summary.Duration = time.Since(start)

	for _, failure := range summary.Failures {
		f.logger.Warnf("document rejected: %s", failure.String())
	}

	if summary.Succeeded == 0 {
		return summary, ErrAllDocumentsRejected
	}

	f.logger.Infof("uploaded %d/%d documents in %s", summary.Succeeded, summary.Attempted, summary.Duration.Round(time.Millisecond))
	return summary, nil
}
