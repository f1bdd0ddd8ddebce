package e2e

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/redhat/virt-capacity-benchmark/feeder"
	"github.com/redhat/virt-capacity-benchmark/feeder/config"
	"github.com/redhat/virt-capacity-benchmark/feeder/opensearch/opensearchtest"
)

const mixedResults = `[
	{"vmReadyLatency": 120, "vmiRunningLatency": 95, "uuid": "abc-123", "jobName": "job1", "jobIteration": 0, "podName": "virt-launcher-vm-0"},
	{"vmReadyLatency": 140, "vmiRunningLatency": 101, "uuid": "abc-123", "jobName": "job1", "jobIteration": 1, "podName": "virt-launcher-vm-1"},
	{"dvReadyLatency": 300, "dvName": "dv-1", "uuid": "abc-123", "jobName": "job1", "jobIteration": 0}
]`

func writeResults(dir, contents string) string {
	path := filepath.Join(dir, "results.json")
	Expect(os.WriteFile(path, []byte(contents), 0o644)).To(Succeed())
	return path
}

var _ = Describe("Uploading kube-burner results", func() {
	var (
		ctx     context.Context
		srv     *opensearchtest.Server
		tempDir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		srv = opensearchtest.New()

		var err error
		tempDir, err = os.MkdirTemp("", "feeder-e2e-")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		srv.Close()
		Expect(os.RemoveAll(tempDir)).To(Succeed())
	})

	newFeeder := func(opts ...feeder.Option) *feeder.Feeder {
		cfg := config.Default().WithURL(srv.URL).WithIndexPrefix("test-idx")
		f, err := feeder.New(cfg, opts...)
		Expect(err).NotTo(HaveOccurred())
		return f
	}

	Context("with mixed record types", func() {
		It("routes every record to its per-type index", func() {
			path := writeResults(tempDir, mixedResults)

			summary, err := newFeeder().Run(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Attempted).To(Equal(3))
			Expect(summary.Succeeded).To(Equal(3))

			byIndex := srv.ReceivedByIndex()
			Expect(byIndex).To(HaveKeyWithValue("test-idx-vmi-latency", 2))
			Expect(byIndex).To(HaveKeyWithValue("test-idx-dv-latency", 1))

			GinkgoWriter.Printf("Uploaded %d documents in %s\n", summary.Succeeded, summary.Duration)
		})

		It("normalizes documents before indexing", func() {
			path := writeResults(tempDir, mixedResults)

			_, err := newFeeder().Run(ctx, path)
			Expect(err).NotTo(HaveOccurred())

			for _, rec := range srv.Received() {
				Expect(rec.Document).To(HaveKeyWithValue("source", "direct-api"))
				Expect(rec.Document).To(HaveKey("dataType"))
				Expect(rec.Document).To(HaveKey("@timestamp"))
				Expect(rec.Document).To(HaveKey("timestamp"))
			}
		})

		It("submits one bulk request per destination index", func() {
			path := writeResults(tempDir, mixedResults)

			_, err := newFeeder().Run(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(srv.BulkCalls()).To(Equal(2))
			Expect(srv.BulkContentType()).To(Equal("application/x-ndjson"))
		})
	})

	Context("when the store rejects documents", func() {
		It("tolerates partial failures", func() {
			srv.Reject = func(index string, doc map[string]any) *opensearchtest.Failure {
				if doc["jobIteration"] == "0001" {
					return &opensearchtest.Failure{Status: 400, Type: "mapper_parsing_exception", Reason: "bad field"}
				}
				return nil
			}
			path := writeResults(tempDir, mixedResults)

			summary, err := newFeeder().Run(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Attempted).To(Equal(3))
			Expect(summary.Succeeded).To(Equal(2))
			Expect(summary.Failed).To(Equal(1))
			Expect(summary.Failures).To(HaveLen(1))
		})

		It("fails the run when every document is rejected", func() {
			srv.Reject = func(index string, doc map[string]any) *opensearchtest.Failure {
				return &opensearchtest.Failure{Status: 400, Type: "mapper_parsing_exception", Reason: "bad field"}
			}
			path := writeResults(tempDir, mixedResults)

			summary, err := newFeeder().Run(ctx, path)
			Expect(err).To(MatchError(feeder.ErrAllDocumentsRejected))
			Expect(summary.Failed).To(Equal(3))
		})
	})

	Context("when the store is unreachable", func() {
		It("fails without retrying", func() {
			url := srv.URL
			srv.Close()
			cfg := config.Default().WithURL(url).WithIndexPrefix("test-idx")
			f, err := feeder.New(cfg)
			Expect(err).NotTo(HaveOccurred())

			path := writeResults(tempDir, mixedResults)
			_, err = f.Run(ctx, path)
			Expect(feeder.IsConnectionError(err)).To(BeTrue())
		})
	})

	Context("in dry run mode", func() {
		It("classifies and routes without network calls", func() {
			path := writeResults(tempDir, mixedResults)

			summary, err := newFeeder(feeder.WithDryRun(true)).Run(ctx, path)
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.DryRun).To(BeTrue())
			Expect(summary.Indices).To(HaveKeyWithValue("test-idx-vmi-latency", 2))
			Expect(summary.Indices).To(HaveKeyWithValue("test-idx-dv-latency", 1))
			Expect(srv.BulkCalls()).To(BeZero())
			Expect(srv.TemplateCalls()).To(BeZero())
		})
	})
})
