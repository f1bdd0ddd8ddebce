package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/redhat/virt-capacity-benchmark/feeder"
	"github.com/redhat/virt-capacity-benchmark/feeder/config"
	"github.com/redhat/virt-capacity-benchmark/feeder/records"
	"github.com/redhat/virt-capacity-benchmark/feeder/routes"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand builds the push-data command
func NewRootCommand() *cobra.Command {
	var (
		url         string
		username    string
		password    string
		noVerify    bool
		indexPrefix string
		dataType    string
		orgID       string
		routeRef    string
		dryRun      bool
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "push-data <results.json>",
		Short: "Upload kube-burner measurement results to OpenSearch",
		Long: `push-data reads a kube-burner results file, classifies every record by
the latency markers it carries (VMI, DataVolume, Pod, or generic), and
bulk-indexes the records into per-type OpenSearch indices.

Flags override the OPENSEARCH_URL, OPENSEARCH_USER, OPENSEARCH_PASSWORD,
OPENSEARCH_INDEX, DATA_TYPE, and ORGANIZATION_ID environment variables.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}
			logger.SetLevel(level)

			cfg := config.FromEnv()
			flags := cmd.Flags()
			if flags.Changed("url") {
				cfg = cfg.WithURL(url)
			}
			if flags.Changed("username") {
				cfg = cfg.WithUsername(username)
			}
			if flags.Changed("password") {
				cfg = cfg.WithPassword(password)
			}
			if flags.Changed("no-verify") {
				cfg = cfg.WithInsecureSkipVerify(noVerify)
			}
			if flags.Changed("index") {
				cfg = cfg.WithIndexPrefix(indexPrefix)
			}
			if flags.Changed("org-id") {
				cfg = cfg.WithOrganizationID(orgID)
			}
			if flags.Changed("data-type") {
				dt, err := records.ParseDataType(dataType)
				if err != nil {
					return err
				}
				cfg = cfg.WithDataType(dt)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\nReceived interrupt signal, aborting...")
				cancel()
				// Second interrupt force-exits
				<-sigCh
				fmt.Println("\nForce exit requested, terminating immediately...")
				os.Exit(130) // 128 + SIGINT(2)
			}()

			// An explicit --url wins over route discovery; dry runs never
			// touch the cluster.
			if routeRef != "" && !dryRun && !flags.Changed("url") {
				ref, err := routes.ParseRef(routeRef)
				if err != nil {
					return err
				}
				discoverer, err := routes.New()
				if err != nil {
					return err
				}
				discovered, err := discoverer.DiscoverURL(ctx, ref)
				if err != nil {
					return err
				}
				logger.Infof("discovered store URL %s from route %s", discovered, ref)
				cfg = cfg.WithURL(discovered)
			}

			f, err := feeder.New(cfg, feeder.WithLogger(logger), feeder.WithDryRun(dryRun))
			if err != nil {
				return err
			}

			summary, err := f.Run(ctx, args[0])
			if summary != nil {
				printSummary(summary)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&url, "url", config.DefaultURL, "OpenSearch endpoint URL")
	cmd.Flags().StringVar(&username, "username", config.DefaultUsername, "OpenSearch username")
	cmd.Flags().StringVar(&password, "password", "", "OpenSearch password (empty sends no credentials)")
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip TLS certificate verification")
	cmd.Flags().StringVar(&indexPrefix, "index", config.DefaultIndexPrefix, "Index name prefix")
	cmd.Flags().StringVar(&dataType, "data-type", string(config.DefaultDataType), "Force a data type: auto, vmiLatency, dvLatency, podLatency, generic")
	cmd.Flags().StringVar(&orgID, "org-id", "", "Organization identifier stamped on every document")
	cmd.Flags().StringVar(&routeRef, "route", "", "Discover the endpoint from an OpenShift route (<namespace>/<name>)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Classify and route records without uploading")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	return cmd
}

func printSummary(s *feeder.Summary) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("UPLOAD SUMMARY\n")
	fmt.Printf("========================================\n")
	fmt.Printf("  File: %s\n", s.File)
	if s.DryRun {
		fmt.Printf("  Mode: dry run (nothing uploaded)\n")
	}

	indices := make([]string, 0, len(s.Indices))
	for index := range s.Indices {
		indices = append(indices, index)
	}
	sort.Strings(indices)
	for _, index := range indices {
		fmt.Printf("  %s: %d document(s)\n", index, s.Indices[index])
	}

	for _, failure := range s.Failures {
		fmt.Printf("  ⚠️  rejected by %s: %s: %s\n", failure.Index, failure.Type, failure.Reason)
	}

	if s.DryRun {
		fmt.Printf("\nTotal: %d record(s) classified in %s\n", s.Attempted, s.Duration.Round(time.Millisecond))
		return
	}
	fmt.Printf("\nTotal: %d attempted, %d succeeded, %d failed (%s)\n",
		s.Attempted, s.Succeeded, s.Failed, s.Duration.Round(time.Millisecond))
}
