package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pluscatalog/catalog-service/internal/crawler"
	"github.com/pluscatalog/catalog-service/internal/vendor"
)

var crawlSegments []string

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the listing pass for the configured segments",
	Long: `Walk the portal's offer rotator for each configured segmentation code,
fetch the device listing pages and merge every (device, offer) pair into the
catalog. Prices that changed since the last crawl keep their previous value.`,
	Example: `  catalog-service crawl
  catalog-service crawl --segment IND.NEW.POSTPAID.ACQ
  catalog-service crawl --dry-run`,
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringSliceVar(&crawlSegments, "segment", nil, "segmentation codes to crawl (defaults to configured segments)")
}

func buildClient() *vendor.Client {
	vc := vendor.DefaultConfig()
	vc.DeviceListURL = cfg.Crawler.DeviceListURL
	vc.DevicePricesURL = cfg.Crawler.DevicePricesURL
	vc.DeviceAvailableURL = cfg.Crawler.DeviceAvailableURL
	vc.RequestsPerSecond = cfg.Crawler.RequestsPerSecond
	vc.Burst = cfg.Crawler.Burst
	vc.MaxRetries = cfg.Crawler.MaxRetries
	vc.InitialBackoff = cfg.Crawler.InitialBackoff
	vc.MaxBackoff = cfg.Crawler.MaxBackoff
	vc.Timeout = cfg.Crawler.RequestTimeout
	vc.UserAgent = cfg.Crawler.UserAgent
	return vendor.NewClient(vc, *logger)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	segments := crawlSegments
	if len(segments) == 0 {
		segments = cfg.Crawler.Segments
	}
	if len(segments) == 0 {
		return fmt.Errorf("no segments configured")
	}

	client := buildClient()

	type segmentResult struct {
		Segment string
		Result  *crawler.RunResult
		Err     error
	}
	results := make([]segmentResult, 0, len(segments))

	for _, segment := range segments {
		c := crawler.New(store, client, crawler.Config{
			Segment:         segment,
			Domain:          cfg.Crawler.Domain,
			PageConcurrency: cfg.Crawler.PageConcurrency,
		}, *logger)

		result, err := c.Run(ctx)
		results = append(results, segmentResult{Segment: segment, Result: result, Err: err})
		if err != nil {
			logger.Error().Str("segment", segment).Err(err).Msg("Crawl failed")
			if ctx.Err() != nil {
				break
			}
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SEGMENT\tSTATUS\tDEVICES\tPRODUCTS\tSKUS\tOFFERS\tPRICE CHANGES\tERRORS")
	for _, r := range results {
		status := "OK"
		if r.Err != nil {
			status = "FAILED"
		}
		if r.Result == nil {
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\t-\t-\t-\n", r.Segment, status)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			r.Segment, status, r.Result.Devices, r.Result.ProductsCreated,
			r.Result.SKUsCreated, r.Result.OffersCreated, r.Result.PriceChanges,
			len(r.Result.Errors))
	}
	w.Flush()

	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("some crawls failed")
		}
	}
	return nil
}
