package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pluscatalog/catalog-service/internal/crawler"
)

var discoverSegment string

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Run the SKU discovery pass over stored products",
	Long: `Scan every stored product's reference offer page for sibling color
variants and create the SKUs the listing pass never surfaced, replicating the
reference offers and fetching their photo sets. Safe to re-run: existing stock
codes are left untouched.`,
	Example: `  catalog-service discover
  catalog-service discover --segment IND.NEW.POSTPAID.ACQ`,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverSegment, "segment", "", "segmentation code for replicated offers (defaults to first configured segment)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	segment := discoverSegment
	if segment == "" {
		if len(cfg.Crawler.Segments) == 0 {
			return fmt.Errorf("no segments configured")
		}
		segment = cfg.Crawler.Segments[0]
	}

	c := crawler.New(store, buildClient(), crawler.Config{
		Segment:         segment,
		Domain:          cfg.Crawler.Domain,
		PageConcurrency: cfg.Crawler.PageConcurrency,
	}, *logger)

	result, err := c.DiscoverSKUs(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PRODUCTS\tSKUS CREATED\tOFFERS REPLICATED\tPHOTOS\tERRORS")
	fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\n",
		result.ProductsScanned, result.SKUsCreated, result.OffersReplicated,
		result.PhotosAdded, len(result.Errors))
	w.Flush()

	return nil
}
