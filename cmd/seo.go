package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/pipeline-score/internal/model"
	"github.com/sells-group/pipeline-score/internal/seo"
)

var seoCmd = &cobra.Command{
	Use:   "seo",
	Short: "Measure a business's local search standing",
	Long: `Looks up every keyword for the business's place and domain and reports
organic rank, map-pack position and estimated missed leads per month.

Keywords come from --keywords, or are generated from --services and --city.

Examples:
  seo --place-id ChIJ123 --domain acme.com --city Milwaukee --services Epoxy
  seo --place-id ChIJ123 --city Madison --keywords "epoxy flooring madison" --format json`,
	RunE: runSEO,
}

func init() {
	f := seoCmd.Flags()
	f.String("place-id", "", "map-service place id of the business")
	f.String("domain", "", "business website or domain")
	f.String("city", "", "city the keywords target")
	f.String("services", "", "comma-separated services (used to generate keywords)")
	f.String("keywords", "", "comma-separated keywords (overrides generation)")
	f.String("format", "table", "output format: table or json")

	rootCmd.AddCommand(seoCmd)
}

func runSEO(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate("seo"); err != nil {
		return err
	}

	f := cmd.Flags()
	placeID, _ := f.GetString("place-id")
	domain, _ := f.GetString("domain")
	city, _ := f.GetString("city")
	servicesFlag, _ := f.GetString("services")
	keywordsFlag, _ := f.GetString("keywords")
	format, _ := f.GetString("format")

	if placeID == "" || city == "" {
		return eris.New("seo: --place-id and --city are required")
	}
	if format != "table" && format != "json" {
		return eris.Errorf("seo: --format must be table or json (got %q)", format)
	}

	services := splitAndTrim(servicesFlag)
	keywords := splitAndTrim(keywordsFlag)
	if len(keywords) == 0 {
		keywords = seo.Keywords(services, city)
	}

	agg, breakers := newAggregator()
	zap.L().Info("seo lookup starting",
		zap.String("place_id", placeID),
		zap.String("city", city),
		zap.Int("keywords", len(keywords)),
	)
	intel := agg.Aggregate(ctx, seo.Request{
		Keywords: keywords,
		PlaceID:  placeID,
		City:     city,
		Domain:   domain,
		Services: services,
	})
	for name, st := range breakers.States() {
		if st.String() != "closed" {
			zap.L().Warn("seo breaker not closed", zap.String("breaker", name), zap.Stringer("state", st))
		}
	}

	return writeSEO(os.Stdout, intel, format)
}

func writeSEO(out io.Writer, intel model.SEOIntelligence, format string) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(intel), "seo: write json")
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEYWORD\tVOLUME\tORGANIC\tMAP\tMISSED/MO\tPRIORITY")
	for _, r := range intel.Rankings {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n",
			r.Keyword, r.SearchVolume, rankCell(r.CurrentRank), rankCell(r.MapPackPosition),
			r.MissedLeadsPerMonth, r.Priority)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Map pack:\t%d/%d\n", intel.MapPackCount(), len(intel.Rankings))
	fmt.Fprintf(w, "Organic top 3:\t%d\n", intel.OrganicWithin(3))
	fmt.Fprintf(w, "Missed leads/mo:\t%d\n", intel.TotalMissedLeads)
	if intel.TopOpportunity != "" {
		fmt.Fprintf(w, "Top opportunity:\t%s\n", intel.TopOpportunity)
	}
	return eris.Wrap(w.Flush(), "seo: flush")
}

func rankCell(p *int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *p)
}
