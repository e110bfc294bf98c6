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

	"github.com/sells-group/pipeline-score/internal/model"
	"github.com/sells-group/pipeline-score/internal/seo"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Generate the local keyword list for services and a city",
	Long: `Generates the keyword list used for SEO intelligence. With --volumes the
monthly search volume and follow-up priority of each keyword is fetched
from the keyword data provider.

Examples:
  keywords --services Epoxy,Polyurea --city "Madison, WI"
  keywords --services Epoxy --city Milwaukee --volumes --format json`,
	RunE: runKeywords,
}

func init() {
	f := keywordsCmd.Flags()
	f.String("services", "", "comma-separated services")
	f.String("city", "", "city (a trailing state is dropped)")
	f.Bool("volumes", false, "fetch search volumes (requires dataforseo credentials)")
	f.String("format", "table", "output format: table or json")

	rootCmd.AddCommand(keywordsCmd)
}

type keywordRow struct {
	Keyword          string                `json:"keyword"`
	IsServiceKeyword bool                  `json:"isServiceKeyword"`
	SearchVolume     *int                  `json:"searchVolume,omitempty"`
	Priority         model.KeywordPriority `json:"priority,omitempty"`
}

func runKeywords(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	servicesFlag, _ := cmd.Flags().GetString("services")
	city, _ := cmd.Flags().GetString("city")
	withVolumes, _ := cmd.Flags().GetBool("volumes")
	format, _ := cmd.Flags().GetString("format")

	if city == "" {
		return eris.New("keywords: --city is required")
	}
	if format != "table" && format != "json" {
		return eris.Errorf("keywords: --format must be table or json (got %q)", format)
	}

	services := splitAndTrim(servicesFlag)
	keywords := seo.Keywords(services, city)

	var volumes map[string]int
	if withVolumes {
		if err := cfg.Validate("seo"); err != nil {
			return err
		}
		agg, _ := newAggregator()
		var err error
		if volumes, err = agg.Volumes(ctx, keywords, city); err != nil {
			return eris.Wrap(err, "keywords: fetch volumes")
		}
	}

	return writeKeywords(os.Stdout, keywordRows(keywords, services, volumes), format)
}

func keywordRows(keywords, services []string, volumes map[string]int) []keywordRow {
	rows := make([]keywordRow, 0, len(keywords))
	for _, kw := range keywords {
		row := keywordRow{Keyword: kw, IsServiceKeyword: seo.IsServiceKeyword(kw)}
		if volumes != nil {
			v := volumes[kw]
			row.SearchVolume = &v
			row.Priority = seo.Priority(kw, services, v)
		}
		rows = append(rows, row)
	}
	return rows
}

func writeKeywords(out io.Writer, rows []keywordRow, format string) error {
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(rows), "keywords: write json")
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEYWORD\tSERVICE\tVOLUME\tPRIORITY")
	for _, r := range rows {
		vol := "-"
		if r.SearchVolume != nil {
			vol = fmt.Sprintf("%d", *r.SearchVolume)
		}
		prio := string(r.Priority)
		if prio == "" {
			prio = "-"
		}
		fmt.Fprintf(w, "%s\t%v\t%s\t%s\n", r.Keyword, r.IsServiceKeyword, vol, prio)
	}
	fmt.Fprintf(w, "\n%d keywords\n", len(rows))
	return eris.Wrap(w.Flush(), "keywords: flush")
}
