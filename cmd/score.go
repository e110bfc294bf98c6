package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/pipeline-score/internal/estimate"
	"github.com/sells-group/pipeline-score/internal/model"
	"github.com/sells-group/pipeline-score/internal/scorer"
	"github.com/sells-group/pipeline-score/internal/token"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a questionnaire offline",
	Long: `Scores a single questionnaire without calling any external service.

Answers come from a JSON or YAML file (--answers) and may be overridden
with flags. The output shows the score, band, forecast and next moves,
plus the per-component breakdown behind the total.

Examples:
  # Score from a file
  score --answers answers.yaml

  # Score from flags only, as JSON
  score --city Milwaukee --services Epoxy,Polyurea --radius 45 \
    --response-time 15 --sms both --pages all --reviews 10 --format json`,
	RunE: runScore,
}

func init() {
	addScoreFlags(scoreCmd)
	rootCmd.AddCommand(scoreCmd)
}

func addScoreFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("answers", "", "path to a JSON or YAML answers file")
	f.String("name", "", "contractor full name")
	f.String("business", "", "business name")
	f.String("city", "", "primary city")
	f.String("services", "", "comma-separated services (e.g., Epoxy,Polyurea)")
	f.Int("radius", 0, "service radius in miles (20, 30 or 45)")
	f.Int("response-time", 0, "typical lead response time in minutes")
	f.String("sms", "", "sms capability: both, text-back, autoresponder, neither")
	f.String("pages", "", "premium service pages: all, some, none")
	f.Int("reviews", 0, "reviews in the last 60 days (-1 = unknown)")
	f.String("format", "table", "output format: table, json or yaml")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("list-cities", false, "list cities with a known average ticket and exit")
}

// scoreCard is everything the score command reports for one questionnaire.
type scoreCard struct {
	model.ScoreResult `yaml:",inline"`
	Branch            model.Branch        `json:"branch" yaml:"branch"`
	ScoreBucket       string              `json:"scoreBucket" yaml:"scoreBucket"`
	AvgTicket         float64             `json:"avgTicket" yaml:"avgTicket"`
	Components        map[string]float64  `json:"components" yaml:"components"`
	Projection        estimate.Projection `json:"projection" yaml:"projection"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	if err := cfg.Validate("score"); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format != "table" && format != "json" && format != "yaml" {
		return eris.Errorf("score: --format must be table, json or yaml (got %q)", format)
	}

	tickets := estimate.NewTickets(estimate.Metros, cfg.Forecast.DefaultAvgTicket)
	if list, _ := cmd.Flags().GetBool("list-cities"); list {
		return writeCities(os.Stdout, tickets)
	}

	var a model.QuestionnaireAnswers
	if path, _ := cmd.Flags().GetString("answers"); path != "" {
		var err error
		if a, err = loadAnswers(path); err != nil {
			return err
		}
	}
	a = applyAnswerFlags(cmd, a)

	card := buildScoreCard(scorer.New(tickets), tickets, a)

	out := io.Writer(os.Stdout)
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "score: create output file %s", path)
		}
		defer f.Close() //nolint:errcheck
		out = f
	}
	return writeScoreCard(out, card, format)
}

// loadAnswers reads answers from a JSON or YAML file. YAML keys use the
// same camelCase names as the JSON API.
func loadAnswers(path string) (model.QuestionnaireAnswers, error) {
	var a model.QuestionnaireAnswers
	data, err := os.ReadFile(path)
	if err != nil {
		return a, eris.Wrapf(err, "score: read answers %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return a, eris.Wrapf(err, "score: parse yaml %s", path)
		}
		if data, err = json.Marshal(doc); err != nil {
			return a, eris.Wrap(err, "score: convert yaml")
		}
	}

	if err := json.Unmarshal(data, &a); err != nil {
		return a, eris.Wrapf(err, "score: parse answers %s", path)
	}
	return a, nil
}

// applyAnswerFlags overlays explicitly set flags onto a.
func applyAnswerFlags(cmd *cobra.Command, a model.QuestionnaireAnswers) model.QuestionnaireAnswers {
	f := cmd.Flags()
	if f.Changed("name") {
		a.FullName, _ = f.GetString("name")
	}
	if f.Changed("business") {
		a.BusinessName, _ = f.GetString("business")
	}
	if f.Changed("city") {
		a.City, _ = f.GetString("city")
	}
	if f.Changed("services") {
		v, _ := f.GetString("services")
		a.Services = splitAndTrim(v)
	}
	if f.Changed("radius") {
		a.Radius, _ = f.GetInt("radius")
	}
	if f.Changed("response-time") {
		a.ResponseTime, _ = f.GetInt("response-time")
	}
	if f.Changed("sms") {
		v, _ := f.GetString("sms")
		a.SMSCapability = model.SMSCapability(v)
	}
	if f.Changed("pages") {
		v, _ := f.GetString("pages")
		a.PremiumPages = model.PageCoverage(v)
	}
	if f.Changed("reviews") {
		a.ReviewCount, _ = f.GetInt("reviews")
	}
	return a
}

func buildScoreCard(engine *scorer.Engine, tickets *estimate.Tickets, a model.QuestionnaireAnswers) scoreCard {
	res := engine.Score(a)
	return scoreCard{
		ScoreResult: res,
		Branch:      model.BranchFor(res.Score),
		ScoreBucket: token.Bucket(res.Score),
		AvgTicket:   tickets.For(a.City),
		Components:  scorer.ComponentScores(a),
		Projection:  engine.Projection(a, res.Score),
	}
}

func writeScoreCard(w io.Writer, card scoreCard, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(card), "score: write json")
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(card); err != nil {
			return eris.Wrap(err, "score: write yaml")
		}
		return eris.Wrap(enc.Close(), "score: write yaml")
	case "table":
		writeScoreTable(w, card)
		return nil
	default:
		return eris.Errorf("score: unsupported format %q", format)
	}
}

func writeScoreTable(w io.Writer, c scoreCard) {
	fmt.Fprintf(w, "Score:      %d / %d (%s)\n", c.Score, scorer.MaxScore, c.Band)
	fmt.Fprintf(w, "Branch:     %s\n", c.Branch)
	fmt.Fprintf(w, "Bucket:     %s\n", c.ScoreBucket)
	fmt.Fprintf(w, "Forecast:   %s\n", c.Forecast)
	fmt.Fprintf(w, "Pipeline:   %s - %s (avg ticket %s)\n",
		estimate.FormatRevenue(int64(c.Projection.Pipeline.Low)),
		estimate.FormatRevenue(int64(c.Projection.Pipeline.High)),
		estimate.FormatRevenue(int64(c.AvgTicket)))
	fmt.Fprintf(w, "Guarantee:  %s\n", c.GuaranteeStatus)

	fmt.Fprintln(w, "\nComponents:")
	for _, name := range scorer.Components {
		fmt.Fprintf(w, "  %-16s %5.1f\n", name, c.Components[name])
	}

	if len(c.TopActions) > 0 {
		fmt.Fprintln(w, "\nTop moves:")
		for i, m := range c.TopActions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, m)
		}
	}
}

// writeCities prints the average-ticket table; unlisted cities use the default.
func writeCities(out io.Writer, tickets *estimate.Tickets) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CITY\tAVG TICKET")
	for _, city := range tickets.Cities() {
		fmt.Fprintf(w, "%s\t%s\n", city, estimate.FormatRevenue(int64(tickets.For(city))))
	}
	fmt.Fprintf(w, "(other)\t%s\n", estimate.FormatRevenue(int64(tickets.For(""))))
	return eris.Wrap(w.Flush(), "score: flush")
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
