package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/warp/refund-engine/factory"
	"github.com/warp/refund-engine/gateway"
	"github.com/warp/refund-engine/generic"
	"github.com/warp/refund-engine/refund"
)

// Report is the CLI output. Keys follow the HTTP API; the embedded trade
// keeps its input field names.
type Report struct {
	PolicyID    string         `json:"policy_id"`
	Summary     refund.Summary `json:"summary"`
	Assessments []Line         `json:"assessments"`
}

// Line is one assessed trade.
type Line struct {
	Trade          refund.TradeRecord `json:"trade"`
	Decision       string             `json:"decision"`
	LegacyDecision string             `json:"legacy_decision"`
	ReasonCode     string             `json:"reason_code,omitempty"`
	Reason         string             `json:"reason,omitempty"`
	TOS            string             `json:"tos,omitempty"`
	ElapsedHours   string             `json:"elapsed_hours,omitempty"`
	LimitHours     string             `json:"limit_hours,omitempty"`
}

func main() {
	// Define command-line flags
	tradesFile := flag.String("trades", "", "Path to the trades CSV file (default: built-in sample dataset)")
	policyFile := flag.String("policy", "", "Path to a JSON or YAML policy (default: standard policy)")
	workers := flag.Int("workers", 4, "Number of concurrent evaluations")
	format := flag.String("format", "json", "Output format: json or table")
	flag.Parse()

	if *format != "json" && *format != "table" {
		fmt.Println("Error: -format must be json or table.")
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	trades := refund.SampleTrades()
	if *tradesFile != "" {
		var err error
		trades, err = gateway.NewCSVTradeReader().ReadTrades(ctx, *tradesFile)
		if err != nil {
			log.Fatalf("Reading trades failed: %v", err)
		}
	}

	policy := refund.StandardPolicy()
	if *policyFile != "" {
		var err error
		policy, err = factory.NewPolicyFactory().LoadPolicyFile(*policyFile)
		if err != nil {
			log.Fatalf("Loading policy failed: %v", err)
		}
	}

	evaluator := refund.NewEvaluator(generic.DefaultZoneResolver(), policy)
	report, err := buildReport(ctx, evaluator, trades, *workers)
	if err != nil {
		log.Fatalf("Evaluation failed: %v", err)
	}

	if *format == "table" {
		if err := writeTable(os.Stdout, report); err != nil {
			log.Fatalf("Failed to write table: %v", err)
		}
		return
	}

	output, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Failed to generate JSON report: %v", err)
	}
	fmt.Println(string(output))
}

func buildReport(ctx context.Context, ev *refund.Evaluator, trades []refund.TradeRecord, workers int) (Report, error) {
	assessments, err := refund.EvaluateBatch(ctx, ev, trades, workers)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		PolicyID:    ev.Policy().ID,
		Summary:     refund.Summarize(assessments),
		Assessments: make([]Line, len(assessments)),
	}
	for i, a := range assessments {
		line := Line{
			Trade:          a.Record,
			Decision:       a.Decision.Label(),
			LegacyDecision: a.Decision.Collapsed(),
			ReasonCode:     generic.ReasonCode(a.Reason),
			TOS:            string(a.TOS),
		}
		if a.Reason != nil {
			line.Reason = a.Reason.Error()
		} else {
			line.ElapsedHours = a.ElapsedHours.Value.String()
			line.LimitHours = a.LimitHours.Value.String()
		}
		report.Assessments[i] = line
	}
	return report, nil
}

// writeTable renders the trades table with a final refund status column.
// Indeterminate records show as denied.
func writeTable(w io.Writer, report Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tTime Zone\tSign Up Date\tSource\tInvestment Date\tInvestment Time\tRefund Request Date\tRefund Request Time\tRefund Status")
	for _, l := range report.Assessments {
		t := l.Trade
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Name, t.TimeZone, t.SignUpDate, t.Source,
			t.InvestmentDate, t.InvestmentTime, t.RefundRequestDate, t.RefundRequestTime,
			l.LegacyDecision)
	}
	return tw.Flush()
}
