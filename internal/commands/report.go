package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/mymoney/internal/report"
)

type reportOptions struct {
	by       string
	freq     string
	timeline bool
	last     bool
	sortBy   string
}

func newReportCommand(flags *rootFlags) *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize stored expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(flags)
			if err != nil {
				return err
			}
			return runReport(cmd, e, opts)
		},
	}

	cmd.Flags().StringVar(&opts.by, "by", "institution", "group by category, institution or account")
	cmd.Flags().StringVar(&opts.freq, "freq", "M", "timeline period: Y, Q, QS, M or W")
	cmd.Flags().BoolVar(&opts.timeline, "timeline", false, "show spend per period instead of totals")
	cmd.Flags().BoolVar(&opts.last, "last-dates", false, "show the latest record date per account")
	cmd.Flags().StringVar(&opts.sortBy, "sort", "institution", "last-dates order: date, institution, service or account")

	return cmd
}

func runReport(cmd *cobra.Command, e *env, opts reportOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, closeStore, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	recs, err := st.LoadExpenses(ctx)
	if err != nil {
		return err
	}
	a, err := report.New(recs)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if opts.last {
		rows, err := a.LastDates(opts.sortBy)
		if err != nil {
			return err
		}
		writeLastDates(tw, rows)
		return nil
	}

	dim, err := report.ParseDimension(opts.by)
	if err != nil {
		return err
	}
	if !opts.timeline {
		fmt.Fprintf(tw, "%s\tAMOUNT\n", strings.ToUpper(string(dim)))
		for _, t := range a.OverallSpend(dim) {
			fmt.Fprintf(tw, "%s\t%s\n", strings.Join(t.Key, " / "), t.Amount.StringFixed(2))
		}
		return nil
	}

	freq, err := report.ParseFreq(opts.freq)
	if err != nil {
		return err
	}
	series := a.Spend(dim, freq)
	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(tw, "%s\tPERIOD\tAMOUNT\n", strings.ToUpper(string(dim)))
	for _, k := range keys {
		for _, b := range series[k] {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", k, b.Period.Format("2006-01-02"), b.Amount.StringFixed(2))
		}
	}
	return nil
}

func writeLastDates(w io.Writer, rows []report.LastDate) {
	fmt.Fprintln(w, "INSTITUTION\tACCOUNT\tSERVICE\tLAST DATE")
	for _, r := range rows {
		last := "-"
		if !r.LastDate.IsZero() {
			last = r.LastDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Institution, r.AccountName, r.Service, last)
	}
}
