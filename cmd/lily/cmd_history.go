package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lily/internal/agent"
	"lily/internal/articulation"
	"lily/internal/store"
)

var historyLimit int

// historyCmd prints recent ledger records
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent execution attempts",
	Args:  cobra.NoArgs,
	RunE:  showHistory,
}

// statsCmd summarizes the ledger numerically
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show attempt counts and success rate",
	Args:  cobra.NoArgs,
	RunE:  showStats,
}

// summaryCmd asks the oracle to review recent attempts
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize recent attempts in plain language",
	Args:  cobra.NoArgs,
	RunE:  showSummary,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of records to show")
}

func showHistory(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer ledger.Close()

	recs, err := ledger.Recent(historyLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, agent.NoHistoryMessage)
		return nil
	}
	fmt.Fprintln(out, store.FormatContext(recs))
	return nil
}

func showStats(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer ledger.Close()

	recs, err := ledger.All()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, agent.NoHistoryMessage)
		return nil
	}

	st := store.ComputeStats(recs)
	fmt.Fprintf(out, "Total attempts: %d\n", st.Total)
	fmt.Fprintf(out, "Successful: %d\n", st.Successes)
	fmt.Fprintf(out, "Success rate: %.1f%%\n", st.SuccessRate)
	fmt.Fprintf(out, "Last attempt: %s\n", st.LastTimestamp.Local().Format(time.DateTime))
	return nil
}

func showSummary(cmd *cobra.Command, args []string) error {
	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	defer ledger.Close()

	recs, err := ledger.All()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, agent.NoHistoryMessage)
		return nil
	}

	oracle, err := newOracle(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	text, err := agent.NewSummarizer(oracle).Summarize(cmd.Context(), recs)
	if err != nil {
		return err
	}
	fmt.Fprint(out, articulation.RenderMarkdown(text, 80))
	return nil
}
