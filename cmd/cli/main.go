package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/veripay/veripay/internal/domain"
	"github.com/veripay/veripay/internal/extractor"
	"github.com/veripay/veripay/internal/forensics"
	"github.com/veripay/veripay/internal/infrastructure/logger"
	"github.com/veripay/veripay/internal/recon"
	"github.com/veripay/veripay/internal/statement"
)

var (
	bankFlag    string
	logLevel    string
	captureFile string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "veripay",
		Short: "VeriPay receipt verification tool",
		Long:  `Runs the VeriPay verification pipeline locally: field extraction, image forensics, and statement reconciliation.`,
	}

	rootCmd.PersistentFlags().StringVar(&bankFlag, "bank", "", "Bank family hint (cbe, dashen, telebirr)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level")

	extractCmd := &cobra.Command{
		Use:   "extract <textfile>",
		Short: "Extract transaction fields from recognized receipt text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(args[0])
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze a receipt image for tampering evidence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0])
		},
	}

	reconcileCmd := &cobra.Command{
		Use:   "reconcile <statement>",
		Short: "Reconcile captured transactions against a bank statement",
		Long:  `Matches transactions from a captures JSON file against a CSV or PDF statement export and prints the reconciliation report.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(args[0])
		},
	}
	reconcileCmd.Flags().StringVar(&captureFile, "captures", "", "JSON file of extracted transactions")
	reconcileCmd.MarkFlagRequired("captures")

	rootCmd.AddCommand(extractCmd, analyzeCmd, reconcileCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runExtract(path string) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ext := extractor.New(extractor.DefaultConfig(), logger.New(logLevel, "console"))
	txn := ext.Extract(string(text), domain.ParseBankFamily(bankFlag))

	return printJSON(txn)
}

func runAnalyze(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	analyzer := forensics.New(forensics.DefaultConfig(), logger.New(logLevel, "console"))
	report := analyzer.Analyze(data)

	return printJSON(report)
}

func runReconcile(statementPath string) error {
	captureData, err := os.ReadFile(captureFile)
	if err != nil {
		return err
	}
	var txs []domain.ExtractedTransaction
	if err := json.Unmarshal(captureData, &txs); err != nil {
		return fmt.Errorf("parsing captures file: %w", err)
	}

	lines, err := loadStatement(statementPath)
	if err != nil {
		return err
	}

	engine := recon.New(recon.DefaultConfig(), logger.New(logLevel, "console"))
	result, err := engine.Reconcile(txs, lines)
	if err != nil {
		return err
	}

	return printJSON(result)
}

func loadStatement(path string) ([]domain.StatementLine, error) {
	bank := domain.ParseBankFamily(bankFlag)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return statement.ParsePDF(bytes.NewReader(data), int64(len(data)), bank)
	}
	return statement.ParseCSV(bytes.NewReader(data), bank)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
