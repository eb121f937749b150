package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexlens/internal/beta"
)

func newBetaCmd() *cobra.Command {
	var tickerPath, benchmarkPath string

	cmd := &cobra.Command{
		Use:   "beta",
		Short: "Estimate beta from two daily close series files",
		RunE: func(cmd *cobra.Command, args []string) error {
			tickerCloses, err := readCloses(tickerPath)
			if err != nil {
				return fmt.Errorf("ticker series: %w", err)
			}
			benchCloses, err := readCloses(benchmarkPath)
			if err != nil {
				return fmt.Errorf("benchmark series: %w", err)
			}

			est := beta.Estimate(beta.Returns(tickerCloses), beta.Returns(benchCloses))

			logger.Info("beta estimated",
				zap.Float64("beta", est.Beta),
				zap.Int("sampleSize", est.SampleSize),
			)

			out, err := json.MarshalIndent(est, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&tickerPath, "ticker", "", "path to ticker close series JSON (required)")
	cmd.Flags().StringVar(&benchmarkPath, "benchmark", "", "path to benchmark close series JSON (required)")
	_ = cmd.MarkFlagRequired("ticker")
	_ = cmd.MarkFlagRequired("benchmark")

	return cmd
}

func readCloses(path string) ([]float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var closes []float64
	if err := json.Unmarshal(raw, &closes); err != nil {
		return nil, err
	}
	return closes, nil
}
