package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexlens/internal/analysis"
	"github.com/dgnsrekt/gexlens/internal/chain"
	"github.com/dgnsrekt/gexlens/internal/gex"
)

// chainFile is the on-disk shape for one-shot analysis input.
type chainFile struct {
	Ticker       string    `json:"ticker"`
	CurrentPrice float64   `json:"current_price"`
	AsOf         time.Time `json:"as_of"`
	Expirations  []struct {
		Expiration time.Time           `json:"expiration"`
		Calls      []chain.RawContract `json:"calls"`
		Puts       []chain.RawContract `json:"puts"`
	} `json:"expirations"`
}

func newAnalyzeCmd() *cobra.Command {
	var chainPath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the analytics pipeline over a chain snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(chainPath)
			if err != nil {
				return fmt.Errorf("reading chain file: %w", err)
			}

			var input chainFile
			if err := json.Unmarshal(raw, &input); err != nil {
				return fmt.Errorf("parsing chain file: %w", err)
			}

			req := analysis.Request{
				Ticker:       input.Ticker,
				CurrentPrice: input.CurrentPrice,
				AsOf:         input.AsOf,
			}
			for _, exp := range input.Expirations {
				req.Expirations = append(req.Expirations, analysis.ExpirationChain{
					Expiration: exp.Expiration,
					Calls:      exp.Calls,
					Puts:       exp.Puts,
				})
			}

			params := gex.Params{
				RiskFreeRate:  cfg.Model.RiskFreeRate,
				DividendYield: cfg.Model.DividendYield,
				MinVol:        cfg.Model.MinVol,
				MaxVol:        cfg.Model.MaxVol,
				ScanWidth:     cfg.Model.ScanWidth,
			}
			engine := analysis.NewEngine(params, cfg.Server.Workers, logger)

			logger.Info("analyzing chain snapshot",
				zap.String("ticker", input.Ticker),
				zap.Float64("spot", input.CurrentPrice),
				zap.Int("expirations", len(req.Expirations)),
			)

			result, err := engine.Analyze(context.Background(), req)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&chainPath, "chain", "", "path to chain snapshot JSON (required)")
	_ = cmd.MarkFlagRequired("chain")

	return cmd
}
