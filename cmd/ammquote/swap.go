package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/quote"
)

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "swap",
		Short:   "Quote selling an exact offer amount",
		Example: "ammquote swap --offer 1000000uaura --ask uusdc --max-spread 0.01",
		RunE:    runSwap,
	}
	cmd.Flags().String("offer", "", "offered asset, e.g. 1000000uaura")
	cmd.Flags().String("ask", "", "denom to receive")
	cmd.Flags().String("belief-price", "", "expected offer/ask price")
	cmd.Flags().String("max-spread", "", "maximum accepted spread ratio")
	_ = cmd.MarkFlagRequired("offer")
	_ = cmd.MarkFlagRequired("ask")
	return cmd
}

func runSwap(cmd *cobra.Command, _ []string) error {
	offerInput, _ := cmd.Flags().GetString("offer")
	ask, _ := cmd.Flags().GetString("ask")
	offer, err := model.ParseAsset(offerInput)
	if err != nil {
		return err
	}
	belief, err := decimalFlag(cmd, "belief-price")
	if err != nil {
		return err
	}
	maxSpread, err := decimalFlag(cmd, "max-spread")
	if err != nil {
		return err
	}

	return runQuote(cmd, func(s *session) (model.QuoteRecord, error) {
		return s.quoter.Swap(s.pool, quote.SwapRequest{
			Offer:       offer,
			AskDenom:    ask,
			BeliefPrice: belief,
			MaxSpread:   maxSpread,
		})
	})
}

// decimalFlag returns nil when the flag is empty.
func decimalFlag(cmd *cobra.Command, name string) (*fixed.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return nil, nil
	}
	d, err := fixed.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

func parseAssets(inputs []string) ([]model.Asset, error) {
	out := make([]model.Asset, 0, len(inputs))
	for _, in := range inputs {
		asset, err := model.ParseAsset(in)
		if err != nil {
			return nil, err
		}
		out = append(out, asset)
	}
	return out, nil
}
