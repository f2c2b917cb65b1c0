package main

import (
	"github.com/spf13/cobra"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/quote"
)

func newProvideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "provide",
		Short:   "Quote the share minted for a deposit",
		Example: "ammquote provide --deposit 100uaura,100uusdc --slippage-tolerance 0.01",
		RunE:    runProvide,
	}
	cmd.Flags().StringSlice("deposit", nil, "deposited assets (comma-separated)")
	cmd.Flags().String("sender", "", "depositor address, checked against the whitelist on genesis")
	cmd.Flags().String("slippage-tolerance", "", "maximum accepted deviation from the pool ratio")
	_ = cmd.MarkFlagRequired("deposit")
	return cmd
}

func runProvide(cmd *cobra.Command, _ []string) error {
	inputs, _ := cmd.Flags().GetStringSlice("deposit")
	sender, _ := cmd.Flags().GetString("sender")
	deposits, err := parseAssets(inputs)
	if err != nil {
		return err
	}
	tolerance, err := decimalFlag(cmd, "slippage-tolerance")
	if err != nil {
		return err
	}

	return runQuote(cmd, func(s *session) (model.QuoteRecord, error) {
		return s.quoter.Provide(s.pool, quote.ProvideRequest{
			Sender:            sender,
			Deposits:          deposits,
			SlippageTolerance: tolerance,
		})
	})
}
