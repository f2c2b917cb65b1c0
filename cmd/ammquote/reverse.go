package main

import (
	"github.com/spf13/cobra"

	"liquidityEngine/internal/model"
	"liquidityEngine/internal/quote"
)

func newReverseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reverse",
		Short:   "Quote the offer needed to receive an exact ask amount",
		Example: "ammquote reverse --ask 10000uusdc --offer-denom uaura",
		RunE:    runReverse,
	}
	cmd.Flags().String("ask", "", "asset to receive, e.g. 10000uusdc")
	cmd.Flags().String("offer-denom", "", "denom to pay with")
	_ = cmd.MarkFlagRequired("ask")
	_ = cmd.MarkFlagRequired("offer-denom")
	return cmd
}

func runReverse(cmd *cobra.Command, _ []string) error {
	askInput, _ := cmd.Flags().GetString("ask")
	offerDenom, _ := cmd.Flags().GetString("offer-denom")
	ask, err := model.ParseAsset(askInput)
	if err != nil {
		return err
	}

	return runQuote(cmd, func(s *session) (model.QuoteRecord, error) {
		return s.quoter.ReverseSwap(s.pool, quote.ReverseRequest{Ask: ask, OfferDenom: offerDenom})
	})
}
