package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
	"liquidityEngine/internal/quote"
)

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Quote a withdrawal by share or by exact amounts",
		Example: "ammquote withdraw --share 1000\n" +
			"ammquote withdraw --amount 500uusdc,250uusdt",
		RunE: runWithdraw,
	}
	cmd.Flags().String("share", "", "share to burn for a pro-rata refund")
	cmd.Flags().StringSlice("amount", nil, "exact assets to withdraw (stableswap pools)")
	cmd.MarkFlagsMutuallyExclusive("share", "amount")
	cmd.MarkFlagsOneRequired("share", "amount")
	return cmd
}

func runWithdraw(cmd *cobra.Command, _ []string) error {
	shareInput, _ := cmd.Flags().GetString("share")
	amountInputs, _ := cmd.Flags().GetStringSlice("amount")

	var req quote.WithdrawRequest
	if shareInput != "" {
		share, err := fixed.ParseUint(shareInput)
		if err != nil {
			return fmt.Errorf("--share: %w", err)
		}
		req.Share = share
	}
	amounts, err := parseAssets(amountInputs)
	if err != nil {
		return err
	}
	req.Amounts = amounts

	return runQuote(cmd, func(s *session) (model.QuoteRecord, error) {
		return s.quoter.Withdraw(s.pool, req)
	})
}

