package main

import (
	"fmt"
	"os"
	"time"

	"github.com/scholarfolio/backend/internal/config"
	"github.com/scholarfolio/backend/internal/tokens"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Mint or revoke admin tokens"}

	var (
		secret string
		sub    string
		ttl    time.Duration
	)
	mint := &cobra.Command{
		Use:   "mint",
		Short: "Mint an HS256 admin token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if secret == "" {
				secret = os.Getenv("JWT_SECRET")
			}
			tok, err := tokens.GenerateAccessToken(secret, sub, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, tok)
			return nil
		},
	}
	defaultSub := os.Getenv("OWNER_ID")
	if defaultSub == "" {
		defaultSub = config.DefaultOwnerID
	}
	mint.Flags().StringVar(&secret, "secret", "", "signing secret (default $JWT_SECRET)")
	mint.Flags().StringVar(&sub, "sub", defaultSub, "subject; must match the server's OWNER_ID for public reads to see the content")
	mint.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")

	revoke := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke the token given with --token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()
			if err := a.client().Revoke(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "revoked")
			return nil
		},
	}

	cmd.AddCommand(mint, revoke)
	return cmd
}
