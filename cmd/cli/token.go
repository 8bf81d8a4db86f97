package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/go-link-in-bio/pkg/adapters/handler"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		username string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a session token for an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			owner, err := lookupOwner(cmd.Context(), repo, username)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = a.cfg.SessionTTL
			}
			token, _, err := handler.NewSessionToken([]byte(a.cfg.JWTSecret), owner, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account to sign in as")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default SESSION_TTL)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
