package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/baechuer/expense-tracker/internal/domain"
	"github.com/baechuer/expense-tracker/internal/infrastructure/security"
)

var (
	tokenSecret string
	tokenIssuer string
	tokenUser   string
	tokenRole   string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for manual API calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret := orEnv(tokenSecret, "JWT_SECRET")
		if secret == "" {
			return fmt.Errorf("jwt secret required (--secret or JWT_SECRET)")
		}
		issuer := orEnv(tokenIssuer, "JWT_ISSUER")
		if issuer == "" {
			issuer = "expense-tracker"
		}
		uid := tokenUser
		if uid == "" {
			uid = uuid.NewString()
		}
		tok, err := security.NewJWTSigner(secret, issuer).SignAccessToken(uid, tokenRole, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenSecret, "secret", "", "signing secret (defaults to JWT_SECRET)")
	f.StringVar(&tokenIssuer, "issuer", "", "issuer (defaults to JWT_ISSUER)")
	f.StringVar(&tokenUser, "user", "", "user id; random when empty")
	f.StringVar(&tokenRole, "role", string(domain.RoleUser), "role claim")
	f.DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
}
