package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mliu7/trackrest/internal/authgate"
	"github.com/mliu7/trackrest/internal/config"
)

var (
	tokenUserID int64
	tokenScopes []string
	tokenTTL    time.Duration
)

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user", 0, "User id to issue the token for")
	tokenCmd.Flags().StringSliceVar(&tokenScopes, "scopes", []string{authgate.ScopeUniversal}, "Scopes to grant")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.MarkFlagRequired("user")
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token",
	Long:  "Issue a signed bearer token for a user, for development and testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("no auth.jwt_secret configured")
		}

		validator := authgate.NewJWTValidator(cfg.Auth.JWTSecret)
		token, err := validator.GenerateToken(tokenUserID, tokenScopes, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}
