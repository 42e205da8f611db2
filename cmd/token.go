/*
Copyright © 2026 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/manifold/internal/forge"
	"github.com/fulmenhq/manifold/pkg/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the forge access token",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store an access token",
	Long: `Stores a token for pull request submission. Without an argument an OAuth
device authorization is started: visit the printed URL, enter the code, and
the granted token is stored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTokenSet,
}

var tokenValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the stored token authenticates",
	Args:  cobra.NoArgs,
	RunE:  runTokenValidate,
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.ClearToken(); err != nil {
			return err
		}
		cmd.Println("Token removed")
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	tokenCmd.AddCommand(tokenValidateCmd)
	tokenCmd.AddCommand(tokenClearCmd)
}

func runTokenSet(cmd *cobra.Command, args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		flow := forge.NewDeviceFlow(forge.DefaultClientID, nil)
		code, err := flow.Start(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Printf("Open %s and enter the code %s\n", code.VerificationURI, code.UserCode)
		token, err = flow.Wait(cmd.Context(), code)
		if err != nil {
			return err
		}
	}

	login, _, err := forge.ValidateToken(cmd.Context(), token, nil)
	if err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}
	if err := config.SaveToken(token); err != nil {
		return err
	}
	cmd.Printf("Token stored for %s\n", login)
	return nil
}

func runTokenValidate(cmd *cobra.Command, _ []string) error {
	token, err := config.LoadToken()
	if err != nil {
		return err
	}
	if token == "" {
		return forge.ErrNoToken
	}
	login, remaining, err := forge.ValidateToken(cmd.Context(), token, nil)
	if err != nil {
		return err
	}
	cmd.Printf("Token valid for %s (rate limit remaining: %d)\n", login, remaining)
	return nil
}
