package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/site-bender/sitebender-sub007/internal/core/auth"
	"github.com/site-bender/sitebender-sub007/internal/core/config"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys for the evaluation service",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create <client-id>",
	Short: "Issue an API key for a client (printed once)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyCreate,
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <api-key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyRevoke,
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyRevokeCmd)
	apikeyCreateCmd.Flags().String("secret-id", "", "HMAC secret to sign with (default: the only configured secret)")
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	secretID, _ := cmd.Flags().GetString("secret-id")
	secretID, err = pickSecret(secrets, secretID)
	if err != nil {
		return err
	}

	key, hash, err := auth.GenerateAPIKey(secretID, secrets[secretID])
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	rec, err := store.InsertAPIKey(ctx, args[0], secretID, hash)
	if err != nil {
		return err
	}
	logger.Info("API key issued", "api_key_id", rec.ID, "client_id", rec.ClientID, "secret_id", secretID)
	fmt.Fprintln(cmd.OutOrStdout(), key)
	return nil
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.RevokeAPIKey(ctx, args[0]); err != nil {
		return err
	}
	logger.Info("API key revoked", "api_key_id", args[0])
	return nil
}

// pickSecret returns want if configured, or the single configured secret.
func pickSecret(secrets map[string][]byte, want string) (string, error) {
	if len(secrets) == 0 {
		return "", fmt.Errorf("no HMAC secrets configured (set %s_HMAC_SECRET environment variable)", config.EnvPrefix)
	}
	if want != "" {
		if _, ok := secrets[want]; !ok {
			return "", fmt.Errorf("secret ID %s is not configured", want)
		}
		return want, nil
	}
	if len(secrets) > 1 {
		ids := make([]string, 0, len(secrets))
		for id := range secrets {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return "", fmt.Errorf("several HMAC secrets configured, choose one with --secret-id (%v)", ids)
	}
	for id := range secrets {
		return id, nil
	}
	return "", nil
}
