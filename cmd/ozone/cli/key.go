package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leap-ai/ozone/internal/service"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"apikey"},
		Short:   "Manage API keys",
		Long:    "Issue, list, and revoke the API keys used to authenticate against the Ozone data gateway.",
	}

	cmd.AddCommand(newKeyCreateCmd())
	cmd.AddCommand(newKeyListCmd())
	cmd.AddCommand(newKeyRevokeCmd())

	return cmd
}

// ---------- key create ----------

func newKeyCreateCmd() *cobra.Command {
	var (
		accountEmail string
		name         string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue a new API key",
		Long:  "Issue a new API key for an account. The raw key is shown once and cannot be retrieved again.",
		Example: `  ozone key create --account dev@leap.ai --name "CI pipeline"
  ozone key create --account dev@leap.ai --name staging`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyCreate(accountEmail, name)
		},
	}

	cmd.Flags().StringVar(&accountEmail, "account", "", "Email of the owning account (required)")
	cmd.Flags().StringVar(&name, "name", "", "Human-readable name for the key (required)")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("name")

	return cmd
}

func runKeyCreate(accountEmail, name string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	account, err := st.GetAccountByEmail(ctx, accountEmail)
	if err != nil {
		return fmt.Errorf("account %q not found", accountEmail)
	}

	issued, err := service.NewKeyService(st).Issue(ctx, account.ID, name)
	if err != nil {
		return fmt.Errorf("issue api key: %w", err)
	}

	fmt.Println("API Key created:")
	fmt.Println()
	fmt.Printf("  Key:     %s\n", issued.Plaintext)
	fmt.Printf("  Account: %s\n", account.Email)
	fmt.Printf("  Name:    %s\n", issued.Key.Name)
	fmt.Printf("  Quota:   %d requests\n", issued.Key.RateLimit)
	fmt.Println()
	fmt.Println("  Save this key now - it cannot be retrieved again.")
	return nil
}

// ---------- key list ----------

func newKeyListCmd() *cobra.Command {
	var (
		jsonOutput   bool
		accountEmail string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List API keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyList(accountEmail, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&accountEmail, "account", "", "Only list keys for this account email")

	return cmd
}

func runKeyList(accountEmail string, jsonOutput bool) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	keys, err := st.ListAPIKeys(ctx)
	if err != nil {
		return fmt.Errorf("list api keys: %w", err)
	}

	if accountEmail != "" {
		account, err := st.GetAccountByEmail(ctx, accountEmail)
		if err != nil {
			return fmt.Errorf("account %q not found", accountEmail)
		}
		keys, err = st.ListAPIKeysByAccount(ctx, account.ID)
		if err != nil {
			return fmt.Errorf("list api keys: %w", err)
		}
	}

	type keyRow struct {
		ID      string `json:"id"`
		Prefix  string `json:"prefix"`
		Name    string `json:"name"`
		Usage   string `json:"usage"`
		Active  bool   `json:"active"`
		Account string `json:"account_id"`
	}

	rows := make([]keyRow, len(keys))
	for i, k := range keys {
		rows[i] = keyRow{
			ID:      k.ID,
			Prefix:  k.KeyPrefix,
			Name:    k.Name,
			Usage:   fmt.Sprintf("%d/%d", k.UsageCount, k.RateLimit),
			Active:  k.IsActive,
			Account: k.AccountID,
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No API keys found. Use 'ozone key create' to issue one.")
		return nil
	}

	fmt.Printf("%-36s %-14s %-20s %-12s %-8s\n", "ID", "PREFIX", "NAME", "USAGE", "ACTIVE")
	fmt.Printf("%-36s %-14s %-20s %-12s %-8s\n", "--", "------", "----", "-----", "------")
	for _, k := range rows {
		active := "yes"
		if !k.Active {
			active = "no"
		}
		fmt.Printf("%-36s %-14s %-20s %-12s %-8s\n", k.ID, k.Prefix, k.Name, k.Usage, active)
	}

	return nil
}

// ---------- key revoke ----------

func newKeyRevokeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke <key-id>",
		Short: "Revoke an API key by its ID",
		Long:  "Permanently deactivate an API key. Revoked keys never authenticate again.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyRevoke(args[0])
		},
	}

	return cmd
}

func runKeyRevoke(keyID string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.RevokeAPIKeyByID(context.Background(), keyID); err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}

	fmt.Printf("Revoked API key %s\n", keyID)
	return nil
}
