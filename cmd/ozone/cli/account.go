package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leap-ai/ozone/internal/model"
	"github.com/leap-ai/ozone/internal/service"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage dashboard accounts",
		Long:  "Create and list the accounts that can log in to the dashboard API and manage API keys.",
	}

	cmd.AddCommand(newAccountCreateCmd())
	cmd.AddCommand(newAccountListCmd())

	return cmd
}

// ---------- account create ----------

func newAccountCreateCmd() *cobra.Command {
	var (
		email    string
		password string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new account",
		Example: `  ozone account create --email dev@leap.ai --password secret
  ozone account create --email dev@leap.ai  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountCreate(email, password, name)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	cmd.Flags().StringVar(&name, "name", "", "Account display name")
	cmd.MarkFlagRequired("email")

	return cmd
}

func runAccountCreate(email, password, name string) error {
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %q", email)
	}

	// Prompt for password if not provided
	if password == "" {
		fmt.Print("Password: ")
		pwBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Println()
		password = string(pwBytes)

		fmt.Print("Confirm password: ")
		confirmBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		fmt.Println()

		if password != string(confirmBytes) {
			return fmt.Errorf("passwords do not match")
		}
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	hash, err := service.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	acct := &model.Account{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Name:         name,
		IsActive:     true,
	}
	if err := st.CreateAccount(context.Background(), acct); err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	fmt.Printf("Created account %q (id %s)\n", acct.Email, acct.ID)
	return nil
}

// ---------- account list ----------

func newAccountListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAccountList(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runAccountList(jsonOutput bool) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	accounts, err := st.ListAccounts(context.Background())
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}

	type accountRow struct {
		Email  string `json:"email"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}

	rows := make([]accountRow, len(accounts))
	for i, a := range accounts {
		rows[i] = accountRow{Email: a.Email, Name: a.Name, Active: a.IsActive}
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No accounts found. Use 'ozone account create' to create one.")
		return nil
	}

	fmt.Printf("%-30s %-24s %-8s\n", "EMAIL", "NAME", "ACTIVE")
	fmt.Printf("%-30s %-24s %-8s\n", "-----", "----", "------")
	for _, a := range rows {
		active := "yes"
		if !a.Active {
			active = "no"
		}
		fmt.Printf("%-30s %-24s %-8s\n", a.Email, a.Name, active)
	}

	return nil
}
