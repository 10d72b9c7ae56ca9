package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/livinlefevreloca/syncbridge/internal/account"
	"github.com/livinlefevreloca/syncbridge/internal/db"
)

var (
	accountOrigin string
	accountStatus string
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage the accounts sync cycles run for",
}

var accountsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := account.ParseVerificationStatus(accountStatus)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.database.CreateAccount(cmd.Context(), &db.Account{
			Name:               args[0],
			Origin:             accountOrigin,
			VerificationStatus: status.String(),
		})
		if db.IsDuplicate(err) {
			return fmt.Errorf("account %s already exists", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", args[0], status)
		return nil
	},
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		accounts, err := a.context.ListAccounts(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOut {
			type view struct {
				Name               string `json:"name"`
				Origin             string `json:"origin"`
				VerificationStatus string `json:"verification_status"`
			}
			out := make([]view, len(accounts))
			for i, acct := range accounts {
				out[i] = view{acct.Name, acct.Origin, acct.VerificationStatus.String()}
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tORIGIN\tVERIFICATION")
		for _, acct := range accounts {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", acct.Name, acct.Origin, acct.VerificationStatus)
		}
		return tw.Flush()
	},
}

var accountsVerifyCmd = &cobra.Command{
	Use:   "verify <name> <not_verified|succeeded|failed>",
	Short: "Set an account's credential verification status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := account.ParseVerificationStatus(args[1])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.database.SetVerificationStatus(cmd.Context(), args[0], status.String())
		if db.IsNotFound(err) {
			return fmt.Errorf("account %s not found", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", args[0], status)
		return nil
	},
}

var accountsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an account and its stored timelines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		err = a.database.DeleteAccount(cmd.Context(), args[0])
		if db.IsNotFound(err) {
			return fmt.Errorf("account %s not found", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
		return nil
	},
}

func init() {
	accountsAddCmd.Flags().StringVar(&accountOrigin, "origin", "", "service the account lives on")
	accountsAddCmd.Flags().StringVar(&accountStatus, "status", account.NotVerified.String(), "initial verification status")

	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsVerifyCmd)
	accountsCmd.AddCommand(accountsRemoveCmd)
	rootCmd.AddCommand(accountsCmd)
}
