package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	userKey         string
	userDisplayName string
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage the user directory",
}

var usersAddCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Register a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		user, err := env.directory().Register(cmd.Context(), userKey, args[0], userDisplayName)
		if err != nil {
			return err
		}
		env.logger.Info("User registered", zap.String("key", user.Key), zap.String("username", user.Username))
		return nil
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}

		all, err := env.directory().List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "USERNAME\tKEY\tDISPLAY NAME")
		for _, u := range all {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.Username, u.Key, u.DisplayName)
		}
		return w.Flush()
	},
}

func init() {
	usersAddCmd.Flags().StringVar(&userKey, "key", "", "Creator key (generated when empty)")
	usersAddCmd.Flags().StringVar(&userDisplayName, "display-name", "", "Display name (defaults to the username)")
	usersCmd.AddCommand(usersAddCmd, usersListCmd)
	RootCmd.AddCommand(usersCmd)
}
