package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"list-manager/core/storage"
	"list-manager/feature/export"
	"list-manager/feature/lists/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var showType string

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Inspect and export user lists",
}

var listsShowCmd = &cobra.Command{
	Use:   "show [username]",
	Short: "Print the lists of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		creatorKey, err := env.resolveUser(cmd, args[0])
		if err != nil {
			return err
		}

		types := models.Types()
		if showType != "" {
			t, err := models.ParseType(showType)
			if err != nil {
				return err
			}
			types = []models.Type{t}
		}

		svc := env.listService()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tKEY\tNAME\tBOOKS\tBOOK KEYS")
		for _, t := range types {
			records, err := svc.GetLists(cmd.Context(), creatorKey, t)
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t, r.Key, r.Name, r.BooksCount, strings.Join(r.BookKeys, ","))
			}
		}
		return w.Flush()
	},
}

var listsExportCmd = &cobra.Command{
	Use:   "export [username]",
	Short: "Export the lists of a user to object storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		creatorKey, err := env.resolveUser(cmd, args[0])
		if err != nil {
			return err
		}

		client, err := storage.NewClient(env.cfg.Storage)
		if err != nil {
			return err
		}
		if err := storage.EnsureBucket(cmd.Context(), client, env.cfg.Storage.Bucket, env.cfg.Storage.Region); err != nil {
			return err
		}

		svc := export.NewService(client, env.cfg.Storage.Bucket, env.cfg.Storage.ExportRetention, env.listService(), env.logger)
		receipt, err := svc.Export(cmd.Context(), creatorKey)
		if err != nil {
			return err
		}
		env.logger.Info("Export written", zap.String("object", receipt.Object), zap.Int64("bytes", receipt.Bytes))
		return nil
	},
}

func init() {
	listsShowCmd.Flags().StringVar(&showType, "type", "", "Only show one list type (core, created, following)")
	listsCmd.AddCommand(listsShowCmd, listsExportCmd)
	RootCmd.AddCommand(listsCmd)
}
