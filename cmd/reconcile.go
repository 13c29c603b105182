package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"list-manager/core/reconcile"
	"list-manager/feature/lists/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	bookChanges []string
	dryRunBook  bool
	yesConfirm  bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile list membership",
}

// bookReconcileCmd moves one book across lists of a user.
var bookReconcileCmd = &cobra.Command{
	Use:   "book [username] [bookKey]",
	Short: "Move a book across lists (plan + optionally apply)",
	Long: `Move a book from its previous lists to its desired lists.

Each --change is "<type>:<previous keys>:<desired keys>" with comma separated
list keys. Either side may be empty. Types are processed in the order given.

Examples:
  # Show the plan only
  reconcile book alice bk1 --change core:reading:completed --dry-run

  # Move between shelves and add to a created list, auto-confirmed
  reconcile book alice bk1 --change core:reading:completed --change created::favs --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runBookReconcile,
}

func init() {
	reconcileCmd.AddCommand(bookReconcileCmd)

	bookReconcileCmd.Flags().StringArrayVar(&bookChanges, "change", nil, "Membership change <type>:<previous>:<desired> (repeatable)")
	bookReconcileCmd.Flags().BoolVar(&dryRunBook, "dry-run", false, "Print the plan without applying it")
	bookReconcileCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Apply without asking for confirmation")
	_ = bookReconcileCmd.MarkFlagRequired("change")

	RootCmd.AddCommand(reconcileCmd)
}

func runBookReconcile(cmd *cobra.Command, args []string) error {
	changes, err := parseChanges(bookChanges)
	if err != nil {
		return err
	}

	env, err := setup()
	if err != nil {
		return err
	}
	l := env.logger
	defer l.Sync()

	creatorKey, err := env.resolveUser(cmd, args[0])
	if err != nil {
		return err
	}
	bookKey := args[1]
	svc := env.listService()

	l.Info("Planning reconciliation...", zap.String("book_key", bookKey))
	plan, err := svc.PlanBookMembership(cmd.Context(), creatorKey, bookKey, changes)
	if err != nil {
		return fmt.Errorf("failed to plan reconciliation: %w", err)
	}
	printReconcileReport(l, plan)

	if !plan.Changed() {
		l.Info("Nothing to do: previous and desired lists match.")
		return nil
	}
	if dryRunBook {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if !confirmAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	changed, err := svc.BulkUpdateMembership(cmd.Context(), creatorKey, bookKey, changes)
	if err != nil {
		return fmt.Errorf("failed to apply reconciliation: %w", err)
	}
	l.Info("Reconciliation applied", zap.Bool("changed", changed))
	return nil
}

// parseChanges converts "<type>:<previous>:<desired>" flags into changes.
func parseChanges(raw []string) ([]reconcile.Change, error) {
	changes := make([]reconcile.Change, 0, len(raw))
	for _, r := range raw {
		parts := strings.Split(r, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid change %q: want <type>:<previous>:<desired>", r)
		}
		t, err := models.ParseType(strings.TrimSpace(parts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid change %q: %w", r, err)
		}
		changes = append(changes, reconcile.Change{
			Partition: string(t),
			Previous:  splitKeys(parts[1]),
			Desired:   splitKeys(parts[2]),
		})
	}
	return changes, nil
}

func splitKeys(raw string) []string {
	keys := []string{}
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// printReconcileReport prints a formatted reconciliation report using logger.
func printReconcileReport(l *zap.Logger, plan *reconcile.ReconcilePlan) {
	s := plan.Summary

	l.Info("Reconciliation report",
		zap.Int("partitions_loaded", s.PartitionsLoaded),
		zap.Int("partitions_skipped", s.PartitionsSkipped),
		zap.Int("remove_actions", s.RemoveActions),
		zap.Int("add_actions", s.AddActions),
		zap.Int("missing_lists", s.MissingTargets),
	)

	for _, part := range plan.Partitions {
		if len(part.Missing) > 0 {
			l.Warn("Lists not found", zap.String("type", part.Partition), zap.Strings("keys", part.Missing))
		}
	}
	for _, action := range plan.Actions() {
		l.Info("Planned action",
			zap.String("type", string(action.Type)),
			zap.String("list_type", action.Partition),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
}

// confirmAction prompts the user for confirmation or uses --yes flag.
func confirmAction() bool {
	if yesConfirm {
		fmt.Println("\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nType 'yes' to apply these changes: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
