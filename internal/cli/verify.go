package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ErrCodeInvariant is reported in JSON output when verify finds violations.
const ErrCodeInvariant = "E_INVARIANT_VIOLATION"

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var structureID int64

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a structure's nested-set invariants",
		Long: `Check that every root group of a structure is contiguous and properly
nested, and print a fingerprint of its layout.

Exit codes:
  0 - No violations
  1 - One or more invariants violated
  2 - Command error

Examples:
  nestedset verify -s 1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer sess.Close()

			report, err := sess.service.Verify(cmd.Context(), structureID)
			if err != nil {
				return sess.out.Fail(exitCodeFor(err), "verify failed", err)
			}

			if report.OK() {
				return sess.out.Success(report,
					fmt.Sprintf("✓ structure %d: %d node(s), hash %s", report.StructureID, report.Nodes, report.Hash))
			}

			message := fmt.Sprintf("%d invariant violation(s)", len(report.Violations))
			if rootOpts.Format == "json" {
				if err := sess.out.Error(ErrCodeInvariant, message, report); err != nil {
					return err
				}
				return NewExitError(ExitFailure, message)
			}

			var text strings.Builder
			fmt.Fprintf(&text, "✗ structure %d: %s", report.StructureID, message)
			for _, v := range report.Violations {
				fmt.Fprintf(&text, "\n  %s", v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text.String())
			return NewExitError(ExitFailure, message)
		},
	}

	cmd.Flags().Int64VarP(&structureID, "structure", "s", 0, "structure ID (required)")
	_ = cmd.MarkFlagRequired("structure")

	return cmd
}
