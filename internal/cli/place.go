package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/structure"
)

// PlaceOptions holds flags for the place command.
type PlaceOptions struct {
	*RootOptions
	StructureID int64
	Mode        string
	CheckDepth  bool
}

// placeResult is the JSON payload of a successful placement.
type placeResult struct {
	Verb        string      `json:"verb"`
	StructureID int64       `json:"structure_id"`
	ElementID   int64       `json:"element_id"`
	Position    ir.Position `json:"position"`
}

// NewPlaceCommand creates the place command.
func NewPlaceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlaceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "place <verb> <element-id> [target-element-id]",
		Short: "Insert or move an element",
		Long: fmt.Sprintf(`Insert or move an element relative to a target element.

Verbs: %s

prepend_to_root and append_to_root take no target; they place the
element directly below the structure's root, creating the root on
first use. Moving an element carries its whole subtree.

--mode auto inserts new elements and moves existing ones; insert
and update require the element to be absent or present respectively.
--check-depth rejects the move up front when it would exceed the
structure's max_levels.

Exit codes:
  0 - Element placed (or already in place)
  1 - Placement rejected (not found, cyclic, invalid target, too deep)
  2 - Command or storage error

Examples:
  nestedset place append_to_root 10 -s 1
  nestedset place append 11 10 -s 1
  nestedset place move_before 12 10 -s 1 --mode update`, strings.Join(structure.Verbs(), ", ")),
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(opts, args, cmd)
		},
	}

	cmd.Flags().Int64VarP(&opts.StructureID, "structure", "s", 0, "structure ID (required)")
	_ = cmd.MarkFlagRequired("structure")
	cmd.Flags().StringVar(&opts.Mode, "mode", ir.ModeAuto.String(), "placement mode (auto|insert|update)")
	cmd.Flags().BoolVar(&opts.CheckDepth, "check-depth", false, "reject moves exceeding max_levels before placing")

	return cmd
}

func runPlace(opts *PlaceOptions, args []string, cmd *cobra.Command) error {
	verb := args[0]
	placement, ok := structure.PlacementOf(verb)
	if !ok {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("unknown verb %q: must be one of %v", verb, structure.Verbs()))
	}

	elementID, err := parseID("element id", args[1])
	if err != nil {
		return err
	}

	targetID := ir.NoElement
	switch {
	case structure.IsRootVerb(verb) && len(args) == 3:
		return NewExitError(ExitCommandError, fmt.Sprintf("%s takes no target", verb))
	case !structure.IsRootVerb(verb) && len(args) < 3:
		return NewExitError(ExitCommandError, fmt.Sprintf("%s requires a target element id", verb))
	case len(args) == 3:
		if targetID, err = parseID("target element id", args[2]); err != nil {
			return err
		}
	}

	mode, err := ir.ParseMode(opts.Mode)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --mode", err)
	}

	sess, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx := cmd.Context()
	if opts.CheckDepth {
		if err := sess.service.ValidateMove(ctx, opts.StructureID, elementID, targetID, placement); err != nil {
			return sess.out.Fail(exitCodeFor(err), "depth check failed", err)
		}
		sess.out.VerboseLog("depth check passed for element %d", elementID)
	}

	el := &ir.Element{ID: elementID}
	if err := sess.service.PlaceByVerb(ctx, verb, opts.StructureID, el, targetID, mode); err != nil {
		return sess.out.Fail(exitCodeFor(err), verb+" failed", err)
	}

	return sess.out.Success(
		placeResult{Verb: verb, StructureID: opts.StructureID, ElementID: el.ID, Position: el.Position},
		fmt.Sprintf("✓ element %d at [%d,%d] L%d (root %d)", el.ID, el.Lft, el.Rgt, el.Level, el.Root),
	)
}
