package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
	"github.com/roach88/nestedset/internal/store"
	"github.com/roach88/nestedset/internal/structure"
)

// session bundles what a database-backed command needs.
type session struct {
	service *structure.Service
	store   *store.Store
	out     *OutputFormatter
	logger  *slog.Logger
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
	}
}

// newFormatter builds the formatter for cmd's writers.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newLogger writes text logs to w. Only warnings surface unless verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openSession opens the database named by --db and wires a service to it.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	if opts.Database == "" {
		return nil, NewExitError(ExitCommandError, "--db is required")
	}

	logger := newLogger(opts, cmd.ErrOrStderr())
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	logger.Debug("database opened", "path", opts.Database)

	return &session{
		service: structure.New(st.WithLogger(logger), structure.WithLogger(logger)),
		store:   st,
		out:     newFormatter(opts, cmd),
		logger:  logger,
	}, nil
}

// parseID parses a positive integer argument.
func parseID(name, arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid %s %q: must be a positive integer", name, arg))
	}
	return id, nil
}

// exitCodeFor maps a service error to an exit code. Rejected placements are
// failures; storage and unclassified errors are command errors.
func exitCodeFor(err error) int {
	switch engine.CodeOf(err) {
	case "", engine.ErrCodeStorageFailure:
		return ExitCommandError
	default:
		return ExitFailure
	}
}

// nodeView is the JSON shape of a node in command output.
type nodeView struct {
	ElementID int64 `json:"element_id,omitempty"`
	Root      int64 `json:"root"`
	Lft       int64 `json:"lft"`
	Rgt       int64 `json:"rgt"`
	Level     int   `json:"level"`
}

func viewOf(n ir.Node) nodeView {
	return nodeView{ElementID: n.ElementID, Root: n.Root, Lft: n.Lft, Rgt: n.Rgt, Level: n.Level}
}

func viewsOf(nodes []ir.Node) []nodeView {
	views := make([]nodeView, len(nodes))
	for i, n := range nodes {
		views[i] = viewOf(n)
	}
	return views
}

// formatNode renders one node on a line, indented by depth below minLevel.
func formatNode(n ir.Node, minLevel int) string {
	indent := strings.Repeat("  ", max(n.Level-minLevel, 0))
	label := "root"
	if n.HasElement() {
		label = fmt.Sprintf("element %d", n.ElementID)
	}
	return fmt.Sprintf("%s%s [%d,%d] L%d", indent, label, n.Lft, n.Rgt, n.Level)
}

// formatTree renders nodes in lft order, one per line.
func formatTree(nodes []ir.Node) string {
	if len(nodes) == 0 {
		return "(empty)"
	}
	minLevel := nodes[0].Level
	for _, n := range nodes {
		minLevel = min(minLevel, n.Level)
	}

	lines := make([]string, len(nodes))
	for i, n := range nodes {
		lines[i] = formatNode(n, minLevel)
	}
	return strings.Join(lines, "\n")
}
