package structure

import (
	"context"

	"github.com/roach88/nestedset/internal/engine"
	"github.com/roach88/nestedset/internal/ir"
)

// Report is the result of Verify.
type Report struct {
	StructureID int64              `json:"structure_id"`
	Nodes       int                `json:"nodes"`
	Hash        string             `json:"hash"`
	Violations  []engine.Violation `json:"violations"`
}

// OK reports whether no invariant is violated.
func (r Report) OK() bool {
	return len(r.Violations) == 0
}

// Verify checks every nested-set invariant of the structure and fingerprints
// its current layout.
func (s *Service) Verify(ctx context.Context, structureID int64) (Report, error) {
	nodes, err := s.repo.ListNodes(ctx, structureID)
	if err != nil {
		return Report{}, err
	}
	hash, err := ir.SnapshotHash(structureID, nodes)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		StructureID: structureID,
		Nodes:       len(nodes),
		Hash:        hash,
		Violations:  engine.CheckInvariants(nodes),
	}
	if !report.OK() {
		s.logger.Warn("structure invariants violated",
			"structure_id", structureID, "violations", len(report.Violations))
	}
	return report, nil
}
