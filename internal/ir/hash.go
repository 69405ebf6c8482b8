package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainSnapshot prefixes snapshot hashes. The version suffix leaves room for
// a future change of the canonical form.
const DomainSnapshot = "nestedset/snapshot/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SnapshotMap converts nodes into the canonical map form used for golden
// files and hashing. Node order is preserved; callers pass nodes sorted by
// (root, lft).
func SnapshotMap(structureID int64, nodes []Node) map[string]any {
	list := make([]any, len(nodes))
	for i, n := range nodes {
		list[i] = map[string]any{
			"id":         n.ID,
			"element_id": n.ElementID,
			"root":       n.Root,
			"lft":        n.Lft,
			"rgt":        n.Rgt,
			"level":      n.Level,
		}
	}
	return map[string]any{
		"structure_id": structureID,
		"nodes":        list,
	}
}

// SnapshotHash returns a stable fingerprint of every node position in a
// structure. Two calls return the same hash iff no node moved.
func SnapshotHash(structureID int64, nodes []Node) (string, error) {
	canonical, err := MarshalCanonical(SnapshotMap(structureID, nodes))
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainSnapshot, canonical), nil
}
