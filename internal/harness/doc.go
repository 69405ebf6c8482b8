// Package harness runs placement scenarios against a fresh structure and
// checks the resulting tree.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	max_levels: 0            # optional, 0 means unlimited
//	veto: [99]               # optional, before-move vetoes these elements
//	setup:
//	  - verb: append_to_root
//	    element: 10
//	flow:
//	  - verb: prepend
//	    element: 30
//	    target: 20
//	    mode: auto           # auto, insert or update
//	    check_depth: true    # run ValidateMove before placing
//	    expect:
//	      outcome: ok        # ok or a lower-cased error code
//	      position: { lft: 5, rgt: 6, level: 3 }
//	assertions:
//	  - type: node
//	    element: 20
//	    expect: { lft: 4, rgt: 7 }
//	  - type: invariants
//
// Verbs are the six placement verbs of package structure plus "remove".
//
// # Assertion Types
//
//   - node: the element's position matches every given field
//   - absent: the element has no node
//   - invariants: the structure passes Verify
//   - level_delta: GetElementLevelDelta returns delta
//   - children: the element's children are exactly elements, in order
//   - node_count: the structure holds count nodes, root included
//   - event_count: count after-move events were delivered
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory SQLite database and a clock starting at
// zero, so the trace and the final tree are reproducible and can be
// compared against golden files.
package harness
