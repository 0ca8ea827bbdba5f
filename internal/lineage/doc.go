// Package lineage models data-object dependency trees and the consumers that
// read them.
//
// A lineage result maps one root object (table or view) to its upstream
// sources, recursively. Cycles are pre-terminated by the producer with LOOP
// sentinel nodes, so every tree handed to this package is finite.
//
// # Traversal
//
// All consumers share one depth-first, pre-order walker (Walk) and one
// recursion-stop rule (Node.IsTerminal): descent stops at base tables, at
// loop sentinels and at nodes without sources.
//
// # Consumers
//
//   - Text rendering: RenderText draws a directory-style tree with box glyphs.
//   - Tabular export: ExtractPaths flattens the tree into root-to-leaf paths,
//     Tabulate lays them out as columns and WriteCSV serialises them.
//   - View projection: View keeps expand/collapse state keyed by structural
//     position (NodePath), never by object name.
//
// # Basic Usage
//
//	res, err := lineage.Decode(r)
//	if err != nil {
//	    return err
//	}
//	fmt.Print(lineage.RenderText(res))
//	_ = lineage.WriteCSV(os.Stdout, res)
//
// Results are immutable once decoded; all consumers may run concurrently over
// the same result. Only View carries mutable state.
package lineage
