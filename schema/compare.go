// Package schema diffs column lists, adapted from the teacher's
// schema.SchemaComparer down to the single concern filesql needs: what
// changed between a table's schema before and after an ALTER TABLE ADD
// COLUMN, so the migration ledger can describe it.
package schema

import "github.com/mstgnz/filesql/coltype"

// Added returns the columns present in after but not in before, in
// after's order. ALTER TABLE ADD COLUMN only ever appends, so in
// practice this is a suffix of after, but the comparison is by name to
// stay correct if before/after are supplied out of order.
func Added(before, after []coltype.Column) []coltype.Column {
	seen := make(map[string]bool, len(before))
	for _, c := range before {
		seen[c.Name] = true
	}

	var added []coltype.Column
	for _, c := range after {
		if !seen[c.Name] {
			added = append(added, c)
		}
	}
	return added
}

// Removed returns the columns present in before but not in after. The
// engine never removes a column (there is no DROP COLUMN in the
// grammar), so this is exposed only for completeness and symmetry with
// Added.
func Removed(before, after []coltype.Column) []coltype.Column {
	return Added(after, before)
}
