package store

import (
	"fmt"
	"strings"
)

// upsertChunkSize bounds single-statement size for batch writes.
const upsertChunkSize = 1000

// buildUpsert renders a multi-row INSERT ... ON CONFLICT DO UPDATE for a
// statically declared column list. Key columns are never updated on
// conflict; every other column is overwritten from EXCLUDED. Column lists
// are package-level constants, never derived from runtime data.
func buildUpsert(table string, columns, keyColumns []string, rowCount int) string {
	var sb strings.Builder

	sb.WriteString("INSERT INTO ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(columns, ", "))
	sb.WriteString(") VALUES ")

	arg := 1
	for row := 0; row < rowCount; row++ {
		if row > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for col := range columns {
			if col > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", arg)
			arg++
		}
		sb.WriteString(")")
	}

	sb.WriteString(" ON CONFLICT (")
	sb.WriteString(strings.Join(keyColumns, ", "))
	sb.WriteString(") DO UPDATE SET ")

	keys := make(map[string]bool, len(keyColumns))
	for _, k := range keyColumns {
		keys[k] = true
	}

	first := true
	for _, col := range columns {
		if keys[col] {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = EXCLUDED.%s", col, col)
		first = false
	}

	return sb.String()
}

// buildKeyCount renders the pre-check that counts how many of a chunk's
// composite keys already exist. It runs in the same transaction as the
// upsert so no concurrent writer can slip a key in between the count and
// the write.
func buildKeyCount(table string, keyColumns []string, rowCount int) string {
	var sb strings.Builder

	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(table)
	sb.WriteString(" WHERE (")
	sb.WriteString(strings.Join(keyColumns, ", "))
	sb.WriteString(") IN (")

	arg := 1
	for row := 0; row < rowCount; row++ {
		if row > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for col := range keyColumns {
			if col > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", arg)
			arg++
		}
		sb.WriteString(")")
	}

	sb.WriteString(")")
	return sb.String()
}

// chunkBounds yields [start, end) index pairs partitioning n rows into
// chunks of at most upsertChunkSize.
func chunkBounds(n int) [][2]int {
	bounds := make([][2]int, 0, n/upsertChunkSize+1)
	for start := 0; start < n; start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > n {
			end = n
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}
