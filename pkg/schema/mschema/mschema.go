// Package mschema renders a schema.ProjectedSchema into the compact,
// LLM-prompt-ready text representation used by the generation agents
//. Table and column order within the rendering is
// deterministically shuffled per request so that no single table position
// in the prompt is systematically favored by the model across repeated
// calls for the same question.
package mschema

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/mptyl/thoth-sqlgen/pkg/schema"
)

// Render produces the mschema text for schema, with table and column
// order shuffled deterministically from seed. Callers derive seed from
// the request ID and the call index (e.g. FNV-hash of "<requestID>:<callIndex>")
// so that repeated renders within one candidate-generation fan-out are
// reproducible for debugging while still varying across requests.
func Render(s *schema.ProjectedSchema, seed uint64) string {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	tables := make([]schema.Table, len(s.Tables))
	copy(tables, s.Tables)
	rng.Shuffle(len(tables), func(i, j int) { tables[i], tables[j] = tables[j], tables[i] })

	var b strings.Builder
	for _, t := range tables {
		writeTable(&b, t, rng)
	}
	return b.String()
}

func writeTable(b *strings.Builder, t schema.Table, rng *rand.Rand) {
	fmt.Fprintf(b, "## Table: %s\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(b, "# %s\n", t.Description)
	} else if t.AIDescription != "" {
		fmt.Fprintf(b, "# %s\n", t.AIDescription)
	}

	cols := make([]schema.Column, len(t.Columns))
	copy(cols, t.Columns)
	rng.Shuffle(len(cols), func(i, j int) { cols[i], cols[j] = cols[j], cols[i] })

	b.WriteString("[\n")
	for i, c := range cols {
		writeColumn(b, c)
		if i < len(cols)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("]\n\n")
}

func writeColumn(b *strings.Builder, c schema.Column) {
	fmt.Fprintf(b, "(%s:%s", c.Name, dataFormatOrDefault(c.DataFormat))

	desc := c.Description
	if desc == "" {
		desc = c.AIDescription
	}
	if desc != "" {
		fmt.Fprintf(b, ", %s", desc)
	}
	if c.ValueDescription != "" {
		fmt.Fprintf(b, ", %s", c.ValueDescription)
	}

	var tags []string
	if c.IsPrimaryKey {
		tags = append(tags, "Primary Key")
	}
	if c.IsForeignKey {
		tags = append(tags, "Foreign Key")
	}
	if len(tags) > 0 {
		fmt.Fprintf(b, ", %s", strings.Join(tags, ", "))
	}

	if len(c.ExampleValues) > 0 {
		fmt.Fprintf(b, ", Examples: [%s]", strings.Join(c.ExampleValues, ", "))
	}
	b.WriteString(")")
}

func dataFormatOrDefault(format string) string {
	if format == "" {
		return "TEXT"
	}
	return format
}
