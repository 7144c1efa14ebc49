// Package schema implements the schema-derivation stage of the
// Text-to-SQL pipeline: LSH-based example-value lookup, vector-store
// description enrichment, and the schema-link strategy selector that
// decides between a filtered
// and a full mschema rendering.
package schema

import (
	"context"

	"go.uber.org/zap"

	srvErrors "github.com/mptyl/thoth-sqlgen/pkg/errors"
	"github.com/mptyl/thoth-sqlgen/pkg/schema/lsh"
	"github.com/mptyl/thoth-sqlgen/pkg/vectorstore"
)

// Column is one projected column, enriched in place through the
// pipeline's three stages (LSH examples, vector-store descriptions).
type Column struct {
	Name              string
	OriginalName      string
	DataFormat        string
	Description       string
	AIDescription     string
	ValueDescription  string
	IsPrimaryKey      bool
	IsForeignKey      bool
	ExampleValues     []string
}

// Table is one projected table with its enriched columns.
type Table struct {
	Name          string
	Description   string
	AIDescription string
	Columns       []Column
}

// ProjectedSchema is the intermediate structure §4.4 Operation 1 and 2
// produce: a schema subset carrying example values and descriptions.
type ProjectedSchema struct {
	Tables []Table
}

// SimilarColumn is one LSH hit: a candidate (table, column, value) triple
// surfaced for a keyword.
type SimilarColumn struct {
	Table  string
	Column string
	Value  string
}

// BuildSimilarColumns runs the LSH lookup for every keyword and attaches
// the resulting example values onto matching columns in schema. LSH
// availability is critical: a nil index is always an error, never a
// silent empty result.
func BuildSimilarColumns(index *lsh.Index, keywords []string, schema *ProjectedSchema) ([]SimilarColumn, error) {
	if index == nil {
		return nil, srvErrors.NewLSHUnavailableError("", "no LSH index was built for this SqlDb")
	}

	var matches []SimilarColumn
	seen := make(map[string]bool)
	for _, kw := range keywords {
		for _, hit := range index.Query(kw) {
			key := hit.Table + "." + hit.Column + "=" + hit.Value
			if seen[key] {
				continue
			}
			seen[key] = true
			matches = append(matches, SimilarColumn{Table: hit.Table, Column: hit.Column, Value: hit.Value})
			attachExample(schema, hit.Table, hit.Column, hit.Value)
		}
	}
	return matches, nil
}

func attachExample(schema *ProjectedSchema, table, column, value string) {
	for ti := range schema.Tables {
		if schema.Tables[ti].Name != table {
			continue
		}
		for ci := range schema.Tables[ti].Columns {
			if schema.Tables[ti].Columns[ci].Name != column {
				continue
			}
			schema.Tables[ti].Columns[ci].ExampleValues = append(schema.Tables[ti].Columns[ci].ExampleValues, value)
		}
	}
}

// EnrichFromVectorStore retrieves column descriptions from the vector
// store and merges them onto schema. Failure here is non-critical: the
// caller logs a warning and continues with the schema unenriched.
func EnrichFromVectorStore(ctx context.Context, store vectorstore.Store, schema *ProjectedSchema) error {
	if store == nil {
		return nil
	}

	docs, err := store.GetAllColumnDocuments(ctx)
	if err != nil {
		zap.S().Named("schema").Warnw("vector-store schema enrichment failed", "error", err)
		return err
	}

	byKey := make(map[string]vectorstore.ColumnNameDocument, len(docs))
	for _, d := range docs {
		byKey[d.Table+"."+d.Column] = d
	}

	for ti := range schema.Tables {
		for ci := range schema.Tables[ti].Columns {
			col := &schema.Tables[ti].Columns[ci]
			if d, ok := byKey[schema.Tables[ti].Name+"."+col.Name]; ok {
				col.AIDescription = d.ColumnDescription
				col.ValueDescription = d.ValueDescription
			}
		}
	}
	return nil
}

// LinkStrategy is the schema-link decision between a filtered schema
// projection and the full schema.
type LinkStrategy string

const (
	WithSchemaLink    LinkStrategy = "WITH_SCHEMA_LINK"
	WithoutSchemaLink LinkStrategy = "WITHOUT_SCHEMA_LINK"
)

// keywordCountThreshold/tableCountThreshold, together with the 120-character
// question-length cutoff inside SelectStrategy, are the
// deterministic inputs to SelectStrategy; this module's chosen fixed
// values (see DESIGN.md), since a deterministic decision needs some
// concrete cutoffs.
const (
	keywordCountThreshold = 3
	tableCountThreshold   = 8
)

// SelectStrategy decides WITH_SCHEMA_LINK (use the filtered/reduced
// mschema) or WITHOUT_SCHEMA_LINK (use the full enriched mschema),
// deterministically given question length, keyword count and schema
// size.
func SelectStrategy(questionLength, keywordCount, tableCount int) LinkStrategy {
	if keywordCount >= keywordCountThreshold && tableCount > tableCountThreshold {
		return WithSchemaLink
	}
	if questionLength > 120 && tableCount > tableCountThreshold {
		return WithSchemaLink
	}
	return WithoutSchemaLink
}
