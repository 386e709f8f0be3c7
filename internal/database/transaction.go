package database

// Atomic writes for WE:VE.
//
// AtomicBatch is the usual entry point:
//
//	batch := NewAtomicBatch()
//	batch.Add("UPDATE type::record($id) SET partner_id = $partner", vars1)
//	batch.Add("UPDATE type::record($id) SET partner_id = $partner", vars2)
//	batch.Execute(ctx, db)  // All or nothing
//
// Statements commonly reuse variable names ($id above), so TxBuilder
// namespaces each statement's variables before joining them.

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// TxBuilder builds atomic transaction queries with automatic variable namespacing.
// Two statements both using $id end up bound to $s1_id and $s2_id.
type TxBuilder struct {
	statements []string
	vars       map[string]interface{}
}

// NewTxBuilder creates a new transaction builder
func NewTxBuilder() *TxBuilder {
	return &TxBuilder{
		vars: make(map[string]interface{}),
	}
}

// Add appends a statement, rewriting its variables into a unique namespace
func (tb *TxBuilder) Add(query string, vars map[string]interface{}) {
	prefix := fmt.Sprintf("s%d_", len(tb.statements)+1)

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	// Longest first so $user_id is not clobbered by $user
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	for _, name := range names {
		re := regexp.MustCompile(`\$` + regexp.QuoteMeta(name) + `\b`)
		query = re.ReplaceAllString(query, "$$"+prefix+name)
		tb.vars[prefix+name] = vars[name]
	}

	tb.statements = append(tb.statements, query)
}

// Len returns the number of statements added so far
func (tb *TxBuilder) Len() int {
	return len(tb.statements)
}

// Build returns the complete transaction query and merged variables
func (tb *TxBuilder) Build() (string, map[string]interface{}) {
	if len(tb.statements) == 0 {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString("BEGIN TRANSACTION;\n")
	for _, stmt := range tb.statements {
		sb.WriteString(strings.TrimSpace(stmt))
		if !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
			sb.WriteString(";")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("COMMIT TRANSACTION;")

	return sb.String(), tb.vars
}

// AtomicBatch collects statements that must succeed or fail together
type AtomicBatch struct {
	builder *TxBuilder
}

// NewAtomicBatch creates a new atomic batch
func NewAtomicBatch() *AtomicBatch {
	return &AtomicBatch{builder: NewTxBuilder()}
}

// Add adds a query to the batch
func (ab *AtomicBatch) Add(query string, vars map[string]interface{}) *AtomicBatch {
	ab.builder.Add(query, vars)
	return ab
}

// Execute runs all queries as a single transaction
func (ab *AtomicBatch) Execute(ctx context.Context, db Database) error {
	query, vars := ab.builder.Build()
	if query == "" {
		return nil
	}
	return db.Execute(ctx, query, vars)
}

// Len returns the number of queries in the batch
func (ab *AtomicBatch) Len() int {
	return ab.builder.Len()
}
