// Package analysis resolves names in a parsed nrs document and answers the
// navigation queries an editor asks about it.
package analysis

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/tliron/commonlog"

	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

var log = commonlog.GetLogger("nrs-lsp.analysis")

// CompileResult bundles everything derived from one text snapshot. It is
// never mutated after Compile returns; a new text produces a new result.
type CompileResult struct {
	Text string
	// Hash is the xxhash of Text.
	Hash uint64

	File           *syntax.File
	Table          *symbols.Table
	SyntaxErrors   []syntax.Error
	SemanticErrors []SemanticError
	// Diagnostics merges syntax and semantic problems, ordered by position.
	Diagnostics []Diagnostic
}

// Compile parses and resolves text from scratch.
func Compile(text string) (*CompileResult, error) {
	start := time.Now()
	file, syntaxErrs := syntax.Parse(text)

	res, err := Analyze(text, file, syntaxErrs)
	if err != nil {
		return nil, err
	}
	log.Debugf("compiled %d bytes in %s: %d symbols, %d references, %d diagnostics",
		len(text), time.Since(start), res.Table.SymbolCount(), res.Table.ReferenceCount(), len(res.Diagnostics))
	return res, nil
}

// Analyze resolves an already parsed file.
func Analyze(text string, file *syntax.File, syntaxErrs []syntax.Error) (*CompileResult, error) {
	table, semErrs, err := Resolve(file)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	return &CompileResult{
		Text:           text,
		Hash:           xxhash.Sum64String(text),
		File:           file,
		Table:          table,
		SyntaxErrors:   syntaxErrs,
		SemanticErrors: semErrs,
		Diagnostics:    mergeDiagnostics(syntaxErrs, semErrs),
	}, nil
}
