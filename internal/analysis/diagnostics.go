package analysis

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

// DiagnosticSource is the source label attached to every diagnostic.
const DiagnosticSource = "nrs"

// Diagnostic codes.
const (
	CodeSyntax       = "E_SYNTAX"
	CodeUndefined    = "E_UNDEFINED"
	CodeUnknownType  = "E_UNKNOWN_TYPE"
	CodeUnknownField = "E_UNKNOWN_FIELD"
	CodeListElement  = "E_LIST_ELEMENT"
	CodeDuplicate    = "E_DUPLICATE"
)

// Severity ranks a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	case SeverityHint:
		return "hint"
	}
	return "unknown"
}

// Diagnostic is a user-facing problem report.
type Diagnostic struct {
	Span     source.Span
	Severity Severity
	Code     string
	Message  string
	Source   string
	// Suggestion is a replacement name offered by quick fixes, if any.
	Suggestion string
}

// SemanticError is a recoverable problem found while resolving names. The
// set of implementations is closed.
type SemanticError interface {
	error
	Span() source.Span
	Code() string
	semanticError()
}

// UndefinedVariable reports a name with no visible binding.
type UndefinedVariable struct {
	Name       string
	Pos        source.Span
	Suggestion string
}

// InconsistentElementType reports a list element whose type differs from the
// first element's.
type InconsistentElementType struct {
	Expected string
	Actual   string
	Pos      source.Span
}

// UnknownType reports a type name that is neither builtin nor declared.
type UnknownType struct {
	Name string
	Pos  source.Span
}

// UnknownField reports a struct literal key that the struct does not declare.
type UnknownField struct {
	Struct string
	Name   string
	Pos    source.Span
}

// DuplicateDefinition reports a top-level item or field declared twice.
type DuplicateDefinition struct {
	Name string
	Pos  source.Span
}

func (e *UndefinedVariable) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("Undefined variable %s, did you mean `%s`?", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("Undefined variable %s", e.Name)
}

func (e *InconsistentElementType) Error() string {
	return fmt.Sprintf("Expect element type: %s, but got %s", e.Expected, e.Actual)
}

func (e *UnknownType) Error() string {
	return fmt.Sprintf("Unknown type %s", e.Name)
}

func (e *UnknownField) Error() string {
	return fmt.Sprintf("Struct %s has no field %s", e.Struct, e.Name)
}

func (e *DuplicateDefinition) Error() string {
	return fmt.Sprintf("%s is already declared", e.Name)
}

func (e *UndefinedVariable) Span() source.Span       { return e.Pos }
func (e *InconsistentElementType) Span() source.Span { return e.Pos }
func (e *UnknownType) Span() source.Span             { return e.Pos }
func (e *UnknownField) Span() source.Span            { return e.Pos }
func (e *DuplicateDefinition) Span() source.Span     { return e.Pos }

func (*UndefinedVariable) Code() string       { return CodeUndefined }
func (*InconsistentElementType) Code() string { return CodeListElement }
func (*UnknownType) Code() string             { return CodeUnknownType }
func (*UnknownField) Code() string            { return CodeUnknownField }
func (*DuplicateDefinition) Code() string     { return CodeDuplicate }

func (*UndefinedVariable) semanticError()       {}
func (*InconsistentElementType) semanticError() {}
func (*UnknownType) semanticError()             {}
func (*UnknownField) semanticError()            {}
func (*DuplicateDefinition) semanticError()     {}

func syntaxDiagnostic(err syntax.Error) Diagnostic {
	return Diagnostic{
		Span:     err.Span,
		Severity: SeverityError,
		Code:     CodeSyntax,
		Message:  err.Msg,
		Source:   DiagnosticSource,
	}
}

func semanticDiagnostic(err SemanticError) Diagnostic {
	d := Diagnostic{
		Span:     err.Span(),
		Severity: SeverityError,
		Code:     err.Code(),
		Message:  err.Error(),
		Source:   DiagnosticSource,
	}
	if uv, ok := err.(*UndefinedVariable); ok {
		d.Suggestion = uv.Suggestion
	}
	return d
}

// mergeDiagnostics combines syntax and semantic problems into one list
// ordered by position.
func mergeDiagnostics(syntaxErrs []syntax.Error, semErrs []SemanticError) []Diagnostic {
	out := make([]Diagnostic, 0, len(syntaxErrs)+len(semErrs))
	for _, err := range syntaxErrs {
		out = append(out, syntaxDiagnostic(err))
	}
	for _, err := range semErrs {
		out = append(out, semanticDiagnostic(err))
	}
	slices.SortStableFunc(out, func(a, b Diagnostic) int {
		if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Span.End, b.Span.End)
	})
	return out
}
