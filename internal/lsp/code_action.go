package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
	"github.com/CWBudde/go-nrs-lsp/internal/server"
)

// CodeAction handles the textDocument/codeAction request. Undefined names
// with a close visible match get a quick fix replacing the name.
func CodeAction(context *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	uri := params.TextDocument.URI
	selected := params.Range

	log.Debugf("CodeAction request at %s range (%d:%d)-(%d:%d) with %d diagnostic(s)",
		uri,
		selected.Start.Line, selected.Start.Character,
		selected.End.Line, selected.End.Character,
		len(params.Context.Diagnostics))

	_, st, ok := snapshot("CodeAction", uri)
	if !ok {
		return []protocol.CodeAction{}, nil
	}

	actions := []protocol.CodeAction{}
	for _, diagnostic := range params.Context.Diagnostics {
		if action, ok := quickFix(st, diagnostic); ok {
			actions = append(actions, action)
		}
	}

	log.Debugf("returning %d code action(s)", len(actions))
	return actions, nil
}

// quickFix builds the replacement action for a client diagnostic by finding
// the diagnostic of the same range and code in the snapshot.
func quickFix(st *server.DocumentState, diagnostic protocol.Diagnostic) (protocol.CodeAction, bool) {
	if diagnostic.Code == nil || diagnostic.Code.Value != analysis.CodeUndefined {
		return protocol.CodeAction{}, false
	}

	for _, d := range st.Result.Diagnostics {
		if d.Code != analysis.CodeUndefined || d.Suggestion == "" || st.Text.Range(d.Span) != diagnostic.Range {
			continue
		}
		kind := protocol.CodeActionKindQuickFix
		edit := buildWorkspaceEdit(st, []analysis.TextEdit{{Span: d.Span, NewText: d.Suggestion}})
		return protocol.CodeAction{
			Title:       fmt.Sprintf("Change to '%s'", d.Suggestion),
			Kind:        &kind,
			Diagnostics: []protocol.Diagnostic{diagnostic},
			IsPreferred: boolPtr(true),
			Edit:        edit,
		}, true
	}
	return protocol.CodeAction{}, false
}
