package lsp

import (
	"fortio.org/safecast"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
	"github.com/CWBudde/go-nrs-lsp/internal/server"
)

// toProtocolDiagnostics converts the diagnostics of st, keeping at most
// maxProblems of them.
func toProtocolDiagnostics(st *server.DocumentState, maxProblems int) []protocol.Diagnostic {
	diags := st.Diagnostics(maxProblems)
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, toProtocolDiagnostic(st, d))
	}
	return out
}

func toProtocolDiagnostic(st *server.DocumentState, d analysis.Diagnostic) protocol.Diagnostic {
	severity := protocol.DiagnosticSeverity(d.Severity)
	return protocol.Diagnostic{
		Range:    st.Text.Range(d.Span),
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: d.Code},
		Source:   stringPtr(d.Source),
		Message:  d.Message,
	}
}

// PublishDiagnostics sends the whole diagnostic set of st to the client,
// replacing whatever was published for the document before.
func PublishDiagnostics(context *glsp.Context, st *server.DocumentState, maxProblems int) {
	if context == nil || context.Notify == nil {
		log.Debug("cannot publish diagnostics without a client connection")
		return
	}

	params := &protocol.PublishDiagnosticsParams{
		URI:         st.URI,
		Diagnostics: toProtocolDiagnostics(st, maxProblems),
	}
	if version, err := safecast.Conv[protocol.UInteger](st.Version); err == nil {
		params.Version = &version
	}

	log.Debugf("publishing %d diagnostic(s) for %s", len(params.Diagnostics), st.URI)
	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

// clearDiagnostics removes all markers for uri.
func clearDiagnostics(context *glsp.Context, uri protocol.DocumentUri) {
	if context == nil || context.Notify == nil {
		return
	}
	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
}
