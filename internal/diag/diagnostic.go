package diag

import (
	"morph/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is one finding, positioned in original-source coordinates.
// Positioned=false marks a whole-file diagnostic (host errors, expansion
// failures) or one whose generated position could not be mapped back.
type Diagnostic struct {
	Severity   Severity
	Code       Code
	Message    string
	Span       source.Span
	Positioned bool
	Notes      []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity:   sev,
		Code:       code,
		Span:       primary,
		Positioned: true,
		Message:    msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// NewWholeFile builds an unpositioned diagnostic.
func NewWholeFile(sev Severity, code Code, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  msg,
	}
}

// WithoutPosition returns a copy stripped of positional information,
// keeping the message. Used when remapping through a stage map fails.
func (d Diagnostic) WithoutPosition() Diagnostic {
	d.Span = source.Span{}
	d.Positioned = false
	d.Notes = nil
	return d
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
