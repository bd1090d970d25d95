package spec

import (
	"fmt"
	"strings"
)

// ErrorCode categorizes loader and decoder errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError        ErrorCode = "InputError"
	NetworkError      ErrorCode = "NetworkError"
	ConversionError   ErrorCode = "ConversionError"
	MalformedDocument ErrorCode = "MalformedDocument"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1pets/get"
	Offset      int64  // byte offset into the JSON input, 0 when unknown
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

func malformed(pointer string, cause error, format string, args ...any) *SpecError {
	msg := fmt.Sprintf(format, args...)
	if pointer != "" {
		msg = fmt.Sprintf("%s at %s", msg, pointer)
	}
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &SpecError{Code: MalformedDocument, Message: msg, JSONPointer: pointer, Cause: cause}
}

// DiagnosticCode names a recoverable anomaly found while decoding or resolving.
type DiagnosticCode string

const (
	UnresolvableType     DiagnosticCode = "UnresolvableType"
	MissingSchema        DiagnosticCode = "MissingSchema"
	AmbiguousShape       DiagnosticCode = "AmbiguousShape"
	DanglingReference    DiagnosticCode = "DanglingReference"
	UnsupportedParameter DiagnosticCode = "UnsupportedParameter"
	MergedBodyParameters DiagnosticCode = "MergedBodyParameters"
	NameCollision        DiagnosticCode = "NameCollision"
)

// Diagnostic is a non-fatal finding. Generation always completes; the spot in
// the output gets a deterministic placeholder type.
type Diagnostic struct {
	Code    DiagnosticCode
	Pointer string
	Message string
}

func (d Diagnostic) String() string {
	if d.Pointer == "" {
		return fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", d.Code, d.Message, d.Pointer)
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// Pointer appends escaped tokens to a JSON pointer.
func Pointer(base string, tokens ...string) string {
	var b strings.Builder
	b.WriteString(base)
	if base == "" {
		b.WriteString("#")
	}
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(pointerEscaper.Replace(t))
	}
	return b.String()
}
