package aavanamkit

import (
	"errors"
	"fmt"

	"github.com/jafranjemal/aavanamkit/render"
)

// Kind classifies a generation failure.
type Kind int

// Failure kinds. InvalidInput, UnsupportedOutputType and RenderFailure abort
// a request; AssetFetchFailure and BarcodeEncodingFailure only describe
// warnings, since the document is still produced without the element.
const (
	InvalidInput Kind = iota + 1
	UnsupportedOutputType
	AssetFetchFailure
	BarcodeEncodingFailure
	RenderFailure
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid input"
	case UnsupportedOutputType:
		return "unsupported output type"
	case AssetFetchFailure:
		return "asset fetch failure"
	case BarcodeEncodingFailure:
		return "barcode encoding failure"
	case RenderFailure:
		return "render failure"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinel errors, one per Kind. Any *Error matches the sentinel of its kind
// with errors.Is.
var (
	ErrInvalidInput          = &Error{Kind: InvalidInput}
	ErrUnsupportedOutputType = &Error{Kind: UnsupportedOutputType}
	ErrAssetFetch            = &Error{Kind: AssetFetchFailure}
	ErrBarcodeEncoding       = &Error{Kind: BarcodeEncodingFailure}
	ErrRender                = &Error{Kind: RenderFailure}
)

// Error is a failure of a specific engine operation.
type Error struct {
	Kind Kind
	Op   string // operation name, e.g. "Generate", "GenerateJSON"
	Err  error  // underlying error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return "aavanamkit: " + e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("aavanamkit.%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("aavanamkit.%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Warning is a per-element problem that did not stop generation.
type Warning = render.Warning

// warningKind maps a render warning onto the error kinds.
func warningKind(w Warning) Kind {
	switch w.Kind {
	case render.WarnAsset:
		return AssetFetchFailure
	case render.WarnBarcode:
		return BarcodeEncodingFailure
	case render.WarnLayout:
		return InvalidInput
	}
	return RenderFailure
}
