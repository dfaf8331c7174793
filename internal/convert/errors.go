package convert

import (
	"errors"
	"fmt"
)

// Kind classifies a per-file failure.
type Kind int

const (
	KindPathMapping Kind = iota + 1
	KindDecode
	KindEncode
	KindIO
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindPathMapping:
		return "path mapping"
	case KindDecode:
		return "decode"
	case KindEncode:
		return "encode"
	case KindIO:
		return "io"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// FileError is a failure confined to one input file.
type FileError struct {
	Kind Kind
	Path string
	// Dest is empty when the failure happened before the path was mapped.
	Dest string
	Err  error
}

func (e *FileError) Error() string {
	if e.Dest != "" {
		return fmt.Sprintf("%s %s -> %s: %v", e.Kind, e.Path, e.Dest, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a *FileError of kind k.
func IsKind(err error, k Kind) bool {
	var fe *FileError
	return errors.As(err, &fe) && fe.Kind == k
}

// ErrAbandoned resolves a future whose batch stopped without producing a
// report.
var ErrAbandoned = errors.New("conversion abandoned before completion")
