package convert

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"ddsconv/internal/dds"
	"ddsconv/internal/format"
)

type Mode int

const (
	Sequential Mode = iota
	Parallel
)

func (m Mode) String() string {
	if m == Parallel {
		return "parallel"
	}
	return "sequential"
}

// DefaultChunkSize is the number of files handed to a worker at a time.
const DefaultChunkSize = 5

type Strategy struct {
	Mode Mode
	// ChunkSize applies to Parallel. Zero means DefaultChunkSize.
	ChunkSize int
	// Workers bounds the pool. Zero means runtime.NumCPU().
	Workers int
}

func (s Strategy) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Mode, validation.In(Sequential, Parallel).Error("unknown mode")),
		validation.Field(&s.ChunkSize, validation.When(s.Mode == Parallel, validation.Min(1))),
		validation.Field(&s.Workers, validation.Min(0)),
	)
}

// Request describes one batch. The engine never modifies it.
type Request struct {
	Files      []string
	SourceRoot string
	DestRoot   string
	Target     format.Format
	DDSFormat  dds.Format
	Strategy   Strategy
}

func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SourceRoot, validation.Required),
		validation.Field(&r.DestRoot, validation.Required),
		validation.Field(&r.Target, validation.By(knownTarget)),
		validation.Field(&r.DDSFormat, validation.When(r.Target == format.DDS, validation.By(knownDDSFormat))),
		validation.Field(&r.Strategy),
	)
}

func knownTarget(value interface{}) error {
	if f, ok := value.(format.Format); !ok || !f.Valid() {
		return errors.New("unknown target format")
	}
	return nil
}

func knownDDSFormat(value interface{}) error {
	f, ok := value.(dds.Format)
	if ok {
		for _, known := range dds.Formats {
			if f == known {
				return nil
			}
		}
	}
	return errors.New("unknown dds format")
}

// Mapping pairs a source file with its destination.
type Mapping struct {
	Source string
	// Rel is the destination path relative to the destination root.
	Rel  string
	Dest string
}

type Outcome int

const (
	Success Outcome = iota
	Failure
)

func (o Outcome) String() string {
	if o == Success {
		return "success"
	}
	return "failure"
}

// Report aggregates one batch.
type Report struct {
	BatchID string
	// Total counts the files submitted, before filtering.
	Total int
	// Skipped counts files that already carried the target extension.
	Skipped   int
	Succeeded int
	Failed    []FileError
	// Chunks is the number of work units scheduled.
	Chunks  int
	Elapsed time.Duration
	// Err is set when the request as a whole could not run.
	Err error
}

func (r Report) OK() bool {
	return r.Err == nil && len(r.Failed) == 0
}

func (r Report) Outcome() Outcome {
	if r.OK() {
		return Success
	}
	return Failure
}

// Processed counts the files that were attempted.
func (r Report) Processed() int {
	return r.Succeeded + len(r.Failed)
}
