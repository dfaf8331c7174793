// Package convert runs batch conversions: it filters and maps input paths,
// drives a Codec over each file sequentially or on a bounded worker pool, and
// aggregates the per-file results into a Report.
package convert

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ddsconv/internal/dds"
	"ddsconv/internal/format"
)

// Codec performs the pixel work for the engine.
type Codec interface {
	DecodeRaster(path string) (*image.NRGBA, error)
	EncodeContainer(img *image.NRGBA, f dds.Format, q dds.Quality, m dds.MipPolicy) ([]byte, error)
	// DecodeContainer returns every mip level, level 0 first.
	DecodeContainer(path string) ([]*image.NRGBA, error)
	EncodeRaster(img *image.NRGBA, f format.Format) ([]byte, error)
}

// BaseDecoder is implemented by codecs that can read the full-resolution
// surface of a container without expanding its mip chain. The engine prefers
// it over DecodeContainer.
type BaseDecoder interface {
	DecodeContainerBase(path string) (*image.NRGBA, error)
}

// Engine holds no per-batch state and may run several batches at once.
type Engine struct {
	codec Codec
	sink  Sink
}

type Option func(*Engine)

func WithSink(s Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

func New(codec Codec, opts ...Option) *Engine {
	e := &Engine{codec: codec, sink: Discard}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// job is one eligible file with its destination resolved up front.
type job struct {
	path    string
	mapping Mapping
	err     *FileError
}

type fileResult struct {
	mapping Mapping
	err     *FileError
	panic   any
}

// Convert runs req to completion on the calling goroutine (Parallel fans out
// to workers) and returns the aggregated report. Per-file failures never stop
// the batch. When several inputs map to the same destination (x.png and x.jpg
// both targeting DDS) the first in input order is converted and the others
// fail with KindPathMapping.
func (e *Engine) Convert(ctx context.Context, req Request) Report {
	start := time.Now()
	report := Report{BatchID: uuid.NewString(), Total: len(req.Files)}

	if err := req.Validate(); err != nil {
		report.Err = fmt.Errorf("invalid request: %w", err)
		report.Elapsed = time.Since(start)
		e.sink.Record(Event{Kind: EventBatchFinished, BatchID: report.BatchID, Err: report.Err, Elapsed: report.Elapsed})
		return report
	}

	files := Eligible(req.Files, req.Target)
	report.Skipped = len(req.Files) - len(files)
	e.sink.Record(Event{Kind: EventBatchStarted, BatchID: report.BatchID, Files: len(files)})

	var panicked any
	collect := func(res fileResult) {
		if res.panic != nil {
			if panicked == nil {
				panicked = res.panic
			}
			return
		}
		if res.err != nil {
			report.Failed = append(report.Failed, *res.err)
			e.sink.Record(Event{
				Kind:    EventFileFailed,
				BatchID: report.BatchID,
				Source:  res.err.Path,
				Dest:    res.err.Dest,
				Failure: res.err.Kind,
				Err:     res.err.Err,
			})
			return
		}
		report.Succeeded++
		e.sink.Record(Event{
			Kind:    EventFileConverted,
			BatchID: report.BatchID,
			Source:  res.mapping.Source,
			Dest:    res.mapping.Dest,
		})
	}

	jobs := plan(req, files)
	if req.Strategy.Mode == Parallel {
		report.Chunks = e.runParallel(ctx, req, jobs, collect)
	} else {
		if len(jobs) > 0 {
			report.Chunks = 1
		}
		for _, j := range jobs {
			collect(e.safeConvertFile(ctx, req, j))
		}
	}

	if panicked != nil {
		panic(panicked)
	}

	report.Elapsed = time.Since(start)
	e.sink.Record(Event{
		Kind:      EventBatchFinished,
		BatchID:   report.BatchID,
		Files:     report.Processed(),
		Succeeded: report.Succeeded,
		Failed:    len(report.Failed),
		Elapsed:   report.Elapsed,
	})
	return report
}

// plan maps every file to its destination. A destination already claimed by
// an earlier file is a mapping failure for the later one.
func plan(req Request, files []string) []job {
	jobs := make([]job, 0, len(files))
	claimed := make(map[string]string, len(files))
	for _, path := range files {
		m, err := MapPath(path, req.SourceRoot, req.DestRoot, req.Target.Extension())
		if err != nil {
			jobs = append(jobs, job{path: path, err: err.(*FileError)})
			continue
		}
		key := filepath.Clean(m.Dest)
		if first, ok := claimed[key]; ok {
			jobs = append(jobs, job{path: path, err: &FileError{
				Kind: KindPathMapping,
				Path: path,
				Dest: m.Dest,
				Err:  fmt.Errorf("destination already claimed by %s", first),
			}})
			continue
		}
		claimed[key] = path
		jobs = append(jobs, job{path: path, mapping: m})
	}
	return jobs
}

// runParallel feeds chunks of jobs to a bounded pool and funnels every
// result through one collector goroutine. It returns the number of chunks.
func (e *Engine) runParallel(ctx context.Context, req Request, jobs []job, collect func(fileResult)) int {
	chunks := split(jobs, req.Strategy.ChunkSize)
	if len(chunks) == 0 {
		return 0
	}

	workers := req.Strategy.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(chunks))

	work := make(chan []job)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for chunk := range work {
				for _, j := range chunk {
					results <- e.safeConvertFile(ctx, req, j)
				}
			}
		}()
	}

	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		for res := range results {
			collect(res)
		}
	}()

	for _, chunk := range chunks {
		work <- chunk
	}
	close(work)

	wg.Wait()
	close(results)
	<-collectorDone

	return len(chunks)
}

func split[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]T
	for len(items) > 0 {
		n := min(size, len(items))
		chunks = append(chunks, items[:n:n])
		items = items[n:]
	}
	return chunks
}

func (e *Engine) safeConvertFile(ctx context.Context, req Request, j job) (res fileResult) {
	defer func() {
		if r := recover(); r != nil {
			res = fileResult{panic: r}
		}
	}()
	return e.convertFile(ctx, req, j)
}

func (e *Engine) convertFile(ctx context.Context, req Request, j job) fileResult {
	path := j.path
	if err := ctx.Err(); err != nil {
		return fileResult{err: &FileError{Kind: KindCanceled, Path: path, Dest: j.mapping.Dest, Err: err}}
	}
	if j.err != nil {
		return fileResult{err: j.err}
	}
	m := j.mapping

	data, ferr := e.transcode(req, path)
	if ferr != nil {
		ferr.Dest = m.Dest
		return fileResult{mapping: m, err: ferr}
	}

	if err := writeFile(m.Dest, data); err != nil {
		return fileResult{mapping: m, err: &FileError{Kind: KindIO, Path: path, Dest: m.Dest, Err: err}}
	}
	return fileResult{mapping: m}
}

func (e *Engine) transcode(req Request, path string) ([]byte, *FileError) {
	if req.Target.IsContainer() {
		img, err := e.codec.DecodeRaster(path)
		if err != nil {
			return nil, &FileError{Kind: KindDecode, Path: path, Err: err}
		}
		data, err := e.codec.EncodeContainer(img, req.DDSFormat, dds.QualityFast, dds.MipmapsGenerated)
		if err != nil {
			return nil, &FileError{Kind: KindEncode, Path: path, Err: err}
		}
		return data, nil
	}

	var img *image.NRGBA
	if isContainerSource(path) {
		var err error
		if img, err = e.decodeContainerBase(path); err != nil {
			return nil, &FileError{Kind: KindDecode, Path: path, Err: err}
		}
	} else {
		var err error
		if img, err = e.codec.DecodeRaster(path); err != nil {
			return nil, &FileError{Kind: KindDecode, Path: path, Err: err}
		}
	}

	data, err := e.codec.EncodeRaster(img, req.Target)
	if err != nil {
		return nil, &FileError{Kind: KindEncode, Path: path, Err: err}
	}
	return data, nil
}

// decodeContainerBase returns mip level 0 only.
func (e *Engine) decodeContainerBase(path string) (*image.NRGBA, error) {
	if bd, ok := e.codec.(BaseDecoder); ok {
		return bd.DecodeContainerBase(path)
	}
	levels, err := e.codec.DecodeContainer(path)
	if err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("container has no surfaces")
	}
	return levels[0], nil
}

func isContainerSource(path string) bool {
	return strings.EqualFold(filepath.Ext(path), "."+format.DDS.Extension())
}

// writeFile replaces dest with data through a temporary file in the same
// directory, creating parent directories as needed.
func writeFile(dest string, data []byte) error {
	destDir := filepath.Dir(dest)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(destDir, ".ddsconv-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return replaceFile(tmpFile.Name(), dest)
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
