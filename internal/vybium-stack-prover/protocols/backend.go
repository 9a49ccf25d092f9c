package protocols

import (
	"fmt"
	"runtime"

	log "github.com/sirupsen/logrus"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"golang.org/x/sync/errgroup"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/codes"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/utils"
)

// Backend is the execution strategy for the data-parallel steps of a
// session: column extension, constraint evaluation over the extended
// domain and Merkle level hashing.
//
// ForEach splits [0, n) into disjoint ranges and calls work once per
// range. It returns only after every call has finished, so stages never
// observe a partially written output. Workers own their ranges and must
// not write outside them.
//
// ExtendColumns encodes every trace column with code and returns the
// codewords in column order. Backends with an NTT kernel run it there;
// the CPU backends encode column by column through ForEach.
type Backend interface {
	Kind() string
	Name() string
	ForEach(n int, work func(lo, hi int)) error
	ExtendColumns(code *codes.ReedSolomonCode, columns [][]field.Element) ([][]field.Element, error)
	Close() error
}

// encodeColumns extends columns on host workers scheduled by b
func encodeColumns(b Backend, code *codes.ReedSolomonCode, columns [][]field.Element) ([][]field.Element, error) {
	out := make([][]field.Element, len(columns))
	errs := make([]error, len(columns))
	err := b.ForEach(len(columns), func(lo, hi int) {
		for c := lo; c < hi; c++ {
			out[c], errs[c] = code.Encode(columns[c])
		}
	})
	if err != nil {
		return nil, err
	}
	for c, e := range errs {
		if e != nil {
			return nil, fmt.Errorf("column %d: %w", c, e)
		}
	}
	return out, nil
}

// SequentialBackend runs all work on the calling goroutine
type SequentialBackend struct{}

// NewSequentialBackend creates the single-threaded backend
func NewSequentialBackend() *SequentialBackend {
	return &SequentialBackend{}
}

// Kind returns the configuration name of the backend
func (b *SequentialBackend) Kind() string { return utils.BackendSequential }

// Name returns a readable description
func (b *SequentialBackend) Name() string { return "cpu-sequential" }

// ForEach runs work over the whole range
func (b *SequentialBackend) ForEach(n int, work func(lo, hi int)) (err error) {
	if n <= 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panicked: %v", r)
		}
	}()
	work(0, n)
	return nil
}

// ExtendColumns encodes the columns one after another
func (b *SequentialBackend) ExtendColumns(code *codes.ReedSolomonCode, columns [][]field.Element) ([][]field.Element, error) {
	return encodeColumns(b, code, columns)
}

// Close releases nothing
func (b *SequentialBackend) Close() error { return nil }

// ParallelBackend forks one goroutine per range and joins them before
// returning
type ParallelBackend struct {
	workers int
}

// NewParallelBackend creates a fork-join backend. workers <= 0 uses
// GOMAXPROCS.
func NewParallelBackend(workers int) *ParallelBackend {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ParallelBackend{workers: workers}
}

// Kind returns the configuration name of the backend
func (b *ParallelBackend) Kind() string { return utils.BackendParallel }

// Name returns a readable description
func (b *ParallelBackend) Name() string {
	return fmt.Sprintf("cpu-parallel(%d)", b.workers)
}

// Workers returns the worker count
func (b *ParallelBackend) Workers() int { return b.workers }

// ForEach runs work over disjoint ranges on up to Workers goroutines
func (b *ParallelBackend) ForEach(n int, work func(lo, hi int)) error {
	if n <= 0 {
		return nil
	}
	var g errgroup.Group
	for _, r := range utils.SplitRange(n, b.workers) {
		lo, hi := r[0], r[1]
		g.Go(func() (err error) {
			defer func() {
				if rec := recover(); rec != nil {
					err = fmt.Errorf("worker [%d, %d) panicked: %v", lo, hi, rec)
				}
			}()
			work(lo, hi)
			return nil
		})
	}
	return g.Wait()
}

// ExtendColumns encodes disjoint groups of columns on separate workers
func (b *ParallelBackend) ExtendColumns(code *codes.ReedSolomonCode, columns [][]field.Element) ([][]field.Element, error) {
	return encodeColumns(b, code, columns)
}

// Close releases nothing
func (b *ParallelBackend) Close() error { return nil }

// NewBackend builds the backend named by cfg.Backend. A GPU that cannot be
// initialized fails with a ResourceError unless cfg.GPUFallback is set, in
// which case the parallel CPU backend is used instead.
func NewBackend(cfg *utils.Config) (Backend, error) {
	if cfg == nil {
		cfg = utils.DefaultConfig()
	}

	switch cfg.Backend {
	case utils.BackendSequential, "":
		return NewSequentialBackend(), nil

	case utils.BackendParallel:
		return NewParallelBackend(cfg.Workers), nil

	case utils.BackendGPU:
		gpu, err := NewGPUBackend(cfg.GPUDevice, cfg.GPUOrdinal, cfg.Workers)
		if err == nil {
			return gpu, nil
		}
		if !cfg.GPUFallback {
			return nil, resourceError(err, "failed to initialize GPU backend")
		}
		fallback := NewParallelBackend(cfg.Workers)
		log.WithFields(log.Fields{
			"device":   cfg.GPUDevice,
			"ordinal":  cfg.GPUOrdinal,
			"fallback": fallback.Name(),
		}).WithError(err).Warn("GPU backend unavailable, using configured fallback")
		return fallback, nil

	default:
		return nil, shapeError(nil, "unknown backend %q", cfg.Backend)
	}
}
