//go:build icicle

package protocols

import (
	"fmt"
	"sync"

	icicle_core "github.com/ingonyama-zk/icicle/v3/wrappers/golang/core"
	icicle_goldilocks "github.com/ingonyama-zk/icicle/v3/wrappers/golang/fields/goldilocks"
	icicle_ntt "github.com/ingonyama-zk/icicle/v3/wrappers/golang/fields/goldilocks/ntt"
	icicle_runtime "github.com/ingonyama-zk/icicle/v3/wrappers/golang/runtime"
	log "github.com/sirupsen/logrus"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/codes"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/utils"
)

// HasIcicle reports whether the binary was built with the icicle runtime
const HasIcicle = true

// GPUBackend holds an icicle device for the whole session. Column
// extension runs as two batched Goldilocks NTTs on the device; range work
// without a device kernel runs on host workers dispatched from the
// device's goroutine.
type GPUBackend struct {
	device     icicle_runtime.Device
	deviceType string
	ordinal    int
	host       *ParallelBackend

	// NTT domain currently initialized on the device, 0 for none
	mu         sync.Mutex
	domainSize int
}

// NewGPUBackend loads the icicle backend and creates the requested device
func NewGPUBackend(deviceType string, ordinal, workers int) (*GPUBackend, error) {
	if deviceType == "" {
		deviceType = "CUDA"
	}
	if st := icicle_runtime.LoadBackendFromEnvOrDefault(); st != icicle_runtime.Success {
		return nil, fmt.Errorf("failed to load icicle backend: %s", st.AsString())
	}
	count, st := icicle_runtime.GetDeviceCount()
	if st != icicle_runtime.Success {
		return nil, fmt.Errorf("failed to query devices: %s", st.AsString())
	}
	if ordinal < 0 || ordinal >= count {
		return nil, fmt.Errorf("device ordinal %d out of range, %d visible", ordinal, count)
	}

	device := icicle_runtime.CreateDevice(deviceType, ordinal)
	if !icicle_runtime.IsDeviceAvailable(&device) {
		return nil, fmt.Errorf("device %s:%d is not available", deviceType, ordinal)
	}

	log.WithFields(log.Fields{
		"device":  deviceType,
		"ordinal": ordinal,
		"visible": count,
	}).Debug("icicle device ready")

	return &GPUBackend{
		device:     device,
		deviceType: deviceType,
		ordinal:    ordinal,
		host:       NewParallelBackend(workers),
	}, nil
}

// Kind returns the configuration name of the backend
func (b *GPUBackend) Kind() string { return utils.BackendGPU }

// Name returns a readable description
func (b *GPUBackend) Name() string {
	return fmt.Sprintf("gpu(%s:%d)", b.deviceType, b.ordinal)
}

// onDevice runs task on the device's locked goroutine and waits for it
func (b *GPUBackend) onDevice(task func() error) error {
	done := make(chan error, 1)
	icicle_runtime.RunOnDevice(&b.device, func(args ...any) {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("device task panicked: %v", r)
			}
		}()
		if st := icicle_runtime.SetDevice(&b.device); st != icicle_runtime.Success {
			done <- fmt.Errorf("failed to activate device: %s", st.AsString())
			return
		}
		done <- task()
	})
	return <-done
}

// ForEach dispatches work from the device goroutine and waits for it
func (b *GPUBackend) ForEach(n int, work func(lo, hi int)) error {
	if n <= 0 {
		return nil
	}
	return b.onDevice(func() error {
		return b.host.ForEach(n, work)
	})
}

// ExtendColumns interpolates all columns with one batched inverse NTT over
// the trace subgroup, zero-pads the coefficients and evaluates them with
// one batched coset NTT over the extension subgroup.
func (b *GPUBackend) ExtendColumns(code *codes.ReedSolomonCode, columns [][]field.Element) ([][]field.Element, error) {
	width := len(columns)
	if width == 0 {
		return nil, nil
	}
	n, size := code.MessageLength(), code.CodewordLength()
	for c, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("column %d has %d rows, expected %d", c, len(col), n)
		}
	}

	out := make([][]field.Element, width)
	err := b.onDevice(func() error {
		if err := b.ensureDomain(size, code.CodeGenerator()); err != nil {
			return err
		}

		scalars := make([]icicle_goldilocks.ScalarField, width*n)
		for c, col := range columns {
			for i, v := range col {
				scalars[c*n+i] = toScalar(v)
			}
		}
		coeffs := make([]icicle_goldilocks.ScalarField, width*n)
		cfg := icicle_ntt.GetDefaultNttConfig()
		cfg.BatchSize = int32(width)
		if st := icicle_ntt.Ntt(icicle_core.HostSliceFromElements(scalars), icicle_core.KInverse, &cfg,
			icicle_core.HostSliceFromElements(coeffs)); st != icicle_runtime.Success {
			return icicleError("inverse NTT", st)
		}

		padded := make([]icicle_goldilocks.ScalarField, width*size)
		for c := 0; c < width; c++ {
			copy(padded[c*size:c*size+n], coeffs[c*n:(c+1)*n])
		}
		evals := make([]icicle_goldilocks.ScalarField, width*size)
		cfg = icicle_ntt.GetDefaultNttConfig()
		cfg.BatchSize = int32(width)
		offset := toScalar(code.Offset())
		copy(cfg.CosetGen[:], offset.GetLimbs())
		if st := icicle_ntt.Ntt(icicle_core.HostSliceFromElements(padded), icicle_core.KForward, &cfg,
			icicle_core.HostSliceFromElements(evals)); st != icicle_runtime.Success {
			return icicleError("coset NTT", st)
		}

		for c := 0; c < width; c++ {
			col := make([]field.Element, size)
			for j := range col {
				col[j] = fromScalar(evals[c*size+j])
			}
			out[c] = col
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ensureDomain initializes the device NTT domain from the same root the
// CPU path uses, so subgroup points agree index by index. Smaller NTTs
// reuse the domain through powers of its root.
func (b *GPUBackend) ensureDomain(size int, root field.Element) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.domainSize >= size {
		return nil
	}
	if b.domainSize > 0 {
		if st := icicle_ntt.ReleaseDomain(); st != icicle_runtime.Success {
			return icicleError("release NTT domain", st)
		}
		b.domainSize = 0
	}
	if st := icicle_ntt.InitDomain(toScalar(root), icicle_core.GetDefaultNTTInitDomainConfig()); st != icicle_runtime.Success {
		return icicleError("init NTT domain", st)
	}
	log.WithFields(log.Fields{
		"device": b.Name(),
		"size":   size,
	}).Debug("icicle NTT domain ready")
	b.domainSize = size
	return nil
}

// Close releases the device NTT domain
func (b *GPUBackend) Close() error {
	b.mu.Lock()
	initialized := b.domainSize > 0
	b.mu.Unlock()
	if !initialized {
		return nil
	}
	return b.onDevice(func() error {
		b.mu.Lock()
		defer b.mu.Unlock()
		if st := icicle_ntt.ReleaseDomain(); st != icicle_runtime.Success {
			return icicleError("release NTT domain", st)
		}
		b.domainSize = 0
		return nil
	})
}

func icicleError(op string, st icicle_runtime.EIcicleError) error {
	switch st {
	case icicle_runtime.OutOfMemory, icicle_runtime.AllocationFailed:
		return fmt.Errorf("%s: device out of memory: %s", op, st.AsString())
	default:
		return fmt.Errorf("%s failed: %s", op, st.AsString())
	}
}

// toScalar converts through the canonical value; icicle host scalars are
// little-endian 32-bit limbs
func toScalar(v field.Element) icicle_goldilocks.ScalarField {
	var s icicle_goldilocks.ScalarField
	x := v.Value()
	s.FromLimbs([]uint32{uint32(x), uint32(x >> 32)})
	return s
}

func fromScalar(s icicle_goldilocks.ScalarField) field.Element {
	limbs := s.GetLimbs()
	return field.New(uint64(limbs[0]) | uint64(limbs[1])<<32)
}
