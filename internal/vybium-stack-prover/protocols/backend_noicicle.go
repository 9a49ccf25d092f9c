//go:build !icicle

package protocols

import (
	"errors"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/codes"
	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/utils"
)

var errNoGPU = errors.New("gpu backend unavailable")

// HasIcicle reports whether the binary was built with the icicle runtime
const HasIcicle = false

// GPUBackend cannot be constructed without the icicle build tag
type GPUBackend struct{}

// NewGPUBackend always fails in builds without the icicle tag
func NewGPUBackend(_ string, _, _ int) (*GPUBackend, error) {
	return nil, errors.New("gpu backend requested but program compiled without 'icicle' build tag")
}

func (b *GPUBackend) Kind() string { return utils.BackendGPU }

func (b *GPUBackend) Name() string { return "gpu(unavailable)" }

func (b *GPUBackend) ForEach(_ int, _ func(lo, hi int)) error {
	return errNoGPU
}

func (b *GPUBackend) ExtendColumns(_ *codes.ReedSolomonCode, _ [][]field.Element) ([][]field.Element, error) {
	return nil, errNoGPU
}

func (b *GPUBackend) Close() error { return nil }
