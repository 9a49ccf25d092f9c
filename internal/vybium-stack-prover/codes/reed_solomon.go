package codes

import (
	"fmt"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"

	"github.com/vybium/vybium-stack-prover/internal/vybium-stack-prover/core"
)

// ReedSolomonCode is the code RS[F, offset·<ω>, 1/blowup]: evaluations over
// a coset of size messageLength·blowup of polynomials of degree below
// messageLength. Messages are given as evaluations over the subgroup of
// size messageLength.
type ReedSolomonCode struct {
	messageLength int
	blowup        int
	offset        field.Element
	codeOmega     field.Element
}

// NewReedSolomonCode creates a new Reed-Solomon code
func NewReedSolomonCode(messageLength, blowup int, offset field.Element) (*ReedSolomonCode, error) {
	if messageLength <= 0 || messageLength&(messageLength-1) != 0 {
		return nil, fmt.Errorf("message length must be a power of two, got %d", messageLength)
	}
	if blowup <= 1 || blowup&(blowup-1) != 0 {
		return nil, fmt.Errorf("blowup factor must be a power of two greater than one, got %d", blowup)
	}
	if offset.IsZero() {
		return nil, fmt.Errorf("coset offset cannot be zero")
	}

	// the message subgroup is the blowup-th power of the code subgroup, so
	// message point i and codeword point i*blowup coincide up to the offset
	codeOmega, err := core.RootOfUnity(messageLength * blowup)
	if err != nil {
		return nil, err
	}
	return &ReedSolomonCode{
		messageLength: messageLength,
		blowup:        blowup,
		offset:        offset,
		codeOmega:     codeOmega,
	}, nil
}

// MessageLength returns the dimension of the code
func (rs *ReedSolomonCode) MessageLength() int { return rs.messageLength }

// CodewordLength returns the size of the evaluation domain
func (rs *ReedSolomonCode) CodewordLength() int { return rs.messageLength * rs.blowup }

// Blowup returns the ratio of codeword to message length
func (rs *ReedSolomonCode) Blowup() int { return rs.blowup }

// Offset returns the coset shift of the evaluation domain
func (rs *ReedSolomonCode) Offset() field.Element { return rs.offset }

// CodeGenerator returns the generator of the codeword subgroup
func (rs *ReedSolomonCode) CodeGenerator() field.Element { return rs.codeOmega }

// MaxDegree is the largest degree of a polynomial in the code
func (rs *ReedSolomonCode) MaxDegree() int { return rs.messageLength - 1 }

// Encode extends message to a codeword
func (rs *ReedSolomonCode) Encode(message []field.Element) ([]field.Element, error) {
	if len(message) != rs.messageLength {
		return nil, fmt.Errorf("message length mismatch: expected %d, got %d", rs.messageLength, len(message))
	}
	return core.CosetLDE(message, rs.offset, rs.blowup)
}

// Degree returns the degree of the polynomial codeword interpolates over
// the code's evaluation domain, or -1 for the zero word
func (rs *ReedSolomonCode) Degree(codeword []field.Element) (int, error) {
	if len(codeword) != rs.CodewordLength() {
		return 0, fmt.Errorf("codeword length mismatch: expected %d, got %d", rs.CodewordLength(), len(codeword))
	}
	return Degree(codeword)
}

// IsInCode checks whether codeword is the evaluation of a polynomial of
// degree at most MaxDegree
func (rs *ReedSolomonCode) IsInCode(codeword []field.Element) (bool, error) {
	deg, err := rs.Degree(codeword)
	if err != nil {
		return false, err
	}
	return deg <= rs.MaxDegree(), nil
}

// Degree interpolates values over any coset of the subgroup of order
// len(values) and returns the degree of the result, or -1 for the zero
// word. The coset offset scales each coefficient by a nonzero power, so it
// does not change the degree.
func Degree(values []field.Element) (int, error) {
	coeffs := append([]field.Element(nil), values...)
	if err := core.INTT(coeffs); err != nil {
		return 0, err
	}
	for i := len(coeffs) - 1; i >= 0; i-- {
		if !coeffs[i].IsZero() {
			return i, nil
		}
	}
	return -1, nil
}
