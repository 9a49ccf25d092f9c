package utils

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
)

// Channel is a Fiat-Shamir transcript. A channel belongs to exactly one
// proving session and must not be shared between goroutines.
type Channel struct {
	state   [32]byte
	counter uint64
}

// NewChannel creates a transcript bound to a protocol label
func NewChannel(label string) *Channel {
	return &Channel{state: sha3.Sum256([]byte(label))}
}

// Send absorbs raw bytes into the transcript
func (c *Channel) Send(data []byte) {
	buf := make([]byte, 0, len(c.state)+len(data))
	buf = append(buf, c.state[:]...)
	buf = append(buf, data...)
	c.state = sha3.Sum256(buf)
	c.counter = 0
}

// SendElements absorbs field elements by their canonical values
func (c *Channel) SendElements(elems []field.Element) {
	buf := make([]byte, 8*len(elems))
	for i, e := range elems {
		binary.LittleEndian.PutUint64(buf[8*i:], e.Value())
	}
	c.Send(buf)
}

// SendDigest absorbs a commitment
func (c *Channel) SendDigest(d hash.Digest) {
	elems := make([]field.Element, hash.DigestLen)
	for i := 0; i < hash.DigestLen; i++ {
		elems[i] = d[i]
	}
	c.SendElements(elems)
}

// squeeze returns the next 32 pseudo-random bytes without absorbing them
func (c *Channel) squeeze() [32]byte {
	var buf [40]byte
	copy(buf[:32], c.state[:])
	binary.LittleEndian.PutUint64(buf[32:], c.counter)
	c.counter++
	return sha3.Sum256(buf[:])
}

// ReceiveRandomFieldElement draws a uniformly distributed field element
func (c *Channel) ReceiveRandomFieldElement() field.Element {
	for {
		out := c.squeeze()
		v := binary.LittleEndian.Uint64(out[:8])
		if v < field.P {
			return field.New(v)
		}
	}
}

// ReceiveRandomFieldElements draws n field elements
func (c *Channel) ReceiveRandomFieldElements(n int) []field.Element {
	out := make([]field.Element, n)
	for i := range out {
		out[i] = c.ReceiveRandomFieldElement()
	}
	return out
}

// ReceiveRandomInts draws count indices in [0, bound). bound must be a
// power of two so that masking keeps the distribution uniform.
func (c *Channel) ReceiveRandomInts(count, bound int) ([]int, error) {
	if !IsPowerOfTwo(bound) {
		return nil, fmt.Errorf("index bound must be a power of two, got %d", bound)
	}
	if count < 0 {
		return nil, fmt.Errorf("negative index count %d", count)
	}
	mask := uint64(bound - 1)
	out := make([]int, count)
	for i := range out {
		b := c.squeeze()
		out[i] = int(binary.LittleEndian.Uint64(b[:8]) & mask)
	}
	return out, nil
}

// State returns the current channel state
func (c *Channel) State() []byte {
	return append([]byte(nil), c.state[:]...)
}
