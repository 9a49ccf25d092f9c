package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
)

// TestChannelDeterminism tests that identical inputs give identical draws
func TestChannelDeterminism(t *testing.T) {
	run := func() ([]field.Element, []int) {
		ch := NewChannel("stack-vm")
		ch.SendElements([]field.Element{field.New(1), field.New(2)})
		ch.Send([]byte("commitment"))
		elems := ch.ReceiveRandomFieldElements(4)
		idx, err := ch.ReceiveRandomInts(8, 64)
		require.NoError(t, err)
		return elems, idx
	}

	e1, i1 := run()
	e2, i2 := run()
	for i := range e1 {
		assert.True(t, e1[i].Equal(e2[i]), "element %d", i)
	}
	assert.Equal(t, i1, i2)
}

// TestChannelSend tests that absorbing data changes future draws
func TestChannelSend(t *testing.T) {
	a := NewChannel("stack-vm")
	b := NewChannel("stack-vm")
	initial := a.State()

	a.Send([]byte("x"))
	b.Send([]byte("y"))
	assert.NotEqual(t, initial, a.State())
	assert.NotEqual(t, a.State(), b.State())
	assert.False(t, a.ReceiveRandomFieldElement().Equal(b.ReceiveRandomFieldElement()))
}

// TestChannelLabels tests that the protocol label separates transcripts
func TestChannelLabels(t *testing.T) {
	a := NewChannel("one")
	b := NewChannel("two")
	assert.NotEqual(t, a.State(), b.State())
}

// TestReceiveRandomInts tests bounds handling
func TestReceiveRandomInts(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		bound   int
		wantErr bool
	}{
		{"power of two bound", 16, 32, false},
		{"bound of one", 3, 1, false},
		{"non power of two bound", 4, 24, true},
		{"zero bound", 4, 0, true},
		{"negative count", -1, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := NewChannel("stack-vm")
			idx, err := ch.ReceiveRandomInts(tt.count, tt.bound)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, idx, tt.count)
			for _, v := range idx {
				assert.GreaterOrEqual(t, v, 0)
				assert.Less(t, v, tt.bound)
			}
		})
	}
}
