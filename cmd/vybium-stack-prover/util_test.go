package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stackCommand(t *testing.T, values ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringSlice("stack", nil, "")
	for _, v := range values {
		require.NoError(t, cmd.Flags().Set("stack", v))
	}
	return cmd
}

func TestParseStack(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected string
		wantErr  bool
	}{
		{"empty", nil, "[]", false},
		{"decimal", []string{"1,2,3"}, "[1 2 3]", false},
		{"hex", []string{"0x10"}, "[16]", false},
		{"repeated flag", []string{"4", "5"}, "[4 5]", false},
		{"spaces", []string{" 7 "}, "[7]", false},
		{"negative", []string{"-1"}, "", true},
		{"word", []string{"seven"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stack, err := parseStack(stackCommand(t, tt.values...))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, formatStack(stack))
		})
	}
}
