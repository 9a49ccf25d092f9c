package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	prover "github.com/vybium/vybium-stack-prover/pkg/vybium-stack-prover"
)

// Get an expected flag, or exit if an error arises.
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

func getInt(cmd *cobra.Command, flag string) int {
	r, err := cmd.Flags().GetInt(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// fatal logs err and exits
func fatal(err error) {
	log.Error(err)
	os.Exit(1)
}

// loadConfig reads --config if given and applies the flag overrides
func loadConfig(cmd *cobra.Command) *prover.Config {
	cfg := prover.DefaultConfig()
	if path := getString(cmd, "config"); path != "" {
		loaded, err := prover.LoadConfig(path)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}
	if backend := getString(cmd, "backend"); backend != "" {
		cfg.Backend = backend
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = getInt(cmd, "workers")
	}
	if cmd.Flags().Changed("gpu-fallback") {
		cfg.GPUFallback = getFlag(cmd, "gpu-fallback")
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}
	log.WithFields(log.Fields{
		"backend": cfg.Backend,
		"blowup":  cfg.BlowupFactor,
		"queries": cfg.NumQueries,
	}).Debug("configuration loaded")
	return cfg
}

// readProgram parses a program file and executes it with --stack
func readProgram(cmd *cobra.Command, filename string) (*prover.Program, *prover.ExecutionResult) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		fatal(err)
	}
	program, err := prover.ParseProgram(string(bytes))
	if err != nil {
		fatal(fmt.Errorf("%s: %w", filename, err))
	}

	stack, err := parseStack(cmd)
	if err != nil {
		fatal(err)
	}

	minLength := getInt(cmd, "min-length")
	var result *prover.ExecutionResult
	if minLength > 0 {
		result, err = prover.ExecuteWithLength(program, stack, minLength)
	} else {
		result, err = prover.Execute(program, stack)
	}
	if err != nil {
		fatal(err)
	}
	log.WithFields(log.Fields{
		"instructions": program.Len(),
		"cycles":       result.Cycles,
		"rows":         result.Trace.Length(),
	}).Info("program executed")
	return program, result
}

func parseStack(cmd *cobra.Command) ([]prover.FieldElement, error) {
	values, err := cmd.Flags().GetStringSlice("stack")
	if err != nil {
		return nil, err
	}
	stack := make([]prover.FieldElement, len(values))
	for i, v := range values {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid stack value %q: %w", v, err)
		}
		stack[i] = prover.NewFieldElement(n)
	}
	return stack, nil
}

func formatStack(stack []prover.FieldElement) string {
	parts := make([]string, len(stack))
	for i, e := range stack {
		parts[i] = strconv.FormatUint(e.Value(), 10)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
