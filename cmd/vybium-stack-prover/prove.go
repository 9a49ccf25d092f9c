package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	prover "github.com/vybium/vybium-stack-prover/pkg/vybium-stack-prover"
)

var proveCmd = &cobra.Command{
	Use:   "prove [flags] program.vsm",
	Short: "Execute a program and prove its trace.",
	Long:  `Execute a program, generate a STARK proof of the execution and write it as CBOR.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cmd)
		if cmd.Flags().Changed("validate") {
			cfg.ValidateTrace = getFlag(cmd, "validate")
		}
		_, result := readProgram(cmd, args[0])

		opts := prover.OptionsFromConfig(cfg)
		if !getFlag(cmd, "quiet") && term.IsTerminal(int(os.Stderr.Fd())) {
			bar := progressbar.Default(int64(prover.NumStages), "proving")
			opts.OnStage = func(s prover.Stage) {
				bar.Describe(s.String())
				_ = bar.Add(1)
			}
		}

		start := time.Now()
		proof, err := prover.Prove(result.Trace, prover.PublicInputsFor(result), opts)
		if err != nil {
			if v, ok := prover.AsConstraintViolation(err); ok {
				log.WithFields(log.Fields{
					"constraint": v.Constraint,
					"row":        v.Row,
					"next_row":   v.NextRow,
				}).Error("trace rejected")
			}
			fatal(err)
		}
		elapsed := time.Since(start)

		data, err := prover.MarshalProof(proof)
		if err != nil {
			fatal(err)
		}
		output := getString(cmd, "output")
		if output == "" {
			output = strings.TrimSuffix(args[0], ".vsm") + ".proof"
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			fatal(err)
		}

		log.WithFields(log.Fields{
			"backend": cfg.Backend,
			"elapsed": elapsed.String(),
			"bytes":   len(data),
			"queries": len(proof.Queries),
		}).Info("proof written")
		fmt.Println(output)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] file.proof",
	Short: "Print the contents of a proof.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fatal(err)
		}
		proof, err := prover.UnmarshalProof(data)
		if err != nil {
			fatal(err)
		}

		fmt.Printf("trace:       %d x %d, blowup %d\n", proof.TraceLength, proof.TraceWidth, proof.BlowupFactor)
		fmt.Printf("digest:      %d\n", proof.PublicInputs.ProgramDigest.Value())
		fmt.Printf("initial:     %s\n", formatStack(proof.PublicInputs.InitialStack))
		fmt.Printf("final:       %s\n", formatStack(proof.PublicInputs.FinalStack))
		fmt.Printf("fri layers:  %d, remainder %d\n", len(proof.FRIRoots)+1, len(proof.Remainder))
		fmt.Printf("queries:     %d\n", len(proof.Queries))
		fmt.Printf("size:        %d bytes\n", len(data))
	},
}

func init() {
	proveCmd.Flags().StringP("output", "o", "", "proof file (default: program name with .proof)")
	proveCmd.Flags().Bool("validate", false, "check every constraint before proving")
	proveCmd.Flags().BoolP("quiet", "q", false, "no progress bar (implied when stderr is not a terminal)")
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(inspectCmd)
}
