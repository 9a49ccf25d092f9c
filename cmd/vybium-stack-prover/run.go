package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	prover "github.com/vybium/vybium-stack-prover/pkg/vybium-stack-prover"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] program.vsm",
	Short: "Execute a program and check its trace.",
	Long:  `Execute a program, print its final stack and check every constraint of the AIR against the trace.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		program, result := readProgram(cmd, args[0])
		inputs := prover.PublicInputsFor(result)

		fmt.Printf("digest: %d\n", prover.ProgramDigest(program).Value())
		fmt.Printf("cycles: %d (trace %d x %d)\n", result.Cycles, result.Trace.Length(), result.Trace.Width())
		fmt.Printf("stack:  %s\n", formatStack(result.FinalStack))

		if getFlag(cmd, "no-check") {
			return
		}
		if err := prover.ValidateTrace(result.Trace, inputs); err != nil {
			if v, ok := prover.AsConstraintViolation(err); ok {
				log.WithFields(log.Fields{
					"constraint": v.Constraint,
					"row":        v.Row,
					"next_row":   v.NextRow,
				}).Error("trace rejected")
			}
			fatal(err)
		}
		fmt.Println("trace satisfies all constraints")
	},
}

func init() {
	runCmd.Flags().Bool("no-check", false, "skip constraint checking")
	rootCmd.AddCommand(runCmd)
}
