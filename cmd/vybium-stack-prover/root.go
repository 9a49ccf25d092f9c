package main

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	prover "github.com/vybium/vybium-stack-prover/pkg/vybium-stack-prover"
)

// Version is filled when building with make, but *not* when installing via "go
// install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vybium-stack-prover",
	Short: "Execute and prove stack machine programs.",
	Long:  "Executes stack machine programs, checks their traces against the AIR and generates STARK proofs.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "verbose") {
			log.SetLevel(log.DebugLevel)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			fmt.Print("vybium-stack-prover ")
			if Version != "" {
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Printf("%s", info.Main.Version)
			} else {
				fmt.Printf("(unknown version)")
			}
			if prover.HasGPU {
				fmt.Printf(" (icicle)")
			}
			fmt.Println()
			return
		}
		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "Report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML prover configuration")
	rootCmd.PersistentFlags().String("backend", "", "cpu-sequential, cpu-parallel or gpu (overrides config)")
	rootCmd.PersistentFlags().Int("workers", 0, "parallel workers, 0 for GOMAXPROCS (overrides config)")
	rootCmd.PersistentFlags().Bool("gpu-fallback", false, "fall back to cpu-parallel when no GPU is available")
	rootCmd.PersistentFlags().StringSlice("stack", nil, "initial stack, top first")
	rootCmd.PersistentFlags().Int("min-length", 0, "minimum trace length")
}
