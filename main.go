package main

import (
	"os"

	"github.com/spf13/cobra"
)

const versionString = "astral-pe 1.0.0"

func main() {
	opts := optionsFromEnv()

	rootCmd := &cobra.Command{
		Use:     "astral-pe <input.exe>",
		Short:   "Mutate PE headers and metadata in place",
		Long:    "astral-pe rewrites the structural metadata of a Windows executable\nso that static signatures built over headers, stubs, timestamps and\ndirectory tables stop matching, without changing runtime behavior.",
		Version: versionString,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			opts.InputPath = args[0]
			setupLogging(opts.Verbose, opts.NoColor)
			return Mutate(opts)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.OutputPath, "output", "o", opts.OutputPath, "output path (default: <input>_mutated<ext>)")
	flags.BoolVarP(&opts.Legacy, "legacy", "l", opts.Legacy, "Win7-compatible mode: skip import table case mangling for core DLLs")
	flags.Int64Var(&opts.Seed, "seed", opts.Seed, "seed for reproducible mutations (0 = random)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", opts.Verbose, "log every pipeline step")
	flags.BoolVar(&opts.NoColor, "no-color", opts.NoColor, "disable colored output")
	flags.BoolVar(&opts.KeepOverlay, "keep-overlay", opts.KeepOverlay, "never truncate trailing overlay data")

	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
