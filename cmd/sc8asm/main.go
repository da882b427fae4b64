// Command sc8asm is the SC8 Assembler: it translates a line-oriented
// assembly source file into a binary image ready for sc8run.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/SpartaNeel1010/sc8/asm"
)

func main() {
	var outputPath string

	rootCmd := &cobra.Command{
		Use:   "sc8asm <source_file> [output_file]",
		Short: "SC8 Assembler",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath := args[0]
			out := outputPath
			if len(args) == 2 {
				out = args[1]
			}
			if out == "" {
				out = defaultOutputPath(sourcePath)
			}
			return assembleFile(sourcePath, out)
		},
	}
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output binary file (defaults to the source file with a .bin extension)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultOutputPath(sourcePath string) string {
	if idx := strings.LastIndex(sourcePath, "."); idx >= 0 {
		return sourcePath[:idx] + ".bin"
	}
	return sourcePath + ".bin"
}

func assembleFile(sourcePath, outputPath string) error {
	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("cannot open %q: %w", sourcePath, err)
	}

	image, diags := asm.Assemble(string(source))
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
	if len(diags) > 0 {
		return fmt.Errorf("assembly failed: %d error(s)", len(diags))
	}

	if err := os.WriteFile(outputPath, image, 0o644); err != nil {
		return fmt.Errorf("cannot write %q: %w", outputPath, err)
	}

	fmt.Printf("%s -> %s (%d bytes)\n", sourcePath, outputPath, len(image))
	return nil
}
