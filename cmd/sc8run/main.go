// Command sc8run is the SC8 CPU Emulator: it loads a binary image into the
// Machine's address space and executes it until halt.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/SpartaNeel1010/sc8/machine"
)

func main() {
	var debug bool
	var dumpMemory bool
	var startHex string

	rootCmd := &cobra.Command{
		Use:   "sc8run <binary_file>",
		Short: "SC8 CPU Emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseStartAddress(startHex)
			if err != nil {
				return err
			}
			return runFile(args[0], start, debug, dumpMemory)
		},
	}
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "step-by-step execution")
	rootCmd.Flags().BoolVarP(&dumpMemory, "dump-memory", "m", false, "dump memory after execution")
	rootCmd.Flags().StringVarP(&startHex, "start", "s", "0100", "program start address, in hex")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseStartAddress(hex string) (uint16, error) {
	v, err := strconv.ParseUint(hex, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid --start address %q: %w", hex, err)
	}
	return uint16(v), nil
}

func runFile(binaryPath string, start uint16, debug, dumpMemory bool) error {
	program, err := os.ReadFile(binaryPath)
	if err != nil {
		return fmt.Errorf("cannot open %q: %w", binaryPath, err)
	}

	fmt.Println("\n=== SC8 CPU Emulator ===")
	fmt.Printf("Program: %s\n", binaryPath)
	fmt.Printf("Size: %d bytes\n", len(program))
	fmt.Printf("Start address: 0x%04X\n", start)
	fmt.Printf("Debug mode: %s\n\n", onOff(debug))

	mem := machine.NewAddressSpace(os.Stdout)
	if err := mem.LoadProgram(program, start); err != nil {
		return err
	}

	cpu := machine.NewCPU(mem)
	cpu.PC = start

	var runErr error
	if debug {
		runErr = runDebugMode(cpu)
	} else {
		runErr = cpu.Run()
	}

	fmt.Println("\n=== Final CPU State ===")
	fmt.Println(cpu.String())

	if dumpMemory {
		fmt.Println("\n=== Memory Dump ===")
		fmt.Println("\nProgram area:")
		progEnd := minU32(uint32(start)+uint32(len(program))+64, uint32(start)+256)
		fmt.Print(mem.Dump(start, uint16(progEnd)))
		fmt.Println("\nData area (0x1000-0x10FF):")
		fmt.Print(mem.Dump(0x1000, 0x10FF))
		fmt.Println("\nStack area (0xFE00-0xFEFF):")
		fmt.Print(mem.Dump(0xFE00, 0xFEFF))
	}

	if runErr != nil {
		return runErr
	}
	fmt.Println("\nExecution completed successfully.")
	return nil
}

// runDebugMode steps one instruction per Enter keypress, printing state
// after each step.
func runDebugMode(cpu *machine.CPU) error {
	fmt.Println("=== Starting Debug Mode ===")
	fmt.Println("Press Enter to step through each instruction...")
	fmt.Println(cpu.String())

	reader := bufio.NewReader(os.Stdin)
	for !cpu.Halted {
		fmt.Print("\n--- Press Enter to execute next instruction ---")
		if _, err := reader.ReadString('\n'); err != nil {
			return err
		}
		if err := cpu.Step(); err != nil {
			return err
		}
		fmt.Println(cpu.String())
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
