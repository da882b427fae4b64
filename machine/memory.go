package machine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// MMIO register addresses, the only four bytes in 0xFF00..0xFFFF with
// defined behavior; everything else in that window is ordinary RAM.
const (
	AddrTimerCtrl  uint16 = 0xFF00
	AddrConsoleOut uint16 = 0xFF01
	AddrConsoleIn  uint16 = 0xFF02
	AddrTimerValue uint16 = 0xFF03
)

// ErrProgramTooLarge is returned by LoadProgram when the image would run
// past the end of the address space; the load fails softly, writing
// nothing.
var ErrProgramTooLarge = errors.New("program does not fit in address space")

// AddressSpace is the Machine's flat 64 KiB byte array, with the MMIO
// window layered on top of addresses 0xFF00-0xFFFF.
type AddressSpace struct {
	ram [65536]byte

	timerCtrl    byte
	timerValue   byte
	timerCounter byte
	consoleIn    byte // never populated: CONSOLE_IN always reads 0, see SPEC_FULL.md open questions

	stdout *bufio.Writer
}

// NewAddressSpace builds an address space whose CONSOLE_OUT writes go to w.
func NewAddressSpace(w io.Writer) *AddressSpace {
	return &AddressSpace{stdout: bufio.NewWriter(w)}
}

// Read returns the byte at addr, applying MMIO semantics where defined.
func (m *AddressSpace) Read(addr uint16) byte {
	switch addr {
	case AddrTimerCtrl:
		return m.timerCtrl
	case AddrConsoleOut:
		return 0
	case AddrConsoleIn:
		return m.consoleIn
	case AddrTimerValue:
		return m.timerValue
	default:
		return m.ram[addr]
	}
}

// Write stores v at addr, applying MMIO side effects where defined.
func (m *AddressSpace) Write(addr uint16, v byte) {
	switch addr {
	case AddrTimerCtrl:
		m.timerCtrl = v
		m.timerCounter = v
		m.timerValue = v
	case AddrConsoleOut:
		m.stdout.WriteByte(v)
		m.stdout.Flush()
	case AddrConsoleIn:
		// writes have no effect
	case AddrTimerValue:
		// read-only
	default:
		m.ram[addr] = v
	}
}

// LoadProgram copies program into RAM starting at start. It fails softly:
// on overflow it reports an error and writes nothing.
func (m *AddressSpace) LoadProgram(program []byte, start uint16) error {
	if int(start)+len(program) > 0x10000 {
		return fmt.Errorf("%w: start=0x%04X size=%d", ErrProgramTooLarge, start, len(program))
	}
	copy(m.ram[start:], program)
	return nil
}

// Reset zeroes RAM and every MMIO shadow register.
func (m *AddressSpace) Reset() {
	for i := range m.ram {
		m.ram[i] = 0
	}
	m.timerCtrl = 0
	m.timerValue = 0
	m.timerCounter = 0
	m.consoleIn = 0
}

// UpdateTimer is invoked by the CPU after every completed instruction: while
// the countdown is running it ticks down by one and mirrors into
// TIMER_VALUE.
func (m *AddressSpace) UpdateTimer() {
	if m.timerCounter > 0 {
		m.timerCounter--
		m.timerValue = m.timerCounter
	}
}

// Dump renders a conventional 16-bytes-per-row hex+ASCII view of
// [start, end], inclusive, for diagnostic use by the emulator CLI.
func (m *AddressSpace) Dump(start, end uint16) string {
	var out []byte
	row := make([]byte, 0, 16)
	addr := uint32(start)
	endAddr := uint32(end)
	for addr <= endAddr {
		rowStart := addr
		row = row[:0]
		for len(row) < 16 && addr <= endAddr {
			row = append(row, m.Read(uint16(addr)))
			addr++
		}
		out = append(out, []byte(fmt.Sprintf("%04X: ", rowStart))...)
		for i := 0; i < 16; i++ {
			if i < len(row) {
				out = append(out, []byte(fmt.Sprintf("%02X ", row[i]))...)
			} else {
				out = append(out, []byte("   ")...)
			}
		}
		out = append(out, ' ')
		for _, b := range row {
			if b >= 0x20 && b < 0x7F {
				out = append(out, b)
			} else {
				out = append(out, '.')
			}
		}
		out = append(out, '\n')
		if addr == rowStart {
			break // start > end, nothing to dump
		}
	}
	return string(out)
}
