package machine

import (
	"errors"
	"fmt"

	"github.com/SpartaNeel1010/sc8/isa"
)

// ResetPC is where the program counter starts after reset, and the default
// address an image is loaded at.
const ResetPC uint16 = 0x0100

// MaxCycles and RunawayPC bound a Run call that never hits HALT.
const (
	MaxCycles uint64 = 1_000_000
	RunawayPC uint16 = 0xFF00
)

var (
	ErrUnknownOpcode = errors.New("unknown opcode")
	ErrRunaway       = errors.New("runaway execution")
)

// CPU is the register file, program counter, flags register, and
// fetch/decode/execute driver. It owns no address space of its own; Mem is
// supplied by the caller so the same CPU type can run against a fresh
// AddressSpace per test or a shared one across a CLI invocation.
type CPU struct {
	Regs   [8]byte
	PC     uint16
	Flags  byte
	Halted bool
	Cycles uint64

	ir [3]byte

	Mem *AddressSpace
}

// NewCPU builds a CPU wired to mem and immediately resets it.
func NewCPU(mem *AddressSpace) *CPU {
	c := &CPU{Mem: mem}
	c.Reset()
	return c
}

// Reset restores the documented reset vector: R0..R6 zero, R7 (SP high
// byte) 0xFF, PC 0x0100, flags clear, not halted, zero cycles.
func (c *CPU) Reset() {
	for i := range c.Regs {
		c.Regs[i] = 0
	}
	c.Regs[7] = 0xFF
	c.PC = ResetPC
	c.Flags = 0
	c.Halted = false
	c.Cycles = 0
}

func (c *CPU) fetchByte() byte {
	b := c.Mem.Read(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return isa.DecodeAddr(lo, hi)
}

// push and pop replicate the Machine's irregular stack-pointer discipline:
// the pointer is recomputed from R7's high byte and a fixed low byte of
// 0xFE on every call, stepped by one, and only the new high byte is written
// back to R7. See SPEC_FULL.md's open-question decisions for why this is
// preserved rather than redesigned.
func (c *CPU) push(v byte) {
	sp := uint16(c.Regs[7])<<8 | 0xFE
	sp--
	c.Mem.Write(sp, v)
	c.Regs[7] = byte(sp >> 8)
}

func (c *CPU) pop() byte {
	sp := uint16(c.Regs[7])<<8 | 0xFE
	v := c.Mem.Read(sp)
	sp++
	c.Regs[7] = byte(sp >> 8)
	return v
}

// Step performs one fetch/decode/execute pass, then ticks the timer and the
// cycle counter. It returns an error (and sets Halted) on an unknown
// opcode; callers should not call Step again afterward.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}

	c.ir[0] = c.fetchByte()
	if err := c.execute(); err != nil {
		c.Halted = true
		return err
	}

	c.Mem.UpdateTimer()
	c.Cycles++
	return nil
}

func (c *CPU) execute() error {
	b0 := c.ir[0]
	if b0 == isa.NOPByte {
		return nil
	}

	op := isa.DecodeOpcode(b0)
	rd := isa.DecodeRd(b0)
	info, ok := isa.LookupOpcode(op)
	if !ok {
		return fmt.Errorf("%w: 0x%02X at 0x%04X", ErrUnknownOpcode, b0, c.PC-1)
	}

	switch info.Shape {
	case isa.RegRegReg:
		b1 := c.fetchByte()
		return c.execRegRegReg(op, rd, isa.DecodeRs1(b1), isa.DecodeRs2(b1))
	case isa.RegReg:
		b1 := c.fetchByte()
		return c.execRegReg(op, rd, isa.DecodeRs1(b1))
	case isa.RegImm:
		imm := c.fetchByte()
		return c.execRegImm(op, rd, imm)
	case isa.UnaryReg:
		return c.execUnaryReg(op, rd)
	case isa.RegAddr:
		addr := c.fetchWord()
		return c.execRegAddr(op, rd, addr)
	case isa.Addr:
		addr := c.fetchWord()
		return c.execAddr(op, addr)
	case isa.Nullary:
		return c.execNullary(op)
	default:
		return fmt.Errorf("%w: 0x%02X at 0x%04X", ErrUnknownOpcode, b0, c.PC-1)
	}
}

func (c *CPU) execRegRegReg(op isa.Op, rd, rs1, rs2 byte) error {
	switch op {
	case isa.ADD:
		r, f := Add(c.Regs[rs1], c.Regs[rs2])
		c.Regs[rd], c.Flags = r, f
	case isa.SUB:
		r, f := Sub(c.Regs[rs1], c.Regs[rs2])
		c.Regs[rd], c.Flags = r, f
	case isa.MUL:
		r, f := Mul(c.Regs[rs1], c.Regs[rs2])
		c.Regs[rd], c.Flags = r, f
	case isa.AND:
		r, f := And(c.Regs[rs1], c.Regs[rs2])
		c.Regs[rd], c.Flags = r, f
	case isa.OR:
		r, f := Or(c.Regs[rs1], c.Regs[rs2])
		c.Regs[rd], c.Flags = r, f
	case isa.XOR:
		r, f := Xor(c.Regs[rs1], c.Regs[rs2])
		c.Regs[rd], c.Flags = r, f
	case isa.SHL:
		shift := c.Regs[rs1] & 0x07
		if r, f, changed := Shl(c.Regs[rd], shift); changed {
			c.Regs[rd], c.Flags = r, f
		}
	case isa.SHR:
		shift := c.Regs[rs1] & 0x07
		if r, f, changed := Shr(c.Regs[rd], shift); changed {
			c.Regs[rd], c.Flags = r, f
		}
	case isa.CMP:
		// CMP reads rd and rs1 only: Rd - Rs1. rs2 is unused.
		c.Flags = Compare(c.Regs[rd], c.Regs[rs1])
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(op))
	}
	return nil
}

func (c *CPU) execRegReg(op isa.Op, rd, rs byte) error {
	switch op {
	case isa.NOT:
		r, f := Not(c.Regs[rs])
		c.Regs[rd], c.Flags = r, f
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(op))
	}
	return nil
}

func (c *CPU) execRegImm(op isa.Op, rd, imm byte) error {
	switch op {
	case isa.ADDI:
		r, f := Add(c.Regs[rd], imm)
		c.Regs[rd], c.Flags = r, f
	case isa.SUBI:
		r, f := Sub(c.Regs[rd], imm)
		c.Regs[rd], c.Flags = r, f
	case isa.ANDI:
		r, f := And(c.Regs[rd], imm)
		c.Regs[rd], c.Flags = r, f
	case isa.ORI:
		r, f := Or(c.Regs[rd], imm)
		c.Regs[rd], c.Flags = r, f
	case isa.CMPI:
		c.Flags = Compare(c.Regs[rd], imm)
	case isa.LOADI:
		c.Regs[rd] = imm // flags unchanged
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(op))
	}
	return nil
}

func (c *CPU) execUnaryReg(op isa.Op, rd byte) error {
	switch op {
	case isa.INC:
		r, f := Add(c.Regs[rd], 1)
		c.Regs[rd], c.Flags = r, f
	case isa.DEC:
		r, f := Sub(c.Regs[rd], 1)
		c.Regs[rd], c.Flags = r, f
	case isa.PUSH:
		c.push(c.Regs[rd])
	case isa.POP:
		c.Regs[rd] = c.pop()
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(op))
	}
	return nil
}

func (c *CPU) execRegAddr(op isa.Op, rd byte, addr uint16) error {
	switch op {
	case isa.LOAD:
		c.Regs[rd] = c.Mem.Read(addr)
	case isa.STORE:
		c.Mem.Write(addr, c.Regs[rd])
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(op))
	}
	return nil
}

func (c *CPU) execAddr(op isa.Op, addr uint16) error {
	switch op {
	case isa.JMP:
		c.PC = addr
	case isa.JZ:
		if c.Flags&FlagZ != 0 {
			c.PC = addr
		}
	case isa.JNZ:
		if c.Flags&FlagZ == 0 {
			c.PC = addr
		}
	case isa.JC:
		if c.Flags&FlagC != 0 {
			c.PC = addr
		}
	case isa.JNC:
		if c.Flags&FlagC == 0 {
			c.PC = addr
		}
	case isa.CALL:
		lo, hi := isa.EncodeAddr(c.PC)
		c.push(lo)
		c.push(hi)
		c.PC = addr
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(op))
	}
	return nil
}

func (c *CPU) execNullary(op isa.Op) error {
	switch op {
	case isa.RET:
		hi := c.pop()
		lo := c.pop()
		c.PC = isa.DecodeAddr(lo, hi)
	case isa.HALT:
		c.Halted = true
	default:
		return fmt.Errorf("%w: 0x%02X", ErrUnknownOpcode, byte(op))
	}
	return nil
}

// Run steps the CPU until it halts or a runaway condition fires (PC reaches
// the MMIO window, or the cycle count exceeds MaxCycles). A runaway also
// sets Halted and is reported as an error.
func (c *CPU) Run() error {
	for !c.Halted {
		if c.PC >= RunawayPC || c.Cycles > MaxCycles {
			c.Halted = true
			return fmt.Errorf("%w: pc=0x%04X cycles=%d", ErrRunaway, c.PC, c.Cycles)
		}
		if err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

// String renders a one-line state dump, used by the emulator CLI's debug
// mode and final-state report.
func (c *CPU) String() string {
	return fmt.Sprintf(
		"PC=0x%04X R0=%02X R1=%02X R2=%02X R3=%02X R4=%02X R5=%02X R6=%02X R7(SP)=%02X Flags=%02X[N=%d Z=%d C=%d V=%d] Cycles=%d Halted=%v",
		c.PC,
		c.Regs[0], c.Regs[1], c.Regs[2], c.Regs[3],
		c.Regs[4], c.Regs[5], c.Regs[6], c.Regs[7],
		c.Flags,
		b2i(c.Flags&FlagN != 0), b2i(c.Flags&FlagZ != 0), b2i(c.Flags&FlagC != 0), b2i(c.Flags&FlagV != 0),
		c.Cycles, c.Halted,
	)
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
