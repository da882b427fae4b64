package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SpartaNeel1010/sc8/isa"
)

// Encode is the assembler's second pass: for each parsed Instruction it
// resolves operand strings against the symbol table and the numeric-literal
// grammar, and appends the encoded bytes to the image.
//
// On an encode error (unknown mnemonic, malformed register, malformed
// numeric literal, missing operand) the instruction contributes no bytes
// and assembly continues with the next one, matching the "continue and
// report" policy; this does shift subsequent addresses relative to the
// symbol table computed in the first pass, a known consequence carried
// forward unchanged rather than papered over (see DESIGN.md).
func Encode(instructions []Instruction, symbols map[string]uint16) ([]byte, []error) {
	var image []byte
	var diags []error

	for _, instr := range instructions {
		info, ok := isa.Lookup(instr.Mnemonic)
		if !ok {
			diags = append(diags, fmt.Errorf("line %d: unknown mnemonic %q", instr.Line, instr.Mnemonic))
			continue
		}

		encoded, err := encodeOne(info, instr, symbols)
		if err != nil {
			diags = append(diags, fmt.Errorf("line %d: %w", instr.Line, err))
			continue
		}
		image = append(image, encoded...)
	}

	return image, diags
}

func encodeOne(info isa.Info, instr Instruction, symbols map[string]uint16) ([]byte, error) {
	ops := instr.Operands

	switch info.Shape {
	case isa.Nullary:
		if info.Literal {
			return []byte{isa.NOPByte}, nil
		}
		return []byte{isa.EncodeByte0(info.Op, 0)}, nil

	case isa.UnaryReg:
		if len(ops) != 1 {
			return nil, fmt.Errorf("%s: expected 1 operand, got %d", instr.Mnemonic, len(ops))
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return nil, err
		}
		return []byte{isa.EncodeByte0(info.Op, rd)}, nil

	case isa.RegImm:
		if len(ops) != 2 {
			return nil, fmt.Errorf("%s: expected 2 operands, got %d", instr.Mnemonic, len(ops))
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return nil, err
		}
		imm, err := resolveImmediate(ops[1])
		if err != nil {
			return nil, err
		}
		return []byte{isa.EncodeByte0(info.Op, rd), imm}, nil

	case isa.RegReg:
		if len(ops) != 2 {
			return nil, fmt.Errorf("%s: expected 2 operands, got %d", instr.Mnemonic, len(ops))
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return nil, err
		}
		rs, err := resolveRegister(ops[1])
		if err != nil {
			return nil, err
		}
		return []byte{isa.EncodeByte0(info.Op, rd), isa.EncodeRegRegByte(rs, 0)}, nil

	case isa.RegRegReg:
		// CMP reads rd and rs1 only: "CMP A, B" computes A-B.
		minOperands, maxOperands := 3, 3
		if instr.Mnemonic == "CMP" {
			minOperands, maxOperands = 2, 2
		}
		if len(ops) < minOperands || len(ops) > maxOperands {
			return nil, fmt.Errorf("%s: expected %d operands, got %d", instr.Mnemonic, minOperands, len(ops))
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return nil, err
		}
		rs1, err := resolveRegister(ops[1])
		if err != nil {
			return nil, err
		}
		var rs2 byte
		if len(ops) == 3 {
			rs2, err = resolveRegister(ops[2])
			if err != nil {
				return nil, err
			}
		}
		return []byte{isa.EncodeByte0(info.Op, rd), isa.EncodeRegRegByte(rs1, rs2)}, nil

	case isa.RegAddr:
		if len(ops) != 2 {
			return nil, fmt.Errorf("%s: expected 2 operands, got %d", instr.Mnemonic, len(ops))
		}
		rd, err := resolveRegister(ops[0])
		if err != nil {
			return nil, err
		}
		addr, err := resolveAddress(ops[1], symbols)
		if err != nil {
			return nil, err
		}
		lo, hi := isa.EncodeAddr(addr)
		return []byte{isa.EncodeByte0(info.Op, rd), lo, hi}, nil

	case isa.Addr:
		if len(ops) != 1 {
			return nil, fmt.Errorf("%s: expected 1 operand, got %d", instr.Mnemonic, len(ops))
		}
		addr, err := resolveAddress(ops[0], symbols)
		if err != nil {
			return nil, err
		}
		lo, hi := isa.EncodeAddr(addr)
		return []byte{isa.EncodeByte0(info.Op, 0), lo, hi}, nil

	default:
		return nil, fmt.Errorf("%s: unhandled operand shape %s", instr.Mnemonic, info.Shape)
	}
}

func resolveRegister(s string) (byte, error) {
	if len(s) == 2 && s[0] == 'R' && s[1] >= '0' && s[1] <= '7' {
		return s[1] - '0', nil
	}
	return 0, fmt.Errorf("malformed register %q", s)
}

func resolveImmediate(s string) (byte, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("malformed numeric literal %q: %w", s, err)
	}
	return byte(v), nil
}

func resolveAddress(s string, symbols map[string]uint16) (uint16, error) {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		trimmed = strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	}
	if addr, ok := symbols[trimmed]; ok {
		return addr, nil
	}
	v, err := parseNumber(trimmed)
	if err != nil {
		return 0, fmt.Errorf("malformed address %q: %w", s, err)
	}
	return uint16(v), nil
}

// parseNumber parses the assembler's numeric-literal grammar: decimal,
// 0x/0X hex, 0b/0B binary, with an optional leading '-'.
func parseNumber(s string) (int64, error) {
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var v int64
	var err error
	switch {
	case strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X"):
		v, err = strconv.ParseInt(s[2:], 16, 64)
	case strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B"):
		v, err = strconv.ParseInt(s[2:], 2, 64)
	default:
		v, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}
