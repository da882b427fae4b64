package isa

import (
	"fmt"
	"testing"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

func TestLookupKnownMnemonics(t *testing.T) {
	cases := []struct {
		mnemonic string
		op       Op
		size     int
		shape    Shape
	}{
		{"ADD", ADD, 2, RegRegReg},
		{"CMP", CMP, 2, RegRegReg},
		{"LOADI", LOADI, 2, RegImm},
		{"NOT", NOT, 2, RegReg},
		{"INC", INC, 1, UnaryReg},
		{"PUSH", PUSH, 1, UnaryReg},
		{"LOAD", LOAD, 3, RegAddr},
		{"JMP", JMP, 3, Addr},
		{"CALL", CALL, 3, Addr},
		{"RET", RET, 1, Nullary},
		{"HALT", HALT, 1, Nullary},
		{"NOP", HALT, 1, Nullary},
	}
	for _, c := range cases {
		info, ok := Lookup(c.mnemonic)
		assert(t, ok, "expected %s to be a known mnemonic", c.mnemonic)
		assert(t, info.Op == c.op, "%s: expected op %x, got %x", c.mnemonic, c.op, info.Op)
		assert(t, info.Size == c.size, "%s: expected size %d, got %d", c.mnemonic, c.size, info.Size)
		assert(t, info.Shape == c.shape, "%s: expected shape %s, got %s", c.mnemonic, c.shape, info.Shape)
	}
}

func TestLookupUnknownMnemonic(t *testing.T) {
	_, ok := Lookup("FROB")
	assert(t, !ok, "expected FROB to be unknown")
}

func TestNOPAliasesHaltOpcode(t *testing.T) {
	nop, ok := Lookup("NOP")
	assert(t, ok, "expected NOP to be known")
	assert(t, nop.Literal, "expected NOP to be a literal encoding")
	assert(t, EncodeByte0(nop.Op, 7) == NOPByte, "expected HALT<<3|7 to equal NOPByte")
}

func TestByte0RoundTrip(t *testing.T) {
	b0 := EncodeByte0(LOAD, 3)
	assert(t, DecodeOpcode(b0) == LOAD, "expected opcode LOAD, got %x", DecodeOpcode(b0))
	assert(t, DecodeRd(b0) == 3, "expected rd 3, got %d", DecodeRd(b0))
}

func TestRegRegByteRoundTrip(t *testing.T) {
	b1 := EncodeRegRegByte(5, 2)
	assert(t, DecodeRs1(b1) == 5, "expected rs1 5, got %d", DecodeRs1(b1))
	assert(t, DecodeRs2(b1) == 2, "expected rs2 2, got %d", DecodeRs2(b1))
}

func TestAddrRoundTrip(t *testing.T) {
	lo, hi := EncodeAddr(0x1234)
	assert(t, lo == 0x34, "expected lo 0x34, got %x", lo)
	assert(t, hi == 0x12, "expected hi 0x12, got %x", hi)
	assert(t, DecodeAddr(lo, hi) == 0x1234, "expected round trip to 0x1234, got %x", DecodeAddr(lo, hi))
}

func TestLookupOpcodeHaltVsNop(t *testing.T) {
	info, ok := LookupOpcode(HALT)
	assert(t, ok, "expected opcode HALT to resolve")
	assert(t, info.Mnemonic == "HALT", "expected HALT table entry to win, got %s", info.Mnemonic)
}
