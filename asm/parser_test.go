package asm

import "testing"

func TestParseLabelAddressResolution(t *testing.T) {
	// LOADI (2 bytes) then loop: DEC (1 byte) then JNZ (3 bytes) then HALT.
	tokens, _ := Lex("LOADI R0, 3\nloop: DEC R0\nJNZ loop\nHALT")
	result := Parse(tokens)
	assert(t, len(result.Diags) == 0, "unexpected diags: %v", result.Diags)

	addr, ok := result.Symbols["loop"]
	assert(t, ok, "expected 'loop' to be defined")
	assert(t, addr == 0x0102, "expected loop at 0x0102, got %#x", addr)

	assert(t, len(result.Instructions) == 4, "expected 4 instructions, got %d", len(result.Instructions))
	assert(t, result.Instructions[0].Address == 0x0100, "expected LOADI at 0x0100")
	assert(t, result.Instructions[1].Address == 0x0102, "expected DEC at 0x0102")
	assert(t, result.Instructions[2].Address == 0x0103, "expected JNZ at 0x0103")
}

func TestParseOperandsRetainLexicalForm(t *testing.T) {
	tokens, _ := Lex("STORE R3, [0x1000]")
	result := Parse(tokens)
	assert(t, len(result.Instructions) == 1, "expected 1 instruction")
	instr := result.Instructions[0]
	assert(t, instr.Operands[0] == "R3", "got %q", instr.Operands[0])
	assert(t, instr.Operands[1] == "[0x1000]", "got %q", instr.Operands[1])
}

func TestParseLastLabelWriteWins(t *testing.T) {
	tokens, _ := Lex("loop: NOP\nloop: HALT")
	result := Parse(tokens)
	addr, ok := result.Symbols["loop"]
	assert(t, ok, "expected 'loop' defined")
	assert(t, addr == 0x0101, "expected last write to win (second definition at 0x0101), got %#x", addr)
}

func TestParseUnexpectedTokenIsSkippedNotFatal(t *testing.T) {
	tokens, _ := Lex(", HALT")
	result := Parse(tokens)
	assert(t, len(result.Diags) == 1, "expected one diagnostic for the stray comma, got %d", len(result.Diags))
	assert(t, len(result.Instructions) == 1, "expected parsing to continue to HALT")
}
