package asm

import (
	"fmt"

	"github.com/SpartaNeel1010/sc8/isa"
)

// StartAddress is where the assembler's address cursor begins and where the
// resulting image is expected to be loaded.
const StartAddress uint16 = 0x0100

// Instruction is one parsed statement: a mnemonic, its operand lexemes in
// source order, the line it came from (for diagnostics), and the address it
// will be emitted at.
type Instruction struct {
	Mnemonic string
	Operands []string
	Line     int
	Address  uint16
	Size     int
}

// ParseResult is the first pass's output: the instruction stream and the
// symbol table built alongside it.
type ParseResult struct {
	Instructions []Instruction
	Symbols      map[string]uint16
	Diags        []error
}

// Parse walks the token stream, builds the symbol table (label -> address,
// last write wins), and packages each instruction with its lexical operand
// strings; semantic resolution of those operands happens in Encode.
func Parse(tokens []Token) ParseResult {
	result := ParseResult{Symbols: make(map[string]uint16)}
	address := StartAddress

	i := 0
	for i < len(tokens) {
		tok := tokens[i]

		switch tok.Kind {
		case TokNewline:
			i++

		case TokEOF:
			i = len(tokens)

		case TokIdentifier:
			if i+1 < len(tokens) && tokens[i+1].Kind == TokColon {
				result.Symbols[tok.Lexeme] = address
				i += 2
				// A label may be followed by an instruction on the same
				// logical line (e.g. "sub: INC R0"); don't skip past it.
				continue
			}
			result.Diags = append(result.Diags, fmt.Errorf("line %d: unexpected token %s %q", tok.Line, tok.Kind, tok.Lexeme))
			i++

		case TokInstruction:
			info, ok := isa.Lookup(tok.Lexeme)
			if !ok {
				// Unreachable in practice: the lexer only emits
				// TokInstruction for words the table recognises.
				result.Diags = append(result.Diags, fmt.Errorf("line %d: unknown mnemonic %q", tok.Line, tok.Lexeme))
				i++
				continue
			}

			instr := Instruction{
				Mnemonic: tok.Lexeme,
				Line:     tok.Line,
				Address:  address,
				Size:     info.Size,
			}
			i++
			for i < len(tokens) && tokens[i].Kind != TokNewline && tokens[i].Kind != TokEOF {
				if tokens[i].Kind == TokComma {
					i++
					continue
				}
				instr.Operands = append(instr.Operands, tokens[i].Lexeme)
				i++
			}

			result.Instructions = append(result.Instructions, instr)
			address += uint16(info.Size)

		default:
			result.Diags = append(result.Diags, fmt.Errorf("line %d: unexpected token %s %q", tok.Line, tok.Kind, tok.Lexeme))
			i++
		}
	}

	return result
}
