// Package asm is the assembler pipeline: lexer -> parser (first pass,
// symbol collection and address assignment) -> encoder (second pass, label
// resolution and byte emission). Assemble wires the three stages together
// into the source-to-image interface the rest of the system calls.
package asm

import (
	"fmt"
	"strings"

	"github.com/SpartaNeel1010/sc8/isa"
)

// TokenKind enumerates the lexer's output alphabet.
type TokenKind int

const (
	TokInstruction TokenKind = iota
	TokRegister
	TokImmediate
	TokIdentifier
	TokAddress
	TokComma
	TokColon
	TokNewline
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokInstruction:
		return "INSTRUCTION"
	case TokRegister:
		return "REGISTER"
	case TokImmediate:
		return "IMMEDIATE"
	case TokIdentifier:
		return "IDENTIFIER"
	case TokAddress:
		return "ADDRESS"
	case TokComma:
		return "COMMA"
	case TokColon:
		return "COLON"
	case TokNewline:
		return "NEWLINE"
	case TokEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexical unit. Lexeme carries the raw source text (operand
// tokens keep their lexical form; the encoder, not the lexer, interprets
// it).
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
}

// Lex tokenizes source, returning the token stream and any lex-time
// diagnostics (unknown characters). Lex errors are not fatal: the offending
// character is skipped and lexing continues.
func Lex(source string) ([]Token, []error) {
	var tokens []Token
	var diags []error

	line := 1
	runes := []rune(source)
	i := 0
	n := len(runes)

	peek := func(off int) rune {
		if i+off >= n {
			return 0
		}
		return runes[i+off]
	}

	for i < n {
		c := runes[i]

		switch {
		case c == ' ' || c == '\t' || c == '\r':
			i++

		case c == ';':
			for i < n && runes[i] != '\n' {
				i++
			}

		case c == '\n':
			tokens = append(tokens, Token{Kind: TokNewline, Lexeme: "\n", Line: line})
			line++
			i++

		case c == ',':
			tokens = append(tokens, Token{Kind: TokComma, Lexeme: ",", Line: line})
			i++

		case c == ':':
			tokens = append(tokens, Token{Kind: TokColon, Lexeme: ":", Line: line})
			i++

		case c == '[':
			start := i
			i++
			for i < n && runes[i] != ']' {
				i++
			}
			inner := ""
			if i <= n {
				end := i
				if end > start+1 {
					inner = strings.TrimSpace(string(runes[start+1 : end]))
				}
			}
			if i < n {
				i++ // consume ']'
			} else {
				diags = append(diags, fmt.Errorf("line %d: unterminated address bracket", line))
			}
			tokens = append(tokens, Token{Kind: TokAddress, Lexeme: "[" + inner + "]", Line: line})

		case isDigit(c) || (c == '-' && isDigit(peek(1))):
			start := i
			if c == '-' {
				i++
			}
			if runes[i] == '0' && (peek(1) == 'x' || peek(1) == 'X') {
				i += 2
				for i < n && isHexDigit(runes[i]) {
					i++
				}
			} else if runes[i] == '0' && (peek(1) == 'b' || peek(1) == 'B') {
				i += 2
				for i < n && (runes[i] == '0' || runes[i] == '1') {
					i++
				}
			} else {
				for i < n && isDigit(runes[i]) {
					i++
				}
			}
			tokens = append(tokens, Token{Kind: TokImmediate, Lexeme: string(runes[start:i]), Line: line})

		case isAlpha(c) || c == '_':
			start := i
			for i < n && (isAlnum(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, classifyWord(string(runes[start:i]), line))

		default:
			diags = append(diags, fmt.Errorf("line %d: unknown character %q", line, c))
			i++
		}
	}

	tokens = append(tokens, Token{Kind: TokEOF, Line: line})
	return tokens, diags
}

// classifyWord reclassifies an identifier-shaped lexeme as REGISTER (R0-R7,
// or the SP alias normalised to R7) or INSTRUCTION (any mnemonic in the ISA
// table) before falling back to plain IDENTIFIER.
func classifyWord(word string, line int) Token {
	if word == "SP" {
		return Token{Kind: TokRegister, Lexeme: "R7", Line: line}
	}
	if len(word) == 2 && word[0] == 'R' && word[1] >= '0' && word[1] <= '7' {
		return Token{Kind: TokRegister, Lexeme: word, Line: line}
	}
	if _, ok := isa.Lookup(word); ok {
		return Token{Kind: TokInstruction, Lexeme: word, Line: line}
	}
	return Token{Kind: TokIdentifier, Lexeme: word, Line: line}
}

func isDigit(c rune) bool { return c >= '0' && c <= '9' }
func isHexDigit(c rune) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
func isAlpha(c rune) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isAlnum(c rune) bool { return isAlpha(c) || isDigit(c) }
