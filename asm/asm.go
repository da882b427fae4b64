package asm

// Assemble is the assembler's external interface: source text in, a binary
// image and the list of diagnostics collected along the way. Assembly is
// considered failed if diags is non-empty, but every stage runs to
// completion regardless (continue-and-report), so a caller sees every
// problem in one invocation rather than being stopped at the first.
func Assemble(source string) (image []byte, diags []error) {
	tokens, lexDiags := Lex(source)
	diags = append(diags, lexDiags...)

	parsed := Parse(tokens)
	diags = append(diags, parsed.Diags...)

	encoded, encodeDiags := Encode(parsed.Instructions, parsed.Symbols)
	diags = append(diags, encodeDiags...)

	return encoded, diags
}
