// Package asm compiles PanSpark source into a vm.Program.
//
// Compile runs four ordered passes: named-variable substitution,
// sanitizing (blank/comment line removal), label collection, and opcode
// encoding with label resolution. The input language is line-oriented, one
// instruction per line, tokens separated by whitespace; double-quoted
// strings and bracketed array literals are each a single token. ">>" marks
// the destination register and is discarded during operand collection.
// Comments are whole-line only: a line whose first non-whitespace
// characters are "//" is stripped in the sanitize pass; there is no
// trailing-comment support.
//
// Any opcode mnemonic that is neither a built-in nor a name present in the
// supplied peripheral registry is a compile error. There is no warn-and-skip
// mode.
package asm
