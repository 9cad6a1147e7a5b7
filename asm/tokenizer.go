package asm

import (
	"github.com/pkg/errors"
	"github.com/verpitek/panspark/vm"
)

// Tokenize splits a single source line into raw tokens, left to right.
// Whitespace separates tokens except inside a double-quoted string or a
// bracketed array literal, each of which is returned as one token including
// its delimiters. Unterminated strings or array literals are compile
// errors.
func Tokenize(line string) ([]string, error) {
	var tokens []string
	r := []rune(line)
	n := len(r)
	i := 0
	for i < n {
		if isSpace(r[i]) {
			i++
			continue
		}
		switch r[i] {
		case '"':
			j := i + 1
			for j < n && r[j] != '"' {
				j++
			}
			if j >= n {
				return nil, errors.Wrapf(vm.ErrCompile, "unterminated string literal starting at column %d", i+1)
			}
			tokens = append(tokens, string(r[i:j+1]))
			i = j + 1
		case '[':
			j := i + 1
			for j < n && r[j] != ']' {
				j++
			}
			if j >= n {
				return nil, errors.Wrapf(vm.ErrCompile, "unterminated array literal starting at column %d", i+1)
			}
			tokens = append(tokens, string(r[i:j+1]))
			i = j + 1
		default:
			j := i
			for j < n && !isSpace(r[j]) {
				j++
			}
			tokens = append(tokens, string(r[i:j]))
			i = j
		}
	}
	return tokens, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
