package util

import "unicode/utf16"

// UTF16Index maps UTF-16 code unit positions of a string to byte offsets.
// Grammar services count offsets in UTF-16 units while Go slices by byte.
type UTF16Index struct {
	offsets []int
}

// NewUTF16Index builds the index for s. The low surrogate position of a
// supplementary rune maps to the start of that rune.
func NewUTF16Index(s string) *UTF16Index {
	offs := make([]int, 0, len(s)+1)
	for i, r := range s {
		offs = append(offs, i)
		if utf16.RuneLen(r) == 2 {
			offs = append(offs, i)
		}
	}
	offs = append(offs, len(s))
	return &UTF16Index{offsets: offs}
}

// Len is the length of the indexed string in UTF-16 code units.
func (x *UTF16Index) Len() int { return len(x.offsets) - 1 }

// ByteOffset converts a UTF-16 position into a byte offset, clamping to the
// bounds of the string.
func (x *UTF16Index) ByteOffset(u int) int {
	if u <= 0 {
		return 0
	}
	if u >= len(x.offsets) {
		return x.offsets[len(x.offsets)-1]
	}
	return x.offsets[u]
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		if utf16.RuneLen(r) == 2 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
