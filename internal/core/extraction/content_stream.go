package extraction

import (
	"encoding/hex"
	"strings"
)

// ContentStreamText returns the strings shown by the text operators of a
// PDF content stream (Tj, TJ, ' and "), one item per operator. TJ arrays are
// concatenated into a single item; kerning numbers are ignored.
func ContentStreamText(data []byte) []string {
	var (
		items   []string
		operand []string // strings seen since the last operator
		inArray bool
		array   strings.Builder
	)

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '(':
			s, n := literalString(data[i:])
			i += n
			if inArray {
				array.WriteString(s)
			} else {
				operand = append(operand, s)
			}
		case c == '<' && i+1 < len(data) && data[i+1] == '<':
			i += 2
		case c == '>' && i+1 < len(data) && data[i+1] == '>':
			i += 2
		case c == '<':
			s, n := hexString(data[i:])
			i += n
			if inArray {
				array.WriteString(s)
			} else {
				operand = append(operand, s)
			}
		case c == '[':
			inArray = true
			array.Reset()
			i++
		case c == ']':
			inArray = false
			operand = append(operand, array.String())
			i++
		case c == '/':
			i++
			for i < len(data) && isRegular(data[i]) {
				i++
			}
		case isRegular(c):
			start := i
			for i < len(data) && isRegular(data[i]) {
				i++
			}
			if !isOperator(data[start]) {
				continue
			}
			switch string(data[start:i]) {
			case "Tj", "TJ", "'", `"`:
				if n := len(operand); n > 0 && operand[n-1] != "" {
					items = append(items, operand[n-1])
				}
			}
			operand = operand[:0]
		default:
			i++
		}
	}
	return items
}

// isOperator reports whether a regular token starting with c is an operator
// rather than a number.
func isOperator(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '\'' || c == '"' || c == '*'
}

func isRegular(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

// literalString decodes a (...) string starting at data[0] and returns it
// with the number of bytes consumed. Balanced parentheses nest.
func literalString(data []byte) (string, int) {
	var b strings.Builder
	depth := 0
	i := 0
	for i < len(data) {
		c := data[i]
		switch c {
		case '(':
			if depth > 0 {
				b.WriteByte(c)
			}
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return b.String(), i
			}
			b.WriteByte(c)
		case '\\':
			i++
			if i >= len(data) {
				return b.String(), i
			}
			e := data[i]
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := 0
					n := 0
					for n < 3 && i < len(data) && data[i] >= '0' && data[i] <= '7' {
						v = v*8 + int(data[i]-'0')
						i++
						n++
					}
					b.WriteByte(byte(v))
					continue
				}
				b.WriteByte(e)
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i
}

// hexString decodes a <...> string starting at data[0].
func hexString(data []byte) (string, int) {
	end := 1
	for end < len(data) && data[end] != '>' {
		end++
	}
	digits := make([]byte, 0, end)
	for _, c := range data[1:end] {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') {
			digits = append(digits, c)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	if _, err := hex.Decode(out, digits); err != nil {
		return "", end + 1
	}
	if end < len(data) {
		end++
	}
	return string(out), end
}
