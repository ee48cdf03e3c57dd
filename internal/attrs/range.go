// Package attrs recovers C/C++ attributes that a front-end does not expose
// as dedicated cursors: [[...]], __attribute__((...)), __declspec(...) and
// alignas(...).
package attrs

// ExtendStart returns the offset where a declaration starting at start
// really begins once leading attribute syntax is included. It walks
// backward over src while the text just before the current start closes an
// attribute: "]]" is matched to its "[[", and a balanced ")" is accepted
// when the word before its "(" is alignas, __declspec or __attribute__.
// A bare identifier is taken when macro reports it as an attribute macro;
// macro may be nil. Attribute text on a preprocessor directive line is never
// taken. The result is start itself when nothing precedes the declaration.
func ExtendStart(src []byte, start int, macro func(name string) bool) int {
	if start > len(src) {
		start = len(src)
	}
	pos := start
	for {
		end := skipSpaceBack(src, pos)
		if end >= 2 && src[end-1] == ']' && src[end-2] == ']' {
			open := matchBack(src, end-1, '[', ']')
			if open < 0 || open+1 >= len(src) || src[open+1] != '[' || inDirective(src, open) {
				return pos
			}
			pos = open
			continue
		}
		if end >= 1 && src[end-1] == ')' {
			open := matchBack(src, end-1, '(', ')')
			if open < 0 {
				return pos
			}
			wordEnd := skipSpaceBack(src, open)
			wordStart := wordEnd
			for wordStart > 0 && isIdentByte(src[wordStart-1]) {
				wordStart--
			}
			if !isAttributeIntroducer(string(src[wordStart:wordEnd])) || inDirective(src, wordStart) {
				return pos
			}
			pos = wordStart
			continue
		}
		if end >= 1 && isIdentByte(src[end-1]) && macro != nil {
			wordStart := end
			for wordStart > 0 && isIdentByte(src[wordStart-1]) {
				wordStart--
			}
			if !macro(string(src[wordStart:end])) || inDirective(src, wordStart) {
				return pos
			}
			pos = wordStart
			continue
		}
		return pos
	}
}

// inDirective reports whether pos lies on a preprocessor directive line.
func inDirective(src []byte, pos int) bool {
	i := pos
	for i > 0 && src[i-1] != '\n' {
		i--
	}
	for i < pos && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	return i < len(src) && src[i] == '#'
}

func isAttributeIntroducer(word string) bool {
	switch word {
	case "alignas", "_Alignas", "__declspec", "__attribute__", "__attribute":
		return true
	}
	return false
}

// skipSpaceBack returns the offset just after the last non-space byte
// before pos.
func skipSpaceBack(src []byte, pos int) int {
	for pos > 0 {
		switch src[pos-1] {
		case ' ', '\t', '\r', '\n', '\f', '\v':
			pos--
		default:
			return pos
		}
	}
	return pos
}

// matchBack finds the opening bracket matching the closing one at close.
// Brackets inside string and character literals are ignored.
func matchBack(src []byte, close int, open, shut byte) int {
	depth := 0
	var quote byte
	for i := close; i >= 0; i-- {
		c := src[i]
		if quote != 0 {
			if c == quote && (i == 0 || src[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case shut:
			depth++
		case open:
			depth--
			if depth == 0 {
				return i
			}
		case ';', '{', '}':
			return -1
		}
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
