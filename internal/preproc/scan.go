package preproc

// codeMask classifies every byte of content: true means the byte is plain
// code, false means it sits inside a string literal or a comment. Operator
// triggers are only honored on code bytes.
func codeMask(content []byte) []bool {
	mask := make([]bool, len(content))

	const (
		stCode = iota
		stLineComment
		stBlockComment
		stString
	)
	state := stCode
	var quote byte

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch state {
		case stCode:
			switch {
			case c == '/' && i+1 < len(content) && content[i+1] == '/':
				state = stLineComment
			case c == '/' && i+1 < len(content) && content[i+1] == '*':
				state = stBlockComment
			case c == '"' || c == '\'' || c == '`':
				state = stString
				quote = c
			default:
				mask[i] = true
			}
		case stLineComment:
			if c == '\n' {
				state = stCode
			}
		case stBlockComment:
			if c == '*' && i+1 < len(content) && content[i+1] == '/' {
				i++
				state = stCode
			}
		case stString:
			switch c {
			case '\\':
				i++ // экранированный байт не закрывает строку
			case quote:
				state = stCode
			case '\n':
				if quote != '`' {
					// незакрытая строка; не даём ей съесть весь файл
					state = stCode
				}
			}
		}
	}
	return mask
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9'
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t'
}

// matchBackward finds the opening bracket for the closer at hi and returns
// its index, or -1 when unbalanced. hi must point at ')' or ']'.
func matchBackward(content []byte, hi int) int {
	open, close := byte('('), content[hi]
	if close == ']' {
		open = '['
	}
	depth := 0
	for i := hi; i >= 0; i-- {
		switch content[i] {
		case close:
			depth++
		case open:
			depth--
			if depth == 0 {
				return i
			}
		case '\n':
			return -1
		}
	}
	return -1
}

// matchForward finds the closing bracket for the opener at lo and returns the
// index just past it, or -1 when unbalanced. lo must point at '(' or '['.
func matchForward(content []byte, lo int) int {
	open := content[lo]
	close := byte(')')
	if open == '[' {
		close = ']'
	}
	depth := 0
	for i := lo; i < len(content); i++ {
		switch content[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		case '\n':
			return -1
		}
	}
	return -1
}

// stringBackward finds the opening quote matching the closer at hi. Escapes
// are honored by checking for an odd run of preceding backslashes.
func stringBackward(content []byte, hi int) int {
	quote := content[hi]
	for i := hi - 1; i >= 0; i-- {
		if content[i] == '\n' {
			return -1
		}
		if content[i] != quote {
			continue
		}
		bs := 0
		for j := i - 1; j >= 0 && content[j] == '\\'; j-- {
			bs++
		}
		if bs%2 == 0 {
			return i
		}
	}
	return -1
}

// stringForward finds the index just past the closing quote matching the
// opener at lo.
func stringForward(content []byte, lo int) int {
	quote := content[lo]
	for i := lo + 1; i < len(content); i++ {
		switch content[i] {
		case '\\':
			i++
		case '\n':
			return -1
		case quote:
			return i + 1
		}
	}
	return -1
}

// scanOperandLeft walks backwards from end (exclusive) over a single operand:
// identifier/member chains, call or index groups, and string or numeric
// literals, all on one line. It returns the operand bounds, or ok=false when
// none is found before the line break.
func scanOperandLeft(content []byte, end int) (int, int, bool) {
	i := end - 1
	for i >= 0 && isSpaceByte(content[i]) {
		i--
	}
	if i < 0 || content[i] == '\n' {
		return 0, 0, false
	}
	hi := i + 1
	start := -1
	for i >= 0 {
		c := content[i]
		switch {
		case c == ')' || c == ']':
			lo := matchBackward(content, i)
			if lo < 0 {
				return start, hi, start >= 0
			}
			i = lo - 1
		case c == '"' || c == '\'' || c == '`':
			lo := stringBackward(content, i)
			if lo < 0 {
				return start, hi, start >= 0
			}
			i = lo - 1
		case isIdentByte(c):
			for i >= 0 && isIdentByte(content[i]) {
				i--
			}
		default:
			return start, hi, start >= 0
		}
		start = i + 1
		if i >= 0 {
			// units chain together: a.b, f(x).y, xs[0], foo(1)(2)
			switch {
			case content[i] == '.':
				i--
				continue
			case isIdentByte(content[i]), content[i] == ')', content[i] == ']':
				continue
			}
		}
		return start, hi, true
	}
	return start, hi, start >= 0
}

// scanOperandRight walks forwards from pos over a single operand and returns
// its start and the index just past it.
func scanOperandRight(content []byte, pos int) (int, int, bool) {
	i := pos
	for i < len(content) && isSpaceByte(content[i]) {
		i++
	}
	if i >= len(content) || content[i] == '\n' {
		return 0, 0, false
	}
	start := i
	end := -1
	for i < len(content) {
		c := content[i]
		switch {
		case c == '(' || c == '[':
			hi := matchForward(content, i)
			if hi < 0 {
				return start, end, end >= 0
			}
			i = hi
		case c == '"' || c == '\'' || c == '`':
			hi := stringForward(content, i)
			if hi < 0 {
				return start, end, end >= 0
			}
			i = hi
		case isIdentByte(c):
			for i < len(content) && isIdentByte(content[i]) {
				i++
			}
		default:
			return start, end, end >= 0
		}
		end = i
		if i < len(content) && content[i] == '.' {
			i++
			continue
		}
		if i < len(content) && (content[i] == '(' || content[i] == '[') {
			continue
		}
		return start, end, true
	}
	return start, end, end >= 0
}

// scanRefRight is scanOperandRight restricted to identifier/member chains:
// trailing call or index groups are left in place.
func scanRefRight(content []byte, pos int) (int, int, bool) {
	i := pos
	for i < len(content) && isSpaceByte(content[i]) {
		i++
	}
	if i >= len(content) || !isIdentByte(content[i]) {
		return 0, 0, false
	}
	start := i
	for i < len(content) && isIdentByte(content[i]) {
		i++
	}
	for i+1 < len(content) && content[i] == '.' && isIdentByte(content[i+1]) {
		i++
		for i < len(content) && isIdentByte(content[i]) {
			i++
		}
	}
	return start, i, true
}
