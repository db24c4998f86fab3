package grep

import "bytes"

// literalSearcher finds a byte string with Boyer-Moore-Horspool. Case
// insensitive searchers fold ASCII letters only, so offsets are preserved.
type literalSearcher struct {
	pat  []byte
	fold bool
	skip [256]int
}

func newLiteralSearcher(pat []byte, caseSensitive bool) *literalSearcher {
	s := &literalSearcher{fold: !caseSensitive, pat: append([]byte(nil), pat...)}
	if s.fold {
		for i, c := range s.pat {
			s.pat[i] = lowerASCII(c)
		}
	}

	last := len(s.pat) - 1
	for i := range s.skip {
		s.skip[i] = len(s.pat)
	}
	for i := 0; i < last; i++ {
		c := s.pat[i]
		s.skip[c] = last - i
		if s.fold && c >= 'a' && c <= 'z' {
			s.skip[c-'a'+'A'] = last - i
		}
	}
	return s
}

// index returns the first occurrence at or after from, or -1
func (s *literalSearcher) index(text []byte, from int) int {
	if from > len(text) {
		return -1
	}
	if !s.fold {
		i := bytes.Index(text[from:], s.pat)
		if i < 0 {
			return -1
		}
		return from + i
	}

	last := len(s.pat) - 1
	for i := from; i+last < len(text); {
		j := last
		for j >= 0 && lowerASCII(text[i+j]) == s.pat[j] {
			j--
		}
		if j < 0 {
			return i
		}
		i += s.skip[text[i+last]]
	}
	return -1
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// isWordByte reports whether c can be part of a word. Bytes of multi-byte
// UTF-8 sequences count as word bytes.
func isWordByte(c byte) bool {
	return c == '_' ||
		c >= '0' && c <= '9' ||
		c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= 0x80
}

// isWordBoundary reports whether line[start:end] is delimited by non-word
// bytes or the line edges
func isWordBoundary(line []byte, start, end int) bool {
	if start > 0 && isWordByte(line[start-1]) {
		return false
	}
	if end < len(line) && isWordByte(line[end]) {
		return false
	}
	return true
}
