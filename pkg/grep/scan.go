package grep

import (
	"context"
)

// scanLiteral searches the raw bytes window by window. Consecutive windows
// overlap by len(pattern)+1 bytes: an occurrence cut by a window end, or one
// whose following byte is not visible, is seen again whole with one byte of
// look-behind in the next window.
func (m *Matcher) scanLiteral(ctx context.Context, w window, size int64) (bool, error) {
	patLen := len(m.literal.pat)
	whole := m.pattern.WholeWords

	var fileOff int64
	for fileOff < size {
		if ctx.Err() != nil {
			return false, nil
		}

		n := m.opts.WindowSize
		if rest := size - fileOff; rest < int64(n) {
			n = int(rest)
		}
		buf, err := m.view(ctx, w, fileOff, n)
		if err != nil {
			return false, err
		}
		atEOF := fileOff+int64(len(buf)) >= size || len(buf) < n

		for off := 0; ; {
			i := m.literal.index(buf, off)
			if i < 0 {
				break
			}
			if !whole {
				return true, nil
			}

			end := i + patLen
			before := (fileOff == 0 && i == 0) || (i > 0 && !isWordByte(buf[i-1]))
			after := (end < len(buf) && !isWordByte(buf[end])) || (end == len(buf) && atEOF)
			if before && after {
				return true, nil
			}
			off = i + 1
		}

		if atEOF {
			break
		}
		fileOff += int64(len(buf) - (patLen + 1))
	}
	return false, nil
}

// scanLines splits each window into lines and applies the regex to every
// complete line. A line still open at the end of a window (before end of
// file) is rescanned from its first byte in the next window; when it
// already starts the window, the window grows so the whole line fits, up to
// MaxLineLength. Longer lines are cut at MaxLineLength.
func (m *Matcher) scanLines(ctx context.Context, w window, size int64) (bool, error) {
	eol := m.pattern.LineEndings
	maxLine := m.opts.MaxLineLength
	winSize := m.opts.WindowSize

	var fileOff int64
	for fileOff < size {
		if ctx.Err() != nil {
			return false, nil
		}

		want := winSize
		if rest := size - fileOff; rest < int64(want) {
			want = int(rest)
		}
		buf, err := m.view(ctx, w, fileOff, want)
		if err != nil {
			return false, err
		}
		n := len(buf)
		atEOF := fileOff+int64(n) >= size || n < want

		beg := 0
		remap := false
		for beg < n {
			if ctx.Err() != nil {
				return false, nil
			}

			limit := n
			if beg+maxLine < limit {
				limit = beg + maxLine
			}

			end, next := beg, -1
		scan:
			for end < limit {
				c := buf[end]
				if c > '\r' {
					end++
					continue
				}
				switch c {
				case '\r':
					if eol.CRLF && end+1 < n && buf[end+1] == '\n' {
						next = end + 2
						break scan
					}
					if eol.CR && (end+1 < n || !eol.CRLF || atEOF) {
						next = end + 1
						break scan
					}
				case '\n':
					if eol.LF {
						next = end + 1
						break scan
					}
				case 0:
					next = end + 1
					break scan
				}
				end++
			}

			if next < 0 {
				if end == n && !atEOF {
					if beg == 0 {
						// the line does not fit: widen the window
						grown := winSize * 2
						if grown > maxLine+2 {
							grown = maxLine + 2
						}
						if grown <= winSize {
							// cannot grow further; cut the line here
							next = end
						} else {
							winSize = grown
							remap = true
							break
						}
					} else {
						fileOff += int64(beg)
						remap = true
						break
					}
				} else {
					// cut at MaxLineLength or last line without terminator
					next = end
				}
			}

			if m.matchLine(buf[beg:end]) {
				return true, nil
			}
			beg = next
		}

		if remap {
			continue
		}
		if atEOF {
			break
		}
		fileOff += int64(n)
	}
	return false, nil
}

func (m *Matcher) matchLine(line []byte) bool {
	if !m.pattern.WholeWords {
		return m.re.Match(line)
	}
	for _, loc := range m.re.FindAllIndex(line, -1) {
		if isWordBoundary(line, loc[0], loc[1]) {
			return true
		}
	}
	return false
}
