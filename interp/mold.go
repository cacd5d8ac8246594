package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// MoldBuffer is the process-wide UTF-8 scratch area operations acquire with
// a push and must pop before yielding control.
type MoldBuffer struct {
	buf strings.Builder
}

// NewMoldBuffer returns an empty mold buffer.
func NewMoldBuffer() *MoldBuffer { return &MoldBuffer{} }

// Push records the current length as a restore point, returning it.
func (m *MoldBuffer) Push() int { return m.buf.Len() }

// Pop truncates the buffer back to mark and returns everything molded since.
func (m *MoldBuffer) Pop(mark int) string {
	s := m.buf.String()[mark:]
	// strings.Builder cannot truncate in place; rebuild from the retained
	// prefix, which is the idiomatic way to "pop" a Builder-backed scratch
	// buffer without a third-party rope/buffer type.
	prefix := m.buf.String()[:mark]
	m.buf.Reset()
	m.buf.WriteString(prefix)
	return s
}

// Mold appends a machine-readable rendering of c, recursing into series-
// backed hearts.
func (m *MoldBuffer) Mold(c Cell) {
	if c.Quote.IsQuoted() {
		m.buf.WriteString(strings.Repeat("'", c.Quote.Depth()))
	}
	if c.Quote.IsQuasi() {
		m.buf.WriteByte('~')
	}
	switch c.Heart {
	case heartNone:
		m.buf.WriteString("")
	case HeartBlank:
		m.buf.WriteByte('_')
	case HeartComma:
		m.buf.WriteByte(',')
	case HeartLogic:
		if c.Payload.Num != 0 {
			m.buf.WriteString("true")
		} else {
			m.buf.WriteString("false")
		}
	case HeartInteger:
		m.buf.WriteString(strconv.FormatInt(c.Payload.Num, 10))
	case HeartText:
		fmt.Fprintf(&m.buf, "%q", c.AsText())
	case HeartWord, HeartSetWord, HeartGetWord, HeartMetaWord:
		switch c.Heart {
		case HeartGetWord:
			m.buf.WriteByte(':')
		case HeartMetaWord:
			m.buf.WriteByte('^')
		}
		if c.AsSymbol() != nil {
			m.buf.WriteString(c.AsSymbol().String())
		}
		if c.Heart == HeartSetWord {
			m.buf.WriteByte(':')
		}
	case HeartBlock, HeartGroup:
		open, close := "[", "]"
		if c.Heart == HeartGroup {
			open, close = "(", ")"
		}
		m.buf.WriteString(open)
		if arr := c.Array(); arr != nil {
			for i, cell := range arr.Cells {
				if i > 0 {
					m.buf.WriteByte(' ')
				}
				m.Mold(cell)
			}
		}
		m.buf.WriteString(close)
	case HeartAction:
		m.buf.WriteString("#[action]")
	case HeartContext, HeartFrame, HeartError:
		m.buf.WriteString("#[" + c.Heart.String() + "]")
	default:
		m.buf.WriteString("#[" + c.Heart.String() + "]")
	}
	if c.Quote.IsQuasi() {
		m.buf.WriteByte('~')
	}
}

// MoldToString is a convenience one-shot mold with automatic push/pop.
func (m *MoldBuffer) MoldToString(c Cell) string {
	mark := m.Push()
	m.Mold(c)
	return m.Pop(mark)
}
