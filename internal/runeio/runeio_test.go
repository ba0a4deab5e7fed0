package runeio

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestName(t *testing.T) {
	assert.Equal(t, "<ESC>", Name(0x1b))
	assert.Equal(t, "<NUL>", Name(0))
	assert.Equal(t, "<DEL>", Name(0x7f))
	assert.Equal(t, "", Name('a'))
	assert.Equal(t, "", Name(0x85))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, "CLS", Quote("CLS"))
	assert.Equal(t, "a^[b^M^J", Quote("a\x1bb\r\n"))
}

func readKeys(t *testing.T, input string) string {
	kr := NewKeyReader(strings.NewReader(input))
	var keys []rune
	for {
		r, err := kr.ReadKey()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		keys = append(keys, r)
	}
	return string(keys)
}

func TestKeyReader(t *testing.T) {
	for _, tc := range []struct {
		name   string
		input  string
		expect string
	}{
		{"plain", "hello", "hello"},
		{"cr lf", "yes\r\nno\r\n", "yes\rno\r"},
		{"cr nul", "yes\r\x00no", "yes\rno"},
		{"bare lf", "a\nb", "a\nb"},
		{"blank lines", "\r\r", "\r\r"},
		{"negotiation", "\xff\xfb\x01a\xff\xfd\x03b", "ab"},
		{"subnegotiation", "\xff\xfa\x18\x00VT100\xff\xf0c", "c"},
		{"escaped iac", "\xff\xffz", "ÿz"},
		{"code page bytes", "\xb0\xdb", "°Û"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, readKeys(t, tc.input))
		})
	}
}

func TestAppendKey(t *testing.T) {
	var buf []byte
	buf = AppendKey(buf, 'a')
	buf = AppendKey(buf, 0x85)
	buf = AppendKey(buf, 0x9b)
	buf = AppendKey(buf, 'é')
	assert.Equal(t, "a\r\n\x1b[é", string(buf))
}
