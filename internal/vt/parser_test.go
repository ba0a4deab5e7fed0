package vt

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transcode(p *Parser, s string) string {
	return string(p.Transcode(nil, []byte(s)))
}

func TestTranscode_colorMatchesSetColor(t *testing.T) {
	for c := 0; c < 256; c++ {
		var printed, direct Parser
		code := fmt.Sprintf("@X%02X", c)
		out := transcode(&printed, code)
		require.Equal(t, string(direct.SetColor(nil, byte(c))), out, "code %v", code)
		assert.Equal(t, byte(c), printed.Attr)
		assert.True(t, printed.Idle())
	}
}

func TestSGR(t *testing.T) {
	for _, tc := range []struct {
		attr   byte
		expect string
	}{
		{0x07, "\x1b[0;37;40m"},
		{0x0F, "\x1b[0;1;37;40m"},
		{0x1E, "\x1b[0;1;33;44m"},
		{0x41, "\x1b[0;34;41m"},
		{0x9C, "\x1b[0;1;31;44m"},
	} {
		assert.Equal(t, tc.expect, SGR(tc.attr), "attr %02X", tc.attr)
	}
}

func TestTranscode_plainIdentity(t *testing.T) {
	var buf bytes.Buffer
	for c := 0; c < 128; c++ {
		if c != '@' && c != EOF {
			buf.WriteByte(byte(c))
		}
	}
	var p Parser
	assert.Equal(t, buf.String(), transcode(&p, buf.String()))
	assert.True(t, p.Idle())
}

func TestTranscode(t *testing.T) {
	for _, tc := range []struct {
		name   string
		in     []string
		expect string
		logs   []string
	}{
		{name: "color", in: []string{"@X1Fhi"}, expect: "\x1b[0;1;37;44mhi"},
		{name: "nibble1 abort", in: []string{"@XZ!"}, expect: "@XZ!"},
		{name: "nibble2 abort", in: []string{"@X1Z!"}, expect: "@1Z!"},
		{name: "split code", in: []string{"a@", "X", "0", "7b"}, expect: "a\x1b[0;37;40mb"},
		{name: "trailing prefix", in: []string{"@X01@", "@X01@"}, expect: "\x1b[0;34;40m\x1b[0;34;40m"},
		{name: "doubled prefix", in: []string{"@@X07"}, expect: "\x1b[0;37;40m"},
		{name: "cls", in: []string{"@CLS@x"}, expect: ClearScreen + "x"},
		{name: "clreol lower", in: []string{"@clreol@"}, expect: ClearEOL},
		{name: "pause dropped", in: []string{"a@PAUSE@b"}, expect: "ab"},
		{
			name:   "unknown dropped",
			in:     []string{"a@FROB@b"},
			expect: "ab",
			logs:   []string{"dropped unknown code @FROB@"},
		},
		{name: "eof stops", in: []string{"ab\x1Acd"}, expect: "ab"},
		{name: "eof then next write", in: []string{"ab\x1Acd", "ef"}, expect: "abef"},
		{name: "newline aborts name", in: []string{"mail a@b.c\r\nok"}, expect: "mail a@b.c\r\nok"},
		{
			name:   "overlong name is text",
			in:     []string{"@" + strings.Repeat("n", 40)},
			expect: "@" + strings.Repeat("n", 40),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var logs []string
			p := Parser{Logf: func(mess string, args ...interface{}) {
				logs = append(logs, fmt.Sprintf(mess, args...))
			}}
			var out []byte
			for _, in := range tc.in {
				out = p.Transcode(out, []byte(in))
			}
			assert.Equal(t, tc.expect, string(out))
			assert.Equal(t, tc.logs, logs)
			assert.True(t, p.Idle())
		})
	}
}

func TestTranscode_nibble1AbortReturnsToDefault(t *testing.T) {
	var p Parser
	assert.Equal(t, "@X!", transcode(&p, "@X!"))
	assert.True(t, p.Idle())
	assert.Equal(t, "\x1b[0;37;40m", transcode(&p, "@X07"))
}

func TestCursorTracking(t *testing.T) {
	var p Parser
	transcode(&p, "hello")
	assert.Equal(t, [2]int{5, 0}, [2]int{p.X, p.Y})

	transcode(&p, "\r\nab\b")
	assert.Equal(t, [2]int{1, 1}, [2]int{p.X, p.Y})

	transcode(&p, "@X0F"+strings.Repeat("x", 80))
	assert.Equal(t, [2]int{1, 2}, [2]int{p.X, p.Y})

	transcode(&p, "@CLS@")
	assert.Equal(t, [2]int{0, 0}, [2]int{p.X, p.Y})

	assert.Equal(t, "\x1b[5;10H", string(p.GotoXY(nil, 9, 4)))
	assert.Equal(t, [2]int{9, 4}, [2]int{p.X, p.Y})
}

func TestTerminal(t *testing.T) {
	var out, tee bytes.Buffer
	term := NewTerminal(&out, &tee)
	require.NoError(t, term.Print("@X1Fhi"))
	require.NoError(t, term.SetColor(0x07))
	require.NoError(t, term.GotoXY(0, 0))
	_, err := term.Write([]byte("ok"))
	require.NoError(t, err)

	expect := "\x1b[0;1;37;44mhi\x1b[0;37;40m\x1b[1;1Hok"
	assert.Equal(t, expect, out.String())
	assert.Equal(t, expect, tee.String())
	assert.Equal(t, byte(0x07), term.Attr())
	x, y := term.Cursor()
	assert.Equal(t, 2, x)
	assert.Equal(t, 0, y)
}

func TestTerminal_echo(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)
	require.NoError(t, term.Echo('@', 'X', '1', 'F'))
	require.NoError(t, term.Echo('\b'))
	assert.Equal(t, "@X1F\b", out.String(), "echoed keys are not transcoded")
	x, _ := term.Cursor()
	assert.Equal(t, 3, x)
	assert.Equal(t, byte(0), term.Attr())
}
