package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/ppedoor/internal/icy"
	"github.com/jcorbin/ppedoor/internal/logio"
)

func testServer(t *testing.T, program string, data icy.BoardData) (*server, string) {
	root := t.TempDir()
	name := filepath.Join(root, "door.yaml")
	writeProgram(t, name, program)

	cfg := defaultConfig()
	cfg.MaxNodes = 2
	cfg.Root = root
	cfg.Program = name
	cfg.ReadTimeout = 5 * time.Second
	cfg.Board = data
	require.NoError(t, cfg.validate())

	var logs bytes.Buffer
	srv := newServer(cfg, logio.NewLogger(&logs), true)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
		if t.Failed() {
			t.Logf("server log:\n%s", logs.String())
		}
	})
	return srv, ln.Addr().String()
}

// dialSession sends input all at once and returns everything the session
// wrote before hanging up.
func dialSession(t *testing.T, addr, input string) string {
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err = io.WriteString(conn, input)
	require.NoError(t, err)
	out, err := io.ReadAll(conn)
	require.NoError(t, err)
	return string(out)
}

func TestServer_session(t *testing.T) {
	srv, addr := testServer(t, lines(
		`main:`,
		`  - call: {name: INPUT, args: ["Comment", {var: C}]}`,
		`  - call: GETUSER`,
		`  - let: {var: U_CMNT1, value: {var: C}}`,
		`  - call: PUTUSER`,
		`  - call: {name: FCREATE, args: [1, notes.txt, {var: O_WR}, {var: S_DN}]}`,
		`  - call: {name: FPUTLN, args: [1, {var: C}]}`,
		`  - call: {name: FCLOSE, args: [1]}`,
		`  - call: {name: WRUNET, args: [2, O, "", "", down, ""]}`,
		`  - call: {name: PRINTLN, args: ["bye ", {fn: U_NAME}]}`,
	), icy.BoardData{
		Board: icy.Board{Name: "Test BBS"},
		Users: []icy.User{
			{Name: "SYSOP", Security: 110},
			{Name: "BOB", City: "Shelbyville", Security: 20},
		},
	})

	out := dialSession(t, addr, "bob\r\nlooks good\r\n")
	assert.True(t, bytes.HasPrefix([]byte(out), telnetCharMode), "negotiates character mode")
	assert.Contains(t, out, "What is your name? ")
	assert.Contains(t, out, "bye BOB")

	assert.Equal(t, "looks good", srv.board.user(1).Comment)
	assert.Equal(t, "", srv.board.user(0).Comment)

	notes, err := os.ReadFile(filepath.Join(srv.cfg.Root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "looks good\r\n", string(notes))

	require.Eventually(t, func() bool {
		return srv.nodes.snapshot()[0].Status == icy.NodeAvailable
	}, time.Second, time.Millisecond, "node is released after the session")
	assert.Equal(t, icy.Node{Status: icy.NodeOffline, Operation: "down"}, srv.nodes.snapshot()[1])
}

func TestServer_unknownUser(t *testing.T) {
	srv, addr := testServer(t, `main: [{call: {name: PRINTLN, args: [welcome]}}]`, icy.BoardData{
		Users: []icy.User{{Name: "BOB"}},
	})

	out := dialSession(t, addr, "alice\rcarol\rdave\r")
	assert.Equal(t, 3, bytes.Count([]byte(out), []byte("No such user.")))
	assert.NotContains(t, out, "welcome")

	require.Eventually(t, func() bool {
		return srv.nodes.snapshot()[0].Status == icy.NodeAvailable
	}, time.Second, time.Millisecond)
}

func TestServer_noUsers(t *testing.T) {
	_, addr := testServer(t, `main: [{call: {name: PRINTLN, args: ["@X1Fhello"]}}]`, icy.BoardData{})
	out := dialSession(t, addr, "")
	assert.NotContains(t, out, "What is your name?")
	assert.Contains(t, out, "\x1b[0;1;37;44mhello")
}
