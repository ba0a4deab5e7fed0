package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/jcorbin/ppedoor/internal/runeio"
	"github.com/jcorbin/ppedoor/internal/vt"
)

var errReadTimeout = errors.New("timed out waiting for input")

// Telnet IAC WILL ECHO, IAC WILL SUPPRESS-GO-AHEAD: the server echoes, and
// the client sends keys as they are typed.
var telnetCharMode = []byte{0xff, 0xfb, 0x01, 0xff, 0xfb, 0x03}

// connection is a remote terminal session on one node. A pump goroutine
// decodes keys from the socket into a queue; the program goroutine consumes
// them through ReadLine and GetChar.
type connection struct {
	*vt.Terminal

	conn    net.Conn
	node    int
	hub     *nodeTable
	timeout time.Duration
	logf    func(mess string, args ...interface{})

	ctx   context.Context
	mu    sync.Mutex
	queue []rune
	wake  chan struct{}
	err   error
}

func newConnection(ctx context.Context, conn net.Conn, node int, timeout time.Duration, copies ...io.Writer) *connection {
	return &connection{
		Terminal: vt.NewTerminal(conn, copies...),
		conn:     conn,
		node:     node,
		timeout:  timeout,
		ctx:      ctx,
		wake:     make(chan struct{}, 1),
	}
}

func (c *connection) tracef(mess string, args ...interface{}) {
	if c.logf != nil {
		c.logf(mess, args...)
	}
}

// pump reads keys until the socket fails or is closed, which ends any wait
// for input.
func (c *connection) pump() error {
	kr := runeio.NewKeyReader(c.conn)
	for {
		r, err := kr.ReadKey()
		if err != nil {
			c.hangup(err)
			if err == io.EOF || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			return err
		}
		if name := runeio.Name(r); name != "" {
			c.tracef("key %v", name)
		}
		c.push(r)
	}
}

func (c *connection) push(rs ...rune) {
	c.mu.Lock()
	c.queue = append(c.queue, rs...)
	c.mu.Unlock()
	c.signal()
}

func (c *connection) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *connection) hangup(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = fmt.Errorf("node %v hung up: %w", c.node, err)
	}
	c.mu.Unlock()
	c.signal()
}

// pop takes the next queued key, if any; after a hangup the queue drains
// before the hangup error is reported.
func (c *connection) pop() (r rune, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) > 0 {
		r = c.queue[0]
		c.queue = c.queue[1:]
		return r, true, nil
	}
	return 0, false, c.err
}

func (c *connection) wait(timeout <-chan time.Time) (rune, error) {
	for {
		if r, ok, err := c.pop(); ok || err != nil {
			return r, err
		}
		select {
		case <-c.wake:
		case <-timeout:
			return 0, errReadTimeout
		case <-c.ctx.Done():
			return 0, c.ctx.Err()
		}
	}
}

// ReadLine collects keys up to a CR or LF, echoing them and honoring
// backspace. It fails if no line ends within the read timeout.
func (c *connection) ReadLine() (string, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	var line []rune
	for {
		r, err := c.wait(timer.C)
		if err != nil {
			return "", err
		}
		switch {
		case r == '\r' || r == '\n':
			return string(line), c.Echo('\r', '\n')
		case r == '\b' || r == 0x7f:
			if len(line) == 0 {
				continue
			}
			line = line[:len(line)-1]
			err = c.Echo('\b', ' ', '\b')
		case r < ' ':
			continue
		default:
			line = append(line, r)
			err = c.Echo(r)
		}
		if err != nil {
			return "", err
		}
	}
}

// GetChar takes one queued key without waiting.
func (c *connection) GetChar() (rune, bool, error) { return c.pop() }

// InBytes returns the number of queued keys.
func (c *connection) InBytes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// SendToCom queues data as if the user had typed it.
func (c *connection) SendToCom(data string) error {
	c.push([]rune(data)...)
	return nil
}

// Broadcast shows message on another node's terminal; a message to a node
// nobody is on is dropped.
func (c *connection) Broadcast(node int, message string) error {
	if c.hub == nil {
		return fmt.Errorf("no node table to reach node %v", node)
	}
	err := c.hub.deliver(node, message)
	if errors.Is(err, errNoSession) {
		c.tracef("dropped broadcast: %v", err)
		return nil
	}
	return err
}

func (c *connection) notify(message string) error {
	return c.Print("\r\n" + message + "\r\n")
}
