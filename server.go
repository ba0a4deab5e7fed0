package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/ppedoor/internal/ast"
	"github.com/jcorbin/ppedoor/internal/chanio"
	"github.com/jcorbin/ppedoor/internal/icy"
	"github.com/jcorbin/ppedoor/internal/logio"
	"github.com/jcorbin/ppedoor/internal/panicerr"
	"github.com/jcorbin/ppedoor/internal/ppe"
)

const (
	loginPrompt = "@X0FWhat is your name? @X07"
	loginTries  = 3
)

var (
	errNodesBusy   = errors.New("all nodes are busy")
	errUnknownUser = errors.New("unknown user")
)

// server runs the configured program for every connection, one node per
// session.
type server struct {
	cfg   config
	log   *logio.Logger
	trace bool
	now   func() time.Time

	progs *progCache
	nodes *nodeTable
	board *board
}

func newServer(cfg config, log *logio.Logger, trace bool) *server {
	return &server{
		cfg:   cfg,
		log:   log,
		trace: trace,
		now:   time.Now,
		progs: newProgCache(cfg.Program, log.Leveledf("INFO")),
		nodes: newNodeTable(cfg.MaxNodes, cfg.Board.Nodes),
		board: newBoard(&cfg.Board),
	}
}

// serve accepts sessions on ln until ctx is done. Session failures are
// logged; only listener and program watch failures end the server.
func (srv *server) serve(ctx context.Context, ln net.Listener) error {
	ln = netutil.LimitListener(ln, srv.cfg.MaxNodes)
	srv.log.Printf("INFO", "listening on %v with %v nodes", ln.Addr(), srv.cfg.MaxNodes)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	eg.Go(func() error {
		return srv.progs.watch(ctx, nil)
	})
	eg.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			eg.Go(func() error {
				srv.handle(ctx, conn)
				return nil
			})
		}
	})
	return eg.Wait()
}

func (srv *server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	n, ok := srv.nodes.claim()
	if !ok {
		srv.log.Printf("WARN", "refused %v: %v", conn.RemoteAddr(), errNodesBusy)
		fmt.Fprintf(conn, "%v\r\n", errNodesBusy)
		return
	}
	defer srv.nodes.release(n)

	logf := srv.log.Nodef("INFO", n)
	logf("connected from %v", conn.RemoteAddr())
	err := panicerr.Recover(fmt.Sprintf("node %v", n), func() error {
		return srv.session(ctx, conn, n)
	})
	if err != nil {
		srv.log.Nodef("ERROR", n)("%+v", err)
	}
	logf("disconnected")
}

// session runs the program for one connection: a key pump and the program
// run share an errgroup, and closing the socket once the run ends stops the
// pump.
func (srv *server) session(ctx context.Context, conn net.Conn, n int) error {
	prg, err := srv.progs.get()
	if err != nil {
		return err
	}

	var copies []io.Writer
	if srv.cfg.Capture != "" {
		f, err := srv.openCapture(n)
		if err != nil {
			srv.log.Nodef("WARN", n)("no capture: %v", err)
		} else {
			defer f.Close()
			copies = append(copies, f)
		}
	}

	eg, ctx := errgroup.WithContext(ctx)
	c := newConnection(ctx, conn, n, srv.cfg.ReadTimeout, copies...)
	c.hub = srv.nodes
	c.Terminal.SetLogf(srv.log.Nodef("NOTICE", n))
	if srv.trace {
		c.logf = srv.log.Nodef("TRACE", n)
	}
	if _, err := conn.Write(telnetCharMode); err != nil {
		return err
	}
	srv.nodes.attach(n, c)

	eg.Go(c.pump)
	eg.Go(func() error {
		defer conn.Close()
		user, err := srv.login(c)
		if err != nil {
			return err
		}
		return srv.run(ctx, c, prg, user, n)
	})
	return eg.Wait()
}

func (srv *server) openCapture(n int) (*os.File, error) {
	if err := os.MkdirAll(srv.cfg.Capture, 0o755); err != nil {
		return nil, err
	}
	name := fmt.Sprintf("node%v-%v.ans", n, srv.now().Format("20060102-150405"))
	return os.Create(filepath.Join(srv.cfg.Capture, name))
}

// login asks for a user name; a board without users runs every session
// without a current user.
func (srv *server) login(c *connection) (int, error) {
	if srv.board.users() == 0 {
		return -1, nil
	}
	for try := 0; try < loginTries; try++ {
		if err := c.Print(loginPrompt); err != nil {
			return -1, err
		}
		name, err := c.ReadLine()
		if err != nil {
			return -1, err
		}
		if i, ok := srv.board.findUser(name); ok {
			srv.nodes.seat(c.node, srv.board.user(i))
			return i, nil
		}
		if err := c.Print("@X0CNo such user.@X07\r\n"); err != nil {
			return -1, err
		}
	}
	return -1, errUnknownUser
}

// run executes prg for user on node n, then commits the user records and
// node entries the run changed.
func (srv *server) run(ctx context.Context, c *connection, prg *ast.Program, user, n int) error {
	if srv.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, srv.cfg.Timeout)
		defer cancel()
	}

	data := srv.board.session(user, n, srv.nodes.snapshot())
	disk := chanio.NewDisk(srv.cfg.Root)
	disk.Logf = srv.log.Nodef("FILE", n)
	defer disk.CloseAll()

	diag := &logio.Writer{Logf: srv.log.Nodef("SPRINT", n), Quote: true}
	defer diag.Close()
	opts := []ppe.Option{
		ppe.WithEventLog(srv.log.Nodef("LOG", n)),
		ppe.WithDiagnostics(diag),
	}
	if srv.trace {
		opts = append(opts, ppe.WithLogf(srv.log.Nodef("TRACE", n)))
	}

	it := ppe.New(prg, c, disk, data, opts...)
	err := it.Run(ctx)
	srv.commit(n, data, it.BoardData())
	if err != nil && srv.trace {
		dump := &logio.Writer{Logf: srv.log.Nodef("DUMP", n)}
		it.Dump(dump)
		dump.Close()
	}
	return err
}

func (srv *server) commit(n int, before, after *icy.BoardData) {
	users := srv.board.commit(before.Users, after.Users)
	nodes := srv.nodes.commit(before.Nodes, after.Nodes)
	if users > 0 || nodes > 0 {
		srv.log.Nodef("INFO", n)("committed %v user records, %v node entries", users, nodes)
	}
}
