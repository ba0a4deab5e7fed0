package main

import (
	"errors"
	"fmt"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/jcorbin/ppedoor/internal/icy"
)

// nodeTable is the node table shared by concurrent sessions, along with the
// live session on each node for broadcast delivery. Every change to an entry
// happens under that entry's Compute, so concurrent commits never interleave
// within a node.
type nodeTable struct {
	size     int
	nodes    *xsync.MapOf[int, icy.Node]
	sessions *xsync.MapOf[int, notifier]
}

var errNoSession = errors.New("no session")

// notifier delivers a message to a session's terminal.
type notifier interface {
	notify(message string) error
}

func newNodeTable(size int, initial []icy.Node) *nodeTable {
	nt := &nodeTable{
		size:     size,
		nodes:    xsync.NewMapOf[int, icy.Node](),
		sessions: xsync.NewMapOf[int, notifier](),
	}
	for i, node := range initial {
		if i >= size {
			break
		}
		if node.Status == icy.NodeInDoor {
			node = icy.Node{Status: icy.NodeAvailable}
		}
		nt.nodes.Store(i+1, node)
	}
	return nt
}

func available(node icy.Node) bool {
	return node.Status == "" || node.Status == icy.NodeAvailable
}

// claim takes the lowest available node, returning its 1-based number.
func (nt *nodeTable) claim() (int, bool) {
	for n := 1; n <= nt.size; n++ {
		claimed := false
		nt.nodes.Compute(n, func(old icy.Node, loaded bool) (icy.Node, bool) {
			if loaded && !available(old) {
				return old, false
			}
			claimed = true
			return icy.Node{Status: icy.NodeInDoor, Operation: "Logging in"}, false
		})
		if claimed {
			return n, true
		}
	}
	return 0, false
}

// seat records who is on node n.
func (nt *nodeTable) seat(n int, user *icy.User) {
	nt.nodes.Compute(n, func(old icy.Node, _ bool) (icy.Node, bool) {
		old.Name, old.City = user.Name, user.City
		old.Operation = "Running a door"
		return old, false
	})
}

// release returns node n to the available pool.
func (nt *nodeTable) release(n int) {
	nt.sessions.Delete(n)
	nt.nodes.Store(n, icy.Node{Status: icy.NodeAvailable})
}

// snapshot returns the whole table, unused nodes reading as available.
func (nt *nodeTable) snapshot() []icy.Node {
	nodes := make([]icy.Node, nt.size)
	for i := range nodes {
		if node, ok := nt.nodes.Load(i + 1); ok {
			nodes[i] = node
		} else {
			nodes[i] = icy.Node{Status: icy.NodeAvailable}
		}
	}
	return nodes
}

// commit applies every entry a run changed relative to the snapshot it
// started from. Entries the run left alone keep whatever other sessions have
// written meanwhile.
func (nt *nodeTable) commit(before, after []icy.Node) (changed int) {
	for i := 0; i < len(before) && i < len(after) && i < nt.size; i++ {
		if after[i] == before[i] {
			continue
		}
		node := after[i]
		nt.nodes.Compute(i+1, func(icy.Node, bool) (icy.Node, bool) { return node, false })
		changed++
	}
	return changed
}

func (nt *nodeTable) attach(n int, sess notifier) { nt.sessions.Store(n, sess) }

// deliver shows a broadcast message on node n's terminal.
func (nt *nodeTable) deliver(n int, message string) error {
	sess, ok := nt.sessions.Load(n)
	if !ok {
		return fmt.Errorf("node %v: %w", n, errNoSession)
	}
	return sess.notify(message)
}
