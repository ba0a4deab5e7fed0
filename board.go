package main

import (
	"strings"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/jcorbin/ppedoor/internal/icy"
)

// board holds the host session state shared by every session: board
// configuration, display texts, and the user records that runs commit back.
type board struct {
	mu   *xsync.RBMutex
	data icy.BoardData
}

func newBoard(data *icy.BoardData) *board {
	b := &board{mu: xsync.NewRBMutex()}
	if data != nil {
		b.data = *data.Clone()
	}
	b.data.Nodes = nil
	return b
}

// findUser returns the index of the user with the given name or alias,
// compared without regard to case or surrounding space.
func (b *board) findUser(name string) (int, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1, false
	}
	t := b.mu.RLock()
	defer b.mu.RUnlock(t)
	for i, u := range b.data.Users {
		if strings.EqualFold(u.Name, name) || (u.Alias != "" && strings.EqualFold(u.Alias, name)) {
			return i, true
		}
	}
	return -1, false
}

func (b *board) users() int {
	t := b.mu.RLock()
	defer b.mu.RUnlock(t)
	return len(b.data.Users)
}

func (b *board) user(i int) *icy.User {
	t := b.mu.RLock()
	defer b.mu.RUnlock(t)
	u, err := b.data.User(i)
	if err != nil {
		return nil
	}
	dup := *u
	return &dup
}

// session returns a copy of the board data for a run by user on node.
func (b *board) session(user, node int, nodes []icy.Node) *icy.BoardData {
	t := b.mu.RLock()
	data := b.data.Clone()
	b.mu.RUnlock(t)
	data.CurrentUser = user
	data.Board.Node = node
	data.Nodes = nodes
	return data
}

// commit stores every user record a run changed relative to the copy it
// started from.
func (b *board) commit(before, after []icy.User) (changed int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := 0; i < len(before) && i < len(after) && i < len(b.data.Users); i++ {
		if after[i] != before[i] {
			b.data.Users[i] = after[i]
			changed++
		}
	}
	return changed
}
