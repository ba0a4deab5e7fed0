// Package chanio provides the eight file channels a program reads and writes
// through, backed either by a directory on disk or by in-memory blobs.
//
// Channel failures other than a bad channel number are not errors: they set
// the channel's error flag, which stays set until the next successful
// operation on that channel.
package chanio

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Channels is the number of file channels.
const Channels = 8

// Access modes accepted by Open.
const (
	ModeRead      = 0
	ModeWrite     = 1
	ModeReadWrite = 2
)

// Share modes; accepted and ignored.
const (
	ShareDenyNone  = 0
	ShareDenyRead  = 1
	ShareDenyWrite = 2
	ShareDenyBoth  = 3
)

// Provider is an eight channel file abstraction.
type Provider interface {
	Open(ch int, name string, am, sm int) error
	Create(ch int, name string, am, sm int) error
	Append(ch int, name string, am, sm int) error
	Close(ch int) error
	Err(ch int) bool
	Put(ch int, text string) error
	GetLine(ch int) (string, error)
	Rewind(ch int) error

	Exists(name string) bool
	Delete(name string) error
	Rename(from, to string) error
	Copy(from, to string) error
	Size(name string) (int64, error)
	ModTime(name string) (time.Time, error)
	ReadFile(name string) ([]byte, error)
}

// ChannelError reports a channel number outside 0..7.
type ChannelError int

func (ch ChannelError) Error() string {
	return fmt.Sprintf("file channel %v out of range 0..%v", int(ch), Channels-1)
}

// CheckChannel returns a ChannelError for a channel outside 0..7.
func CheckChannel(ch int) error {
	if ch < 0 || ch >= Channels {
		return ChannelError(ch)
	}
	return nil
}

// CleanName rewrites a legacy drive path like `C:\PCB\GEN\X.TXT` into a slash
// separated path relative to the board root. The result never climbs above
// the root.
func CleanName(name string) string {
	if len(name) >= 2 && name[1] == ':' {
		name = name[2:]
	}
	name = strings.ReplaceAll(name, `\`, "/")
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

type flags [Channels]bool

func (fl *flags) Err(ch int) bool {
	if ch < 0 || ch >= Channels {
		return true
	}
	return fl[ch]
}
