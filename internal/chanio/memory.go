package chanio

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Memory serves channels from named in-memory blobs. File names are case
// insensitive and drive prefixes are ignored.
type Memory struct {
	mu    sync.Mutex
	blobs map[string]*blob

	flags
	chans [Channels]memChannel
}

type blob struct {
	data    []byte
	modTime time.Time
}

type memChannel struct {
	name      string
	pos       int
	am        int
	open      bool
	appending bool
}

// NewMemory creates a provider holding the given files.
func NewMemory(files map[string]string) *Memory {
	m := &Memory{blobs: make(map[string]*blob, len(files))}
	for name, data := range files {
		m.put(name, []byte(data))
	}
	return m
}

func memKey(name string) string { return strings.ToUpper(CleanName(name)) }

func (m *Memory) put(name string, data []byte) {
	if m.blobs == nil {
		m.blobs = make(map[string]*blob)
	}
	m.blobs[memKey(name)] = &blob{data: data, modTime: time.Now()}
}

// File returns the content of a named blob.
func (m *Memory) File(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[memKey(name)]
	if !ok {
		return "", false
	}
	return string(b.data), true
}

// Open opens an existing blob.
func (m *Memory) Open(ch int, name string, am, sm int) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[memKey(name)]; !ok {
		m.chans[ch] = memChannel{}
		m.flags[ch] = true
		return nil
	}
	m.chans[ch] = memChannel{name: memKey(name), am: am, open: true}
	m.flags[ch] = false
	return nil
}

// Create creates or empties a blob.
func (m *Memory) Create(ch int, name string, am, sm int) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(name, nil)
	if am != ModeReadWrite {
		am = ModeWrite
	}
	m.chans[ch] = memChannel{name: memKey(name), am: am, open: true}
	m.flags[ch] = false
	return nil
}

// Append opens a blob for writing at its end, creating it if needed.
func (m *Memory) Append(ch int, name string, am, sm int) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[memKey(name)]
	if !ok {
		m.put(name, nil)
		b = m.blobs[memKey(name)]
	}
	m.chans[ch] = memChannel{name: memKey(name), am: ModeWrite, pos: len(b.data), open: true, appending: true}
	m.flags[ch] = false
	return nil
}

// Close closes a channel and clears its error flag.
func (m *Memory) Close(ch int) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chans[ch] = memChannel{}
	m.flags[ch] = false
	return nil
}

// Put writes text at the channel's position, overwriting what is there like
// a file would; channels opened by Append always write at the end.
func (m *Memory) Put(ch int, text string) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mc := &m.chans[ch]
	b := m.blobs[mc.name]
	if !mc.open || mc.am == ModeRead || b == nil {
		m.flags[ch] = true
		return nil
	}
	at := mc.pos
	if mc.appending || at > len(b.data) {
		at = len(b.data)
	}
	if end := at + len(text); end > len(b.data) {
		b.data = append(b.data[:at], text...)
	} else {
		copy(b.data[at:], text)
	}
	b.modTime = time.Now()
	mc.pos = at + len(text)
	m.flags[ch] = false
	return nil
}

// GetLine reads up to the next line feed, dropping the line ending.
func (m *Memory) GetLine(ch int) (string, error) {
	if err := CheckChannel(ch); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mc := &m.chans[ch]
	b := m.blobs[mc.name]
	if !mc.open || mc.am == ModeWrite || b == nil || mc.pos >= len(b.data) {
		m.flags[ch] = true
		return "", nil
	}
	rest := b.data[mc.pos:]
	line := rest
	if i := strings.IndexByte(string(rest), '\n'); i >= 0 {
		line = rest[:i]
		mc.pos += i + 1
	} else {
		mc.pos = len(b.data)
	}
	m.flags[ch] = false
	return strings.TrimRight(string(line), "\r"), nil
}

// Rewind moves the channel back to the start of its blob.
func (m *Memory) Rewind(ch int) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mc := &m.chans[ch]
	if !mc.open {
		m.flags[ch] = true
		return nil
	}
	mc.pos = 0
	m.flags[ch] = false
	return nil
}

func (m *Memory) Exists(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.blobs[memKey(name)]
	return ok
}

func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := memKey(name)
	if _, ok := m.blobs[key]; !ok {
		return notExist("delete", name)
	}
	delete(m.blobs, key)
	return nil
}

func (m *Memory) Rename(from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[memKey(from)]
	if !ok {
		return notExist("rename", from)
	}
	delete(m.blobs, memKey(from))
	m.blobs[memKey(to)] = b
	return nil
}

func (m *Memory) Copy(from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[memKey(from)]
	if !ok {
		return notExist("copy", from)
	}
	m.put(to, append([]byte(nil), b.data...))
	return nil
}

func (m *Memory) Size(name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[memKey(name)]
	if !ok {
		return 0, notExist("stat", name)
	}
	return int64(len(b.data)), nil
}

func (m *Memory) ModTime(name string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[memKey(name)]
	if !ok {
		return time.Time{}, notExist("stat", name)
	}
	return b.modTime, nil
}

func (m *Memory) ReadFile(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[memKey(name)]
	if !ok {
		return nil, notExist("open", name)
	}
	return append([]byte(nil), b.data...), nil
}

func notExist(op, name string) error {
	return &os.PathError{Op: op, Path: name, Err: fmt.Errorf("memory file: %w", os.ErrNotExist)}
}
