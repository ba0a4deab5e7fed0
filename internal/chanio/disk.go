package chanio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Disk serves channels from files under a root directory.
type Disk struct {
	Root string
	Logf func(mess string, args ...interface{})

	flags
	files [Channels]diskChannel
}

type diskChannel struct {
	f  *os.File
	rd *bufio.Reader
	am int
}

// NewDisk creates a provider rooted at dir.
func NewDisk(dir string) *Disk { return &Disk{Root: dir} }

// Resolve maps a program file name to a host path.
func (d *Disk) Resolve(name string) string {
	return filepath.Join(d.Root, filepath.FromSlash(CleanName(name)))
}

func (d *Disk) logf(mess string, args ...interface{}) {
	if d.Logf != nil {
		d.Logf(mess, args...)
	}
}

func (d *Disk) open(ch int, name string, am, flag int) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	d.closeFile(ch)
	p := d.Resolve(name)
	if flag&os.O_CREATE != 0 {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			d.logf("channel %v: %v", ch, err)
			d.flags[ch] = true
			return nil
		}
	}
	f, err := os.OpenFile(p, flag, 0o644)
	if err != nil {
		d.logf("channel %v: %v", ch, err)
		d.flags[ch] = true
		return nil
	}
	d.files[ch] = diskChannel{f: f, rd: bufio.NewReader(f), am: am}
	d.flags[ch] = false
	return nil
}

// Open opens an existing file.
func (d *Disk) Open(ch int, name string, am, sm int) error {
	flag := os.O_RDONLY
	switch am {
	case ModeWrite:
		flag = os.O_WRONLY
	case ModeReadWrite:
		flag = os.O_RDWR
	}
	return d.open(ch, name, am, flag)
}

// Create creates or truncates a file.
func (d *Disk) Create(ch int, name string, am, sm int) error {
	if am == ModeReadWrite {
		return d.open(ch, name, ModeReadWrite, os.O_CREATE|os.O_TRUNC|os.O_RDWR)
	}
	return d.open(ch, name, ModeWrite, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// Append opens a file for writing at its end, creating it if needed.
func (d *Disk) Append(ch int, name string, am, sm int) error {
	return d.open(ch, name, ModeWrite, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func (d *Disk) closeFile(ch int) {
	dc := d.files[ch]
	d.files[ch] = diskChannel{}
	if dc.f == nil {
		return
	}
	if err := dc.f.Close(); err != nil {
		d.logf("channel %v close: %v", ch, err)
	}
}

// Close closes a channel and clears its error flag.
func (d *Disk) Close(ch int) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	d.closeFile(ch)
	d.flags[ch] = false
	return nil
}

// Put writes text without a line ending.
func (d *Disk) Put(ch int, text string) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	dc := d.files[ch]
	if dc.f == nil || dc.am == ModeRead {
		d.flags[ch] = true
		return nil
	}
	_, err := dc.f.WriteString(text)
	d.flags[ch] = err != nil
	return nil
}

// GetLine reads the next line without its line ending; at end of file it
// returns "" and sets the error flag.
func (d *Disk) GetLine(ch int) (string, error) {
	if err := CheckChannel(ch); err != nil {
		return "", err
	}
	dc := d.files[ch]
	if dc.f == nil || dc.am == ModeWrite {
		d.flags[ch] = true
		return "", nil
	}
	line, err := dc.rd.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		d.flags[ch] = true
		return "", nil
	}
	d.flags[ch] = false
	return strings.TrimRight(line, "\r\n"), nil
}

// Rewind seeks back to the start of the file.
func (d *Disk) Rewind(ch int) error {
	if err := CheckChannel(ch); err != nil {
		return err
	}
	dc := d.files[ch]
	if dc.f == nil {
		d.flags[ch] = true
		return nil
	}
	_, err := dc.f.Seek(0, io.SeekStart)
	dc.rd.Reset(dc.f)
	d.flags[ch] = err != nil
	return nil
}

// CloseAll closes every channel.
func (d *Disk) CloseAll() {
	for ch := range d.files {
		d.closeFile(ch)
	}
}

func (d *Disk) Exists(name string) bool {
	_, err := os.Stat(d.Resolve(name))
	return err == nil
}

func (d *Disk) Delete(name string) error { return os.Remove(d.Resolve(name)) }

func (d *Disk) Rename(from, to string) error {
	return os.Rename(d.Resolve(from), d.Resolve(to))
}

func (d *Disk) Copy(from, to string) error {
	src, err := os.Open(d.Resolve(from))
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(d.Resolve(to))
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func (d *Disk) Size(name string) (int64, error) {
	info, err := os.Stat(d.Resolve(name))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (d *Disk) ModTime(name string) (time.Time, error) {
	info, err := os.Stat(d.Resolve(name))
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (d *Disk) ReadFile(name string) ([]byte, error) { return os.ReadFile(d.Resolve(name)) }
