package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jcorbin/ppedoor/internal/icy"
)

const (
	defaultListen      = "127.0.0.1:4321"
	defaultMaxNodes    = 4
	defaultReadTimeout = 600 * time.Second
)

// config is the door host configuration document.
type config struct {
	// Listen is the TCP address the door server accepts sessions on.
	Listen string `yaml:"listen"`

	// MaxNodes bounds concurrent sessions; each session occupies one node.
	MaxNodes int `yaml:"max_nodes"`

	// Root is the board directory that program file names resolve under.
	Root string `yaml:"root"`

	// Program is the program document run for every session.
	Program string `yaml:"program"`

	// ReadTimeout bounds how long a session waits for a line of input.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// Timeout bounds a whole program run; zero means no limit.
	Timeout time.Duration `yaml:"timeout"`

	// Capture, if set, names a directory that receives a copy of every
	// session's rendered output.
	Capture string `yaml:"capture"`

	// Board is the initial host session state: board, users, nodes, texts.
	Board icy.BoardData `yaml:"board_data"`
}

func defaultConfig() config {
	return config{
		Listen:      defaultListen,
		MaxNodes:    defaultMaxNodes,
		Root:        ".",
		ReadTimeout: defaultReadTimeout,
	}
}

// loadConfig reads a configuration document over the defaults; the result
// is not yet validated, so that flags may still override it.
func loadConfig(name string) (config, error) {
	cfg := defaultConfig()
	f, err := os.Open(name)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := cfg.decode(f); err != nil {
		return cfg, fmt.Errorf("%v: %w", name, err)
	}
	return cfg, nil
}

func (cfg *config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

var (
	errNoProgram = errors.New("no program configured")
	errNoNodes   = errors.New("max_nodes must be positive")
)

func (cfg *config) validate() error {
	if cfg.Program == "" {
		return errNoProgram
	}
	if cfg.MaxNodes <= 0 {
		return errNoNodes
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.Board.CurrentUser < 0 || (len(cfg.Board.Users) > 0 && cfg.Board.CurrentUser >= len(cfg.Board.Users)) {
		return fmt.Errorf("current_user %v out of range (have %v users)", cfg.Board.CurrentUser, len(cfg.Board.Users))
	}
	return nil
}
