package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/goforj/godump"

	"github.com/jcorbin/ppedoor/internal/logio"
	"github.com/jcorbin/ppedoor/internal/ppe"
	"github.com/jcorbin/ppedoor/internal/progfile"
)

func main() {
	ctx := context.Background()

	var (
		configName string
		local      bool
		listen     string
		program    string
		timeout    time.Duration
		trace      bool
		dumpConfig bool
		memio      bool
	)
	flag.StringVar(&configName, "config", "", "load host configuration from a YAML file")
	flag.BoolVar(&local, "local", false, "run the program once on this terminal instead of serving")
	flag.StringVar(&listen, "listen", "", "override the listen address")
	flag.StringVar(&program, "program", "", "override the program document to run")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit for each run")
	flag.BoolVar(&trace, "trace", false, "enable trace logging")
	flag.BoolVar(&dumpConfig, "dump-config", false, "print the effective configuration and exit")
	flag.BoolVar(&memio, "memio", false, "serve local file channels from memory instead of the board directory")
	flag.Parse()

	log := logio.NewLogger(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	cfg := defaultConfig()
	if configName != "" {
		var err error
		if cfg, err = loadConfig(configName); err != nil {
			log.Errorf("%v", err)
			return
		}
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if program != "" {
		cfg.Program = program
	} else if args := flag.Args(); len(args) > 0 {
		cfg.Program = args[0]
	}
	if timeout != 0 {
		cfg.Timeout = timeout
	}
	if err := cfg.validate(); err != nil {
		log.Errorf("invalid configuration: %v", err)
		return
	}
	if dumpConfig {
		godump.Dump(cfg)
		return
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if local {
		log.ErrorIf(runConsole(ctx, cfg, log, trace, memio))
		return
	}

	log.SetClock(time.Now)
	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	log.ErrorIf(newServer(cfg, log, trace).serve(ctx, ln))
}

func runConsole(ctx context.Context, cfg config, log *logio.Logger, trace, memio bool) error {
	prg, err := progfile.LoadFile(cfg.Program)
	if err != nil {
		return err
	}

	in, closeInput := localInput()
	defer closeInput()
	con := newConsole(in, os.Stdout)
	con.SetWidth(consoleWidth())
	con.SetLogf(log.Leveledf("NOTICE"))

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	diag := &logio.Writer{Logf: log.Leveledf("SPRINT"), Quote: true}
	defer diag.Close()
	opts := []ppe.Option{
		ppe.WithEventLog(log.Leveledf("LOG")),
		ppe.WithDiagnostics(diag),
	}
	if trace {
		opts = append(opts, ppe.WithLogf(log.Leveledf("TRACE")))
	}

	it, err := runLocal(ctx, prg, con, cfg, memio, opts...)
	if errors.Is(err, errInterrupted) {
		return nil
	}
	if err != nil && trace {
		it.Dump(os.Stderr)
	}
	if err == nil && trace {
		godump.Dump(it.BoardData().Users)
	}
	return err
}
