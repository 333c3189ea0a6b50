package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/kobzarvs/qbuffer/internal/buffer"
	"github.com/kobzarvs/qbuffer/internal/config"
	"github.com/kobzarvs/qbuffer/internal/logger"
	"github.com/kobzarvs/qbuffer/internal/session"
	"github.com/kobzarvs/qbuffer/internal/workspace"
)

// App is the top-level runtime for qbuffer: a line-oriented console over a
// workspace of buffers.
type App struct {
	args []string
	in   io.Reader
	out  io.Writer

	ws       *workspace.Workspace
	cur      *buffer.Buffer
	modified map[uuid.UUID]bool
	subs     map[uuid.UUID]*buffer.Subscription
}

func New(args []string) *App {
	return &App{args: args, in: os.Stdin, out: os.Stdout}
}

// WithIO replaces stdin and stdout.
func (a *App) WithIO(in io.Reader, out io.Writer) *App {
	a.in = in
	a.out = out
	return a
}

func (a *App) Run() error {
	debug := os.Getenv("QBUFFER_DEBUG") != ""
	var files []string
	for _, arg := range a.args {
		switch arg {
		case "-d", "--debug":
			debug = true
		default:
			files = append(files, arg)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logOpts := logger.Options{Debug: debug || cfg.Log.Debug, Path: cfg.Log.File, Append: cfg.Log.Append}
	if err := logger.Init(logOpts); err != nil {
		fmt.Fprintln(os.Stderr, "qbuffer: logging disabled:", err)
		logger.Use(nil)
	}
	defer logger.Close()

	langs, err := config.LoadLanguages()
	if err != nil {
		return err
	}

	opts := []workspace.Option{}
	if cwd, err := os.Getwd(); err == nil {
		opts = append(opts, workspace.WithRoot(cwd))
	}
	if cfg.Session.On() {
		path, err := session.DefaultPath()
		if err == nil {
			sm, err := session.NewManager(path, cfg.Session.AutosaveInterval.Duration)
			if err != nil {
				logger.Warn("session disabled", "path", path, "error", err)
			} else {
				opts = append(opts, workspace.WithSession(sm))
			}
		}
	}
	ws := workspace.New(cfg, langs, opts...)
	defer ws.Shutdown()
	a.attach(ws)

	if len(files) == 0 {
		for _, b := range ws.RestoreOpenFiles() {
			a.track(b)
			a.cur = b
		}
	}
	for _, path := range files {
		b, err := ws.Open(path)
		if err != nil {
			return err
		}
		a.track(b)
		a.cur = b
	}
	if a.cur == nil {
		a.cur = ws.Scratch()
		a.track(a.cur)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.loop(ctx)
}

func (a *App) attach(ws *workspace.Workspace) {
	a.ws = ws
	a.modified = make(map[uuid.UUID]bool)
	a.subs = make(map[uuid.UUID]*buffer.Subscription)
}

// track marks a buffer modified whenever its content changes.
func (a *App) track(b *buffer.Buffer) {
	if _, ok := a.subs[b.ID()]; ok {
		return
	}
	id := b.ID()
	a.subs[id] = b.Subscribe(buffer.AttrContent, func(buffer.Change) {
		a.modified[id] = true
	})
}

func (a *App) untrack(b *buffer.Buffer) {
	if sub, ok := a.subs[b.ID()]; ok {
		sub.Unsubscribe()
		delete(a.subs, b.ID())
	}
	delete(a.modified, b.ID())
}

// loop is the single goroutine that touches buffers. Input lines and
// watcher messages are both funneled into it.
func (a *App) loop(ctx context.Context) error {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(a.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- sc.Err()
		close(lines)
	}()

	a.prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-a.ws.Messages():
			if !ok {
				return nil
			}
			a.applyMessage(msg.Buffer, a.ws.Apply(msg))
		case line, ok := <-lines:
			if !ok {
				return <-errs
			}
			a.ws.Pump()
			if a.Exec(line) {
				return nil
			}
			a.prompt()
		}
	}
}

func (a *App) applyMessage(id uuid.UUID, r buffer.Reconciled) {
	b := a.ws.Lookup(id)
	if b == nil {
		return
	}
	switch r {
	case buffer.Reloaded:
		a.modified[id] = false
		a.printf("%s reloaded from disk\n", b.Name())
	case buffer.Disabled:
		a.printf("%s is no longer watched\n", b.Name())
	}
}

func (a *App) prompt() {
	if a.cur == nil {
		a.printf("> ")
		return
	}
	a.printf("%s:%d> ", a.cur.Name(), a.cur.LineNumber())
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
