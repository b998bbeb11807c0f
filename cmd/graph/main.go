/*
Copyright (C) 2023, 2024  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/dc0d/onexit"
	units "github.com/docker/go-units"
	"github.com/fsnotify/fsnotify"

	"github.com/mizuno-gsinet/inari-graph/internal/cache"
	"github.com/mizuno-gsinet/inari-graph/internal/compile"
	"github.com/mizuno-gsinet/inari-graph/internal/history"
	"github.com/mizuno-gsinet/inari-graph/internal/interval"
	"github.com/mizuno-gsinet/inari-graph/internal/parse"
	"github.com/mizuno-gsinet/inari-graph/internal/relprog"
	"github.com/mizuno-gsinet/inari-graph/internal/search"
	"github.com/mizuno-gsinet/inari-graph/internal/sink"
)

// exit codes, spec.md §6/§7.
const (
	exitOK           = 0
	exitCompileError = 1
	exitRuntimeError = 2
	exitCancelled    = 130
)

func main() {
	fmt.Print(`inari-graph Copyright (C) 2023, 2024   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

`)

	var (
		boundsStr     string
		sizeStr       string
		outPath       string
		memBudget     int64
		timeout       time.Duration
		polar         bool
		maxLevel      int
		watchPath     string
		serveAddr     string
		repl          bool
		historyDSN    string
		snapshotKind  string
		snapshotBase  string
		listFunctions bool
	)
	flag.StringVar(&boundsStr, "b", "-10 10 -10 10", "plot bounds \"x0 x1 y0 y1\"")
	flag.StringVar(&sizeStr, "s", "512 512", "pixel size \"W H\"")
	flag.StringVar(&outPath, "o", "", "PNG output path (batch mode)")
	flag.Int64Var(&memBudget, "mem", 0, "soft memory budget in bytes (0 = unbounded)")
	flag.DurationVar(&timeout, "timeout", 0, "wall-clock deadline (0 = unbounded)")
	flag.BoolVar(&polar, "polar", false, "hint that the relation is expressed in r, theta")
	flag.IntVar(&maxLevel, "max-level", 15, "maximum subdivision depth")
	flag.StringVar(&watchPath, "watch", "", "re-parse and re-plot whenever this file changes")
	flag.StringVar(&serveAddr, "serve", "", "serve a live view over HTTP+WebSocket at this address")
	flag.BoolVar(&repl, "repl", false, "interactive read-eval-plot loop")
	flag.StringVar(&historyDSN, "history", "", "mysql://... or postgres://... session ledger DSN")
	flag.StringVar(&snapshotKind, "snapshot-backend", "", "files|s3|ceph periodic checkpoint backend")
	flag.StringVar(&snapshotBase, "snapshot-path", "snapshots", "base path/bucket for the snapshot backend")
	flag.BoolVar(&listFunctions, "list-functions", false, "print the primitive function reference and exit")
	flag.Parse()

	if listFunctions {
		fmt.Print(interval.Help(""))
		os.Exit(exitOK)
	}

	var led *history.Ledger
	if historyDSN != "" {
		l, err := history.Open(context.Background(), historyDSN)
		if err != nil {
			fmt.Fprintln(os.Stderr, "history:", err)
			os.Exit(exitRuntimeError)
		}
		defer l.Close()
		onexit.Register(func() { l.Close() })
		led = l
	}

	snap := buildSnapshotBackend(snapshotKind, snapshotBase)
	if snap != nil {
		onexit.Register(func() { snap.Close() })
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := &program{
		bounds:   boundsStr,
		size:     sizeStr,
		out:      outPath,
		mem:      memBudget,
		timeout:  timeout,
		polar:    polar,
		maxLevel: maxLevel,
		serve:    serveAddr,
		led:      led,
		snap:     snap,
		cache:    cache.New(),
	}

	switch {
	case repl:
		p.runRepl(ctx)
		os.Exit(exitOK)
	case watchPath != "":
		p.runWatch(ctx, watchPath)
		os.Exit(exitOK)
	default:
		relation := flag.Arg(0)
		if relation == "" {
			fmt.Fprintln(os.Stderr, "usage: graph \"<relation>\" [flags]")
			os.Exit(exitCompileError)
		}
		os.Exit(p.runOnce(ctx, relation))
	}
}

func buildSnapshotBackend(kind, base string) sink.SnapshotBackend {
	switch kind {
	case "":
		return nil
	case "files":
		return sink.NewFilesSnapshotBackend(base)
	case "s3":
		return &sink.S3SnapshotBackend{Bucket: base}
	case "ceph":
		return &sink.CephSnapshotBackend{Pool: base}
	default:
		fmt.Fprintf(os.Stderr, "unknown --snapshot-backend %q (want files|s3|ceph)\n", kind)
		os.Exit(exitCompileError)
		return nil
	}
}

// program bundles the parsed flag values and shared services (cache,
// history ledger, snapshot backend) every entry mode (single-shot,
// --watch, --repl) drives a Session through.
type program struct {
	bounds, size, out string
	mem               int64
	timeout           time.Duration
	polar             bool
	maxLevel          int
	serve             string

	led   *history.Ledger
	snap  sink.SnapshotBackend
	cache *cache.Cache

	wsSink *sink.WebSocketSink
}

// compileRelation parses and compiles source, consulting the cache
// first so a REPL turn or a --watch re-trigger of unchanged text never
// pays for a second compile.
func (p *program) compileRelation(source string) (*relprog.Program, error) {
	if cached := p.cache.Get(source); cached != nil {
		return cached, nil
	}
	n, err := parse.Parse("cli", source)
	if err != nil {
		return nil, err
	}
	prog, err := compile.Compile(n)
	if err != nil {
		return nil, err
	}
	p.cache.Put(source, prog)
	return prog, nil
}

func (p *program) config(prog *relprog.Program) (search.Config, error) {
	var x0, x1, y0, y1 float64
	if _, err := fmt.Sscanf(p.bounds, "%g %g %g %g", &x0, &x1, &y0, &y1); err != nil {
		return search.Config{}, fmt.Errorf("bad -b bounds %q: %w", p.bounds, err)
	}
	var w, h int
	if _, err := fmt.Sscanf(p.size, "%d %d", &w, &h); err != nil {
		return search.Config{}, fmt.Errorf("bad -s size %q: %w", p.size, err)
	}

	var sinks []sink.Sink
	if p.out != "" {
		sinks = append(sinks, sink.NewFileSink(p.out))
	}
	if p.serve != "" {
		if p.wsSink == nil {
			p.wsSink = sink.NewWebSocketSink()
			p.startServer()
		}
		sinks = append(sinks, p.wsSink)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, sink.NopSink{})
	}

	return search.Config{
		Bounds:   [4]float64{x0, x1, y0, y1},
		Width:    w,
		Height:   h,
		Polar:    p.polar,
		MaxLevel: p.maxLevel,
		Deadline: p.timeout,
		Sink:     sink.MultiSink{Sinks: sinks},
		Snapshot: p.snap,
	}, nil
}

func (p *program) startServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", p.wsSink.ServeHTTP)
	server := &http.Server{
		Addr:           p.serve,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	go server.ListenAndServe()
	fmt.Printf("serving live view on ws://%s/ws\n", p.serve)
}

// runOnce plots one relation to completion (or cancellation via ctx)
// and returns the process exit code.
func (p *program) runOnce(ctx context.Context, relation string) int {
	prog, err := p.compileRelation(relation)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompileError
	}
	cfg, err := p.config(prog)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCompileError
	}

	s := search.Plot(prog, cfg)

	stopMemWatch := make(chan struct{})
	if p.mem > 0 {
		go p.watchMemBudget(s, stopMemWatch)
	}

	done := make(chan error, 1)
	go func() { done <- s.Wait() }()

	select {
	case <-ctx.Done():
		s.Cancel()
		<-done
		close(stopMemWatch)
		p.record(s, relation, cfg)
		return exitCancelled
	case err := <-done:
		close(stopMemWatch)
		p.record(s, relation, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err) // BudgetExceeded: non-fatal
		}
		return exitOK
	}
}

// watchMemBudget polls the process's own heap usage and cancels s once
// it crosses --mem, treating memory the same as --timeout: a
// BudgetExceeded stop, not an error. It exits once stop is closed by
// the owning runOnce, whether or not the budget was ever crossed.
func (p *program) watchMemBudget(s *search.Session, stop <-chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			var stats runtime.MemStats
			runtime.ReadMemStats(&stats)
			if int64(stats.Alloc) > p.mem {
				s.Cancel()
				return
			}
		}
	}
}

func (p *program) record(s *search.Session, relation string, cfg search.Config) {
	step := s.Step()
	fmt.Printf("%dx%d done in %s, %d undecided (%s)\n",
		cfg.Width, cfg.Height, step.Elapsed.Round(time.Millisecond),
		step.Undecided, units.HumanSize(estimateBytes(cfg)))
	if p.led == nil {
		return
	}
	rec := history.Record{
		SessionID:       s.ID,
		Relation:        relation,
		Bounds:          cfg.Bounds,
		Width:           cfg.Width,
		Height:          cfg.Height,
		Polar:           cfg.Polar,
		Elapsed:         step.Elapsed,
		UndecidedPixels: step.Undecided,
		FinishedAt:      time.Now(),
	}
	if err := p.led.Append(context.Background(), rec); err != nil {
		fmt.Fprintln(os.Stderr, "history:", err)
	}
}

// estimateBytes is a rough size of the published raster (4 bytes per
// pixel), for the go-units summary line only.
func estimateBytes(cfg search.Config) float64 {
	return float64(cfg.Width * cfg.Height * 4)
}

// runWatch re-parses and re-plots watchPath's content on every save,
// grounded on main.go's getWatch: read the file once synchronously,
// then rearm the watcher after every fire since some editors rename
// instead of overwriting.
func (p *program) runWatch(ctx context.Context, watchPath string) {
	reread := func() {
		data, err := os.ReadFile(watchPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "watch:", err)
			return
		}
		p.runOnce(ctx, string(data))
	}
	reread()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(os.Stderr, "watch:", err)
		os.Exit(exitRuntimeError)
	}
	defer watcher.Close()
	if err := watcher.Add(watchPath); err != nil {
		fmt.Fprintln(os.Stderr, "watch:", err)
		os.Exit(exitRuntimeError)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-watcher.Events:
			for {
				time.Sleep(10 * time.Millisecond)
				select {
				case <-watcher.Events:
				default:
					goto reread
				}
			}
		reread:
			func() {
				defer func() {
					if r := recover(); r != nil {
						fmt.Fprintln(os.Stderr, "watch: panic:", r)
					}
				}()
				reread()
			}()
			watcher.Add(watchPath) // editors rename-then-recreate
		}
	}
}

// runRepl compiles and plots one relation per line, grounded on
// scm/prompt.go's chzyer/readline REPL shape (same prompt characters,
// same anti-panic wrapper around each turn).
func (p *program) runRepl(ctx context.Context) {
	replLoop(p, ctx)
}
