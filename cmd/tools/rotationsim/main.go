// Command rotationsim drives the testimonial carousel headless with
// accelerated timings and prints every render signal, to eyeball rotation
// order and pool reuse without a browser.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/zhouzirui/showcase/backend/internal/model/testimonial"
	"github.com/zhouzirui/showcase/backend/internal/service/rotation"
)

// printer renders carousel signals as text lines.
type printer struct {
	mu    sync.Mutex
	out   io.Writer
	start time.Time
}

func (p *printer) Render(slot int, item testimonial.Testimonial) {
	p.line("render  slot=%d %s (%d★)", slot, item.Name, item.Rating)
}

func (p *printer) TransitionStart(slot int) { p.line("fade-out slot=%d", slot) }
func (p *printer) TransitionEnd(slot int)   { p.line("fade-in  slot=%d", slot) }

func (p *printer) line(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%8s  ", time.Since(p.start).Truncate(time.Millisecond))
	fmt.Fprintf(p.out, format+"\n", args...)
}

func main() {
	seed := flag.Uint64("seed", 0, "shuffle seed (0 picks a random one)")
	rotations := flag.Int("rotations", 12, "stop after this many completed rotations")
	interval := flag.Duration("interval", 200*time.Millisecond, "auto-rotation period")
	fade := flag.Duration("fade", 40*time.Millisecond, "fade transition duration")
	manualEvery := flag.Duration("manual-every", 0, "also fire a manual next trigger at this period (0 disables)")
	contentFile := flag.StringP("content", "c", "", "YAML content file (defaults to the built-in testimonials)")
	verbose := flag.BoolP("verbose", "v", false, "log engine internals")
	flag.Parse()

	if err := run(*seed, *rotations, *interval, *fade, *manualEvery, *contentFile, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "rotationsim:", err)
		os.Exit(1)
	}
}

func run(seed uint64, rotations int, interval, fade, manualEvery time.Duration, contentFile string, verbose bool) error {
	content := testimonial.Seed()
	if contentFile != "" {
		var err error
		if content, err = testimonial.LoadFile(contentFile); err != nil {
			return err
		}
	}

	logger := zap.NewNop()
	if verbose {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
		defer logger.Sync()
	}

	opts := rotation.Options{
		Interval:     interval,
		FadeDuration: fade,
		Renderer:     &printer{out: os.Stdout, start: time.Now()},
		Logger:       logger,
	}
	if seed != 0 {
		opts.Rand = rotation.NewRand(seed)
	}

	engine, err := rotation.New(content, opts)
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine.Initialize()
	engine.StartAutoRotation()

	var manual <-chan time.Time
	if manualEvery > 0 {
		ticker := time.NewTicker(manualEvery)
		defer ticker.Stop()
		manual = ticker.C
	}

	pollEvery := fade / 2
	if pollEvery <= 0 {
		pollEvery = 10 * time.Millisecond
	}
	poll := time.NewTicker(pollEvery)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-manual:
			outcome := engine.Replace(rotation.DirectionNext)
			fmt.Printf("          manual next -> %s\n", outcome)
		case <-poll.C:
			state := engine.Snapshot()
			if state.Rotations >= rotations && state.Transitioning == -1 {
				fmt.Printf("done: %d rotations, visible=%v queue=%v\n",
					state.Rotations, names(state.Visible), names(state.Available))
				return nil
			}
		}
	}
}

func names(items []testimonial.Testimonial) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}
