package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/core"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/input"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro"
)

type headlessOptions struct {
	Core   string
	ROM    string
	Frames int
	Expect string // expected frame CRC32 in hex, with or without 0x
	State  string
	PNG    string
}

func (a *app) runHeadless(ctx context.Context, w io.Writer, o headlessOptions) error {
	if o.ROM == "" {
		return errors.New("--rom is required with --headless")
	}
	d, release, err := a.headlessCore(o)
	if err != nil {
		return err
	}
	defer release()
	return headless(ctx, w, d, a.sessionConfig(d, nil), o)
}

// headlessCore picks the core for a headless run. --core may be a path to
// a core library or the name of a core in the core directory; without it
// the first core accepting the ROM's extension is used.
func (a *app) headlessCore(o headlessOptions) (*core.Descriptor, func(), error) {
	if o.Core != "" && libretro.CheckName(o.Core) == nil {
		if _, err := os.Stat(o.Core); err == nil {
			m, err := libretro.Open(o.Core)
			if err != nil {
				return nil, nil, err
			}
			d, err := core.NewDescriptor(m.API(), o.Core, m)
			if err != nil {
				_ = m.Close()
				return nil, nil, err
			}
			m.SetLogger(a.log.With(zap.String("core", d.Name)))
			return d, func() { _ = m.Close() }, nil
		}
	}

	cores, err := a.loadCores()
	if err != nil {
		return nil, nil, err
	}
	release := func() { _ = cores.Close() }
	var d *core.Descriptor
	if o.Core != "" {
		d = cores.Find(o.Core)
		if d == nil {
			release()
			if s := cores.Suggest(o.Core); s != "" {
				return nil, nil, fmt.Errorf("core %q not found, did you mean %q?", o.Core, s)
			}
			return nil, nil, fmt.Errorf("core %q not found", o.Core)
		}
	} else if d = cores.ForFile(o.ROM); d == nil {
		release()
		return nil, nil, fmt.Errorf("no core accepts %s", o.ROM)
	}
	return d, release, nil
}

// headless runs o.Frames frames of o.ROM on d with no input and audio
// discarded, then reports the checksum of the last frame.
func headless(ctx context.Context, w io.Writer, d *core.Descriptor, sc core.SessionConfig, o headlessOptions) error {
	frames := o.Frames
	if frames <= 0 {
		frames = 1
	}

	s := core.NewSession(d, sc)
	if err := s.Start(o.ROM); err != nil {
		return err
	}
	defer func() {
		_ = s.Stop()
		_ = s.Close()
	}()

	start := time.Now()
	var in input.Snapshot
run:
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch err := s.RunFrame(in); {
		case errors.Is(err, core.ErrShutdown):
			break run
		case err != nil:
			return err
		}
	}
	dur := time.Since(start)

	crc := s.Frame().CRC32()
	fps := 0.0
	if dur > 0 {
		fps = float64(s.Frames()) / dur.Seconds()
	}
	fmt.Fprintf(w, "headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x\n",
		s.Frames(), dur.Truncate(time.Millisecond), fps, crc)

	if o.State != "" {
		if err := s.SaveState(o.State); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
		fmt.Fprintf(w, "wrote %s\n", o.State)
	}
	if o.PNG != "" {
		if err := s.Frame().SavePNG(o.PNG); err != nil {
			return fmt.Errorf("write PNG: %w", err)
		}
		fmt.Fprintf(w, "wrote %s\n", o.PNG)
	}
	if o.Expect != "" {
		want := strings.TrimPrefix(strings.ToLower(o.Expect), "0x")
		if got := fmt.Sprintf("%08x", crc); got != want {
			return fmt.Errorf("checksum mismatch: got %s, want %s", got, want)
		}
	}
	return nil
}
