package main

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FabianRolfMatthiasNoll/hjortron/internal/catalog"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/config"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/core"
	"github.com/FabianRolfMatthiasNoll/hjortron/internal/libretro/libretrotest"
)

func counterCore(t *testing.T) (*libretrotest.Counter, *core.Descriptor) {
	t.Helper()
	c := libretrotest.New()
	d, err := core.NewDescriptor(c.API(), "/cores/counter_libretro.so", nil)
	require.NoError(t, err)
	return c, d
}

func romFile(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "game.cnt")
	require.NoError(t, os.WriteFile(p, []byte("content"), 0o644))
	return p
}

// greyCRC is the checksum of a counter frame showing value v.
func greyCRC(v byte) uint32 {
	pix := make([]byte, libretrotest.Width*libretrotest.Height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 0xFF
	}
	return crc32.ChecksumIEEE(pix)
}

func TestHeadlessReportsChecksum(t *testing.T) {
	c, d := counterCore(t)
	var out bytes.Buffer
	err := headless(context.Background(), &out, d, core.SessionConfig{}, headlessOptions{
		ROM:    romFile(t),
		Frames: 10,
		Expect: fmt.Sprintf("0x%08X", greyCRC(10)),
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "frames=10")
	assert.Contains(t, out.String(), fmt.Sprintf("fb_crc32=%08x", greyCRC(10)))
	assert.Equal(t, uint64(10), c.Counter)
	assert.Equal(t, "deinit", c.CallLog()[len(c.CallLog())-1], "session is stopped after the run")
}

func TestHeadlessChecksumMismatch(t *testing.T) {
	_, d := counterCore(t)
	err := headless(context.Background(), &bytes.Buffer{}, d, core.SessionConfig{}, headlessOptions{
		ROM:    romFile(t),
		Frames: 3,
		Expect: "deadbeef",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestHeadlessAppliesCoreOptions(t *testing.T) {
	c, d := counterCore(t)
	sc := core.SessionConfig{Options: map[string]string{libretrotest.StepKey: "4"}}
	require.NoError(t, headless(context.Background(), &bytes.Buffer{}, d, sc, headlessOptions{ROM: romFile(t), Frames: 5}))
	assert.Equal(t, uint64(20), c.Counter)
}

func TestHeadlessWritesStateAndPNG(t *testing.T) {
	_, d := counterCore(t)
	dir := t.TempDir()
	o := headlessOptions{
		ROM:    romFile(t),
		Frames: 1,
		State:  filepath.Join(dir, "states", "run.state"),
		PNG:    filepath.Join(dir, "frame.png"),
	}
	var out bytes.Buffer
	require.NoError(t, headless(context.Background(), &out, d, core.SessionConfig{}, o))

	st, err := os.Stat(o.State)
	require.NoError(t, err)
	assert.EqualValues(t, 16, st.Size())
	_, err = os.Stat(o.PNG)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "wrote "+o.PNG)
}

func TestHeadlessStartFailure(t *testing.T) {
	c, d := counterCore(t)
	c.FailLoad = true
	err := headless(context.Background(), &bytes.Buffer{}, d, core.SessionConfig{}, headlessOptions{ROM: romFile(t)})
	assert.ErrorIs(t, err, core.ErrLoadFailed)
}

func TestHeadlessCancelled(t *testing.T) {
	_, d := counterCore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := headless(ctx, &bytes.Buffer{}, d, core.SessionConfig{}, headlessOptions{ROM: romFile(t), Frames: 5})
	assert.ErrorIs(t, err, context.Canceled)
}

func testApp(t *testing.T) *app {
	t.Helper()
	return &app{
		cfg: &config.Config{Directories: config.Directories{
			Cores:  t.TempDir(),
			System: "/srv/system",
			Saves:  "/srv/saves",
		}},
		log: zap.NewNop(),
	}
}

func TestLoadCoresRequiresOne(t *testing.T) {
	a := testApp(t)
	_, err := a.loadCores()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no libretro cores found")
}

func TestSessionConfig(t *testing.T) {
	a := testApp(t)
	_, d := counterCore(t)
	sc := a.sessionConfig(d, nil)
	assert.Equal(t, "/srv/system", sc.SystemDir)
	assert.Equal(t, "/srv/saves", sc.SaveDir)
	assert.Equal(t, filepath.Join("/srv/system", "assets"), sc.CoreAssetsDir)
	assert.Nil(t, sc.OpenAudio, "no device, no audio")
}

func TestRenderCores(t *testing.T) {
	_, d := counterCore(t)
	s := renderCores([]*core.Descriptor{d})
	for _, want := range []string{"NAME", libretrotest.Name, libretrotest.Version, "cnt bin", d.Path} {
		assert.Contains(t, s, want)
	}
}

func TestRenderScan(t *testing.T) {
	s := renderScan("/roms", catalog.ScanResult{Seen: 7, Added: 5, Identified: 3, Skipped: 2}, 9)
	assert.Contains(t, s, "/roms")
	assert.Contains(t, s, "identified")
	assert.Contains(t, s, "9")
}

func TestIdentFilesReportsUnknown(t *testing.T) {
	var out bytes.Buffer
	p := romFile(t)
	require.NoError(t, identFiles(&out, []string{p}))
	assert.Contains(t, out.String(), p+":")
	assert.Contains(t, out.String(), "no known header")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"run", "scan", "cores", "ident"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	run, _, _ := root.Find([]string{"run"})
	for _, flag := range []string{"headless", "core", "rom", "frames", "expect", "state", "outpng"} {
		assert.NotNil(t, run.Flags().Lookup(flag), flag)
	}
}
