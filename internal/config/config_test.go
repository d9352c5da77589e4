package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-magsonify/dsp/stretch"
	"github.com/cwbudde/algo-magsonify/mission"
)

func TestDefaultMatchesMissionDefaults(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())

	if diff := cmp.Diff(mission.DefaultConfig(), cfg.Mission()); diff != "" {
		t.Fatalf("mission config mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, MethodVocoder, cfg.Stretch.Method)
	assert.Equal(t, 16.0, cfg.Stretch.Factor)
	assert.Equal(t, 512, cfg.Stretch.FrameSize)
	assert.Equal(t, 16, cfg.Stretch.HopDivisor)
	assert.Equal(t, "hann", cfg.Stretch.Window)
	assert.True(t, *cfg.Stretch.PhaseLocking)
	assert.Equal(t, 44100, cfg.Audio.SampleRate)
	assert.Equal(t, "triangular", cfg.Audio.Dither)
}

func TestParseOverridesAndKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
pipeline:
  cadence: 1s
  remove_magnetosheath: true
stretch:
  method: wavelet
  factor: 8
  phase_locking: false
audio:
  sample_rate: 48000
  stereo: true
cache:
  path: /tmp/magsonify
log:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Pipeline.Cadence)
	assert.Equal(t, 35*time.Minute, cfg.Pipeline.MeanFieldWindow)
	assert.True(t, cfg.Mission().RemoveMagnetosheath)
	assert.Equal(t, MethodWavelet, cfg.Stretch.Method)
	assert.Equal(t, 8.0, cfg.Stretch.Factor)
	assert.False(t, *cfg.Stretch.PhaseLocking)
	assert.Equal(t, 0.5, cfg.Stretch.BandOverlap)
	assert.Equal(t, 48000, cfg.Audio.SampleRate)
	assert.True(t, cfg.Audio.Stereo)
	assert.Equal(t, "/tmp/magsonify", cfg.Cache.Path)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"method":  "stretch: {method: granular}",
		"window":  "stretch: {window: rectangle-ish}",
		"hop":     "stretch: {frame_size: 16, hop_divisor: 32}",
		"dither":  "audio: {dither: pink}",
		"peak":    "audio: {peak: 1.5}",
		"level":   "log: {level: chatty}",
		"format":  "log: {format: xml}",
		"garbage": "pipeline: [1, 2",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}

	_, err := Parse([]byte("stretch: {method: granular}"))
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magsonify.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stretch:\n  factor: 4\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4.0, cfg.Stretch.Factor)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestStretcherSelection(t *testing.T) {
	cfg := Default()

	s, err := cfg.Stretcher(nil)
	require.NoError(t, err)

	v, ok := s.(*stretch.PhaseVocoder)
	require.True(t, ok)
	assert.Equal(t, 512, v.FrameSize())

	ha, hs, err := v.Hops(16)
	require.NoError(t, err)
	assert.Equal(t, 2.0, ha)
	assert.Equal(t, 32.0, hs)

	cfg.Stretch.Method = MethodWavelet
	cfg.Stretch.BandOverlap = 0.25

	s, err = cfg.Stretcher(nil)
	require.NoError(t, err)

	w, ok := s.(*stretch.Wavelet)
	require.True(t, ok)
	assert.Equal(t, 0.25, w.Config().ScaleSpacing)

	cfg.Stretch.Method = MethodVocoder
	cfg.Stretch.FrameSize = 500

	_, err = cfg.Stretcher(nil)
	require.ErrorIs(t, err, stretch.ErrInvalidConfig)
}

func TestAudioOptions(t *testing.T) {
	opts, err := Default().AudioOptions()
	require.NoError(t, err)
	assert.Len(t, opts, 3)
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer

	logger, err := cfg.Logger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "probe", "D")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, `"msg":"shown"`))
	assert.Contains(t, out, `"probe":"D"`)
}
