package melbank

import (
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gonum.org/v1/gonum/floats"
)

func writeToneWav(t *testing.T, path string, sampleRate int, toneHz float64, numSamples int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	data := make([]int, numSamples)
	for i := range data {
		data[i] = int(math.Round(16_384 * math.Sin(2*math.Pi*toneHz*float64(i)/float64(sampleRate))))
	}

	const bitDepth = 16
	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Data: data,
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		SourceBitDepth: bitDepth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
}

func readWavBuffer(t *testing.T, path string) *audio.IntBuffer {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	require.NoError(t, err)
	return buf
}

// 1kHz 사인파를 WAV로 쓰고 다시 읽어 창 -> FFT -> 멜 뱅크를 거친다.
func TestPipeline_ToneLandsInCoveringBand(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	const (
		sampleRate = 16_000
		toneHz     = 1_000.0
	)
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeToneWav(t, path, sampleRate, toneHz, sampleRate/4)

	buf := readWavBuffer(t, path)
	frame, err := FrameOptionsFromFormat(buf.Format, 32*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 512, frame.PaddedWindowSize())

	size := frame.PaddedWindowSize()
	require.GreaterOrEqual(t, len(buf.Data), size)

	hann := window.Hann(size)
	samples := make([]float64, size)
	for i := range samples {
		samples[i] = float64(buf.Data[i]) / 32_768.0 * hann[i]
	}
	spectrum := fft.FFTReal(samples)

	power := make([]float64, frame.NumFFTBins())
	for i := range power {
		mag := cmplx.Abs(spectrum[i])
		power[i] = mag * mag
	}

	mb, err := New(DefaultOptions(), frame, 1.0)
	require.NoError(t, err)

	energies := mb.Compute(power)
	require.Len(t, energies, mb.NumBins())

	toneBin := int(toneHz * float64(size) / sampleRate)
	peak := floats.MaxIdx(energies)
	f := mb.Filters()[peak]
	assert.LessOrEqual(t, f.Offset, toneBin, "peak band %d", peak)
	assert.Greater(t, f.End(), toneBin, "peak band %d", peak)

	maxEnergy := energies[peak]
	assert.Less(t, energies[len(energies)-1], 1e-3*maxEnergy)
}
