package melbank

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestFrameOptions_PaddedWindowSize(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	tests := []struct {
		frame   FrameOptions
		window  int
		padded  int
		fftBins int
	}{
		{DefaultFrameOptions(), 400, 512, 257},
		{FrameOptions{SampleRate: 16_000, WindowDuration: 25 * time.Millisecond}, 400, 400, 201},
		{FrameOptions{SampleRate: 8_000, WindowDuration: 25 * time.Millisecond, RoundToPowerOfTwo: true}, 200, 256, 129},
		{FrameOptions{SampleRate: 44_100, WindowDuration: 25 * time.Millisecond, RoundToPowerOfTwo: true}, 1_103, 2_048, 1_025},
		{FrameOptions{SampleRate: 16_000, WindowDuration: 25 * time.Millisecond, FFTSize: 1_024}, 400, 1_024, 513},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%gHz_%d", tt.frame.SampleRate, tt.padded), func(t *testing.T) {
			assert.Equal(t, tt.window, tt.frame.WindowSize())
			assert.Equal(t, tt.padded, tt.frame.PaddedWindowSize())
			assert.Equal(t, tt.fftBins, tt.frame.NumFFTBins())
			assert.Equal(t, tt.frame.SampleRate/2, tt.frame.Nyquist())
			assert.NoError(t, tt.frame.Validate())
		})
	}
}

func TestFrameOptionsFromFormat(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	frame, err := FrameOptionsFromFormat(&audio.Format{NumChannels: 1, SampleRate: 8_000}, 0)
	require.NoError(t, err)
	assert.Equal(t, 8_000.0, frame.SampleRate)
	assert.Equal(t, defaultWindowDuration, frame.WindowDuration)
	assert.Equal(t, 256, frame.PaddedWindowSize())

	_, err = FrameOptionsFromFormat(nil, time.Millisecond)
	require.Error(t, err)

	_, err = FrameOptionsFromFormat(&audio.Format{NumChannels: 1}, 0)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestFrameOptions_ValidateRejectsDegenerateShape(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })

	tests := []struct {
		name  string
		frame FrameOptions
		want  string
	}{
		{"zero rate", FrameOptions{WindowDuration: time.Millisecond, FFTSize: 512}, "sample_rate"},
		{"no window", FrameOptions{SampleRate: 16_000}, "window_duration"},
		{"tiny window", FrameOptions{SampleRate: 16_000, WindowDuration: time.Microsecond}, "fft_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
			assert.Contains(t, err.Error(), tt.want)

			_, err = New(DefaultOptions(), tt.frame, 1.0)
			require.Error(t, err)
		})
	}
}
