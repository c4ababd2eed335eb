package melbank

import (
	"math"
	"math/bits"
	"time"

	"github.com/go-audio/audio"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	defaultSampleRate     = 16_000
	defaultWindowDuration = 25 * time.Millisecond
)

// FrameOptions는 프레임 추출 단계가 넘겨주는 스펙트럼 모양을 나타낸다.
// 멜 뱅크는 여기서 나이퀴스트 주파수와 FFT 빈 개수만 얻는다.
type FrameOptions struct {
	SampleRate     float64
	WindowDuration time.Duration
	// FFTSize가 0보다 크면 창 길이 대신 그대로 FFT 크기로 쓴다.
	FFTSize           int
	RoundToPowerOfTwo bool
}

// DefaultFrameOptions는 16kHz, 25ms 창, 2의 거듭제곱 패딩(512점 FFT)을 반환한다.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{
		SampleRate:        defaultSampleRate,
		WindowDuration:    defaultWindowDuration,
		RoundToPowerOfTwo: true,
	}
}

// FrameOptionsFromFormat은 PCM 포맷의 샘플레이트로 FrameOptions를 만든다.
func FrameOptionsFromFormat(format *audio.Format, window time.Duration) (FrameOptions, error) {
	if format == nil {
		return FrameOptions{}, errors.New("audio format is nil")
	}
	if window <= 0 {
		window = defaultWindowDuration
	}
	frame := FrameOptions{
		SampleRate:        float64(format.SampleRate),
		WindowDuration:    window,
		RoundToPowerOfTwo: true,
	}
	if err := frame.Validate(); err != nil {
		return FrameOptions{}, err
	}
	return frame, nil
}

// WindowSize는 창 길이를 샘플 단위로 반환한다.
func (f FrameOptions) WindowSize() int {
	return int(math.Round(f.SampleRate * f.WindowDuration.Seconds()))
}

// PaddedWindowSize는 FFT에 들어가는 (패딩된) 프레임 길이다.
func (f FrameOptions) PaddedWindowSize() int {
	if f.FFTSize > 0 {
		return f.FFTSize
	}
	size := f.WindowSize()
	if f.RoundToPowerOfTwo {
		return nextPow2(size)
	}
	return size
}

// NumFFTBins는 단측 스펙트럼의 빈 개수(padded/2 + 1)다.
func (f FrameOptions) NumFFTBins() int {
	return f.PaddedWindowSize()/2 + 1
}

// Nyquist는 샘플레이트의 절반이다.
func (f FrameOptions) Nyquist() float64 {
	return 0.5 * f.SampleRate
}

// Validate는 스펙트럼 모양을 만들 수 없는 설정을 모두 모아 반환한다.
func (f FrameOptions) Validate() error {
	var err error
	if !(f.SampleRate > 0) || math.IsInf(f.SampleRate, 0) {
		err = multierr.Append(err, configError("sample_rate", f.SampleRate, "must be positive and finite"))
	}
	if f.FFTSize <= 0 && f.WindowDuration <= 0 {
		err = multierr.Append(err, configError("window_duration", f.WindowDuration.Seconds(), "must be positive when fft_size is unset"))
	}
	if err == nil {
		if padded := f.PaddedWindowSize(); padded < 2 {
			err = configErrorf("fft_size", float64(padded), "padded window must hold at least 2 samples")
		}
	}
	return err
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
