package melbank

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

const (
	minNumBins = 3

	defaultNumBins        = 25
	defaultLowFreq        = 20.0
	defaultVtlnLow        = 100.0
	defaultVtlnHigh       = -500.0
	defaultHTKEnergyFloor = 1.0
)

// Options는 멜 필터뱅크 구성을 담는다.
// HighFreq가 0 이하이면 나이퀴스트에 더한 값을, VtlnHigh가 음수이면 마찬가지로 나이퀴스트에 더한 값을 쓴다.
type Options struct {
	NumBins  int     `yaml:"num_bins"`
	LowFreq  float64 `yaml:"low_freq"`
	HighFreq float64 `yaml:"high_freq"`
	VtlnLow  float64 `yaml:"vtln_low"`
	VtlnHigh float64 `yaml:"vtln_high"`

	// UseSlaneyScale이면 librosa 호환(Slaney) 방식으로 필터를 만든다.
	UseSlaneyScale bool `yaml:"use_slaney_scale"`
	// SlaneyNorm은 Slaney 방식에서만 쓰이며, 각 삼각형의 면적을 1로 맞춘다.
	SlaneyNorm bool `yaml:"slaney_norm"`

	// MelDomainTriangles이면 HTK 방식에서 삼각형을 Hz 축 대신 멜 축에서 평가한다(Kaldi 동작).
	MelDomainTriangles bool `yaml:"mel_domain_triangles"`

	// HTKCompat은 HTK와의 비교 시험용 모드다. 첫 필터의 첫 가중치를 버리고
	// 밴드 에너지를 HTKEnergyFloor 아래로 내려가지 않게 한다.
	HTKCompat      bool    `yaml:"htk_compat"`
	HTKEnergyFloor float64 `yaml:"htk_energy_floor"`

	// Debug이면 생성된 필터를 Logger에 debug 레벨로 남긴다.
	Debug  bool         `yaml:"debug"`
	Logger *slog.Logger `yaml:"-"`
}

// DefaultOptions는 Kaldi 기본값과 같은 설정을 반환한다.
func DefaultOptions() Options {
	return Options{
		NumBins:        defaultNumBins,
		LowFreq:        defaultLowFreq,
		HighFreq:       0,
		VtlnLow:        defaultVtlnLow,
		VtlnHigh:       defaultVtlnHigh,
		SlaneyNorm:     true,
		HTKEnergyFloor: defaultHTKEnergyFloor,
	}
}

// ParseOptions는 YAML 문서를 기본값 위에 덮어써서 Options를 만든다.
func ParseOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, errors.Wrap(err, "decode mel bank options failed")
	}
	return opts, nil
}

func (o Options) String() string {
	out, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Sprintf("num_bins: %d\nlow_freq: %g\nhigh_freq: %g\n", o.NumBins, o.LowFreq, o.HighFreq)
	}
	return string(out)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// band는 나이퀴스트 기준으로 해석을 끝낸 주파수 경계다.
type band struct {
	low, high         float64
	vtlnLow, vtlnHigh float64
}

func (o Options) resolveBand(nyquist float64) band {
	b := band{
		low:      o.LowFreq,
		high:     o.HighFreq,
		vtlnLow:  o.VtlnLow,
		vtlnHigh: o.VtlnHigh,
	}
	if b.high <= 0 {
		b.high += nyquist
	}
	if b.vtlnHigh < 0 {
		b.vtlnHigh += nyquist
	}
	return b
}

// Validate는 frame과 warpFactor에 대해 설정 문제를 모두 모아 반환한다.
// VTLN 경계는 warpFactor가 1이 아닐 때만 검사한다.
func (o Options) Validate(frame FrameOptions, warpFactor float64) error {
	if err := frame.Validate(); err != nil {
		return err
	}

	var err error
	if o.NumBins < minNumBins {
		err = multierr.Append(err, configErrorf("num_bins", float64(o.NumBins), "must have at least %d mel bins", minNumBins))
	}
	if !(warpFactor > 0) || math.IsInf(warpFactor, 0) {
		err = multierr.Append(err, configError("vtln_warp_factor", warpFactor, "must be positive and finite"))
	}
	if o.HTKCompat && o.HTKEnergyFloor < 0 {
		err = multierr.Append(err, configError("htk_energy_floor", o.HTKEnergyFloor, "must not be negative"))
	}

	nyquist := frame.Nyquist()
	b := o.resolveBand(nyquist)
	if b.low < 0 || b.low >= nyquist {
		err = multierr.Append(err, configErrorf("low_freq", b.low, "must be in [0, %g)", nyquist))
	}
	if b.high <= 0 || b.high > nyquist {
		err = multierr.Append(err, configErrorf("high_freq", b.high, "resolved cutoff must be in (0, %g]", nyquist))
	}
	if b.high <= b.low {
		err = multierr.Append(err, configErrorf("high_freq", b.high, "must be above low_freq %g", b.low))
	}

	if warpFactor != 1 && err == nil {
		err = multierr.Append(err, b.validateVtln())
	}
	return err
}

func (b band) validateVtln() error {
	var err error
	if b.vtlnLow < 0 || b.vtlnLow <= b.low || b.vtlnLow >= b.high {
		err = multierr.Append(err, configErrorf("vtln_low", b.vtlnLow, "must be inside (%g, %g)", b.low, b.high))
	}
	if b.vtlnHigh <= 0 || b.vtlnHigh >= b.high || b.vtlnHigh <= b.vtlnLow {
		err = multierr.Append(err, configErrorf("vtln_high", b.vtlnHigh, "must be inside (%g, %g)", math.Max(b.low, b.vtlnLow), b.high))
	}
	return err
}
