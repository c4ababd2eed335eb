package melbank

import (
	"math"

	"github.com/pkg/errors"
)

// vtlnWarper는 VTLN 구간 선형 워핑 함수다.
// 꺾이는 점 l, h 사이에서는 1/factor 배, 바깥 두 구간은 low, high에 고정된 직선이다.
type vtlnWarper struct {
	low, high  float64
	factor     float64
	l, h       float64
	scaleLeft  float64
	scaleRight float64
}

func newVtlnWarper(low, high, vtlnLow, vtlnHigh, factor float64) (*vtlnWarper, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return nil, configError("vtln_warp_factor", factor, "must be positive and finite")
	}
	if vtlnLow <= low {
		return nil, configErrorf("vtln_low", vtlnLow, "set vtln_low higher than low_freq %g", low)
	}
	if vtlnHigh >= high {
		return nil, configErrorf("vtln_high", vtlnHigh, "set vtln_high lower than high_freq %g (or negative)", high)
	}

	l := vtlnLow * math.Max(1, factor)
	h := vtlnHigh * math.Min(1, factor)
	if l <= low || l >= high {
		return nil, configErrorf("vtln_low", vtlnLow, "warped breakpoint %g falls outside (%g, %g)", l, low, high)
	}
	if h <= low || h >= high {
		return nil, configErrorf("vtln_high", vtlnHigh, "warped breakpoint %g falls outside (%g, %g)", h, low, high)
	}
	if h <= l {
		return nil, configErrorf("vtln_high", vtlnHigh, "warped breakpoint %g is not above %g", h, l)
	}

	fl := l / factor
	fh := h / factor
	return &vtlnWarper{
		low:        low,
		high:       high,
		factor:     factor,
		l:          l,
		h:          h,
		scaleLeft:  (fl - low) / (l - low),
		scaleRight: (high - fh) / (high - h),
	}, nil
}

func (w *vtlnWarper) warp(freq float64) float64 {
	if w.factor == 1 || freq < w.low || freq > w.high {
		return freq
	}
	switch {
	case freq < w.l:
		return w.low + w.scaleLeft*(freq-w.low)
	case freq < w.h:
		return freq / w.factor
	default:
		return w.high + w.scaleRight*(freq-w.high)
	}
}

// VtlnWarpFreq는 low~high 대역 안의 freq에 VTLN 워핑을 적용한다.
// warpFactor가 1이거나 freq가 대역 밖이면 그대로 돌려준다.
func VtlnWarpFreq(low, high, vtlnLow, vtlnHigh, warpFactor, freq float64) (float64, error) {
	if warpFactor == 1 || freq < low || freq > high {
		return freq, nil
	}
	w, err := newVtlnWarper(low, high, vtlnLow, vtlnHigh, warpFactor)
	if err != nil {
		return 0, err
	}
	return w.warp(freq), nil
}

// VtlnWarpMelFreq는 HTK 멜 값을 Hz로 되돌려 워핑한 뒤 다시 멜로 바꾼다.
func VtlnWarpMelFreq(low, high, vtlnLow, vtlnHigh, warpFactor, mel float64) (float64, error) {
	freq, err := VtlnWarpFreq(low, high, vtlnLow, vtlnHigh, warpFactor, InverseMelScale(mel))
	if err != nil {
		return 0, errors.Wrapf(err, "warp mel %g failed", mel)
	}
	return MelScale(freq), nil
}
