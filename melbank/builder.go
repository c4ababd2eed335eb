package melbank

import (
	"gonum.org/v1/gonum/floats"
)

// Filter는 삼각 필터 하나의 0이 아닌 구간만 저장한다.
// Weights[j]는 FFT 빈 Offset+j의 가중치이며, 구간 밖 가중치는 모두 0이다.
type Filter struct {
	Offset  int
	Weights []float64
}

// End는 필터가 덮는 마지막 빈 다음 인덱스다.
func (f Filter) End() int {
	return f.Offset + len(f.Weights)
}

func buildFilters(opts Options, frame FrameOptions, warpFactor float64) ([]Filter, []float64, error) {
	if err := opts.Validate(frame, warpFactor); err != nil {
		return nil, nil, err
	}
	if opts.UseSlaneyScale {
		return buildSlaneyFilters(opts, frame, warpFactor)
	}
	return buildHTKFilters(opts, frame, warpFactor)
}

// buildHTKFilters는 Kaldi 호환 필터를 만든다.
func buildHTKFilters(opts Options, frame FrameOptions, warpFactor float64) ([]Filter, []float64, error) {
	b := opts.resolveBand(frame.Nyquist())
	edges, err := melEdgesHz(htkScale, b, opts.NumBins, warpFactor)
	if err != nil {
		return nil, nil, err
	}

	numFFTBins := frame.NumFFTBins()
	axis := fftBinFreqs(frame)
	if opts.MelDomainTriangles {
		for i := range axis {
			axis[i] = MelScale(axis[i])
		}
		for i := range edges {
			edges[i] = MelScale(edges[i])
		}
	}

	filters := make([]Filter, opts.NumBins)
	centers := make([]float64, opts.NumBins)
	for bin := range filters {
		left, center, right := edges[bin], edges[bin+1], edges[bin+2]
		filter, ok := sparseTriangle(axis, left, center, right, 1)
		if !ok {
			return nil, nil, configErrorf("num_bins", float64(opts.NumBins),
				"mel bin %d covers no fft bin out of %d; num_bins may be too large", bin, numFFTBins)
		}

		// HTK의 버그를 재현한다. 첫 필터의 첫 가중치를 0으로 두는 대신 구간에서 뺀다.
		if opts.HTKCompat && bin == 0 && MelScale(b.low) != 0 {
			filter.Offset++
			filter.Weights = filter.Weights[1:]
			if len(filter.Weights) == 0 {
				return nil, nil, configError("low_freq", b.low, "first mel bin is empty in htk compat mode")
			}
		}

		filters[bin] = filter
		centers[bin] = center
		if opts.MelDomainTriangles {
			centers[bin] = InverseMelScale(center)
		}
	}
	return filters, centers, nil
}

// buildSlaneyFilters는 librosa.filters.mel과 같은 필터를 만든다.
// 가장자리 주파수와 정확히 같은 빈은 0으로 둔다.
func buildSlaneyFilters(opts Options, frame FrameOptions, warpFactor float64) ([]Filter, []float64, error) {
	b := opts.resolveBand(frame.Nyquist())
	edges, err := melEdgesHz(slaneyScale, b, opts.NumBins, warpFactor)
	if err != nil {
		return nil, nil, err
	}

	numFFTBins := frame.NumFFTBins()
	axis := fftBinFreqs(frame)

	filters := make([]Filter, opts.NumBins)
	centers := make([]float64, opts.NumBins)
	for bin := range filters {
		left, center, right := edges[bin], edges[bin+1], edges[bin+2]
		scale := 1.0
		if opts.SlaneyNorm {
			scale = 2 / (right - left)
		}
		filter, ok := sparseTriangle(axis, left, center, right, scale)
		if !ok {
			return nil, nil, configErrorf("num_bins", float64(opts.NumBins),
				"mel bin %d covers no fft bin out of %d; num_bins may be too large", bin, numFFTBins)
		}
		filters[bin] = filter
		centers[bin] = center
	}
	return filters, centers, nil
}

// melEdgesHz는 멜 축에서 등간격인 numBins+2개 점을 Hz로 되돌리고, 필요하면 워핑한다.
func melEdgesHz(scale melScale, b band, numBins int, warpFactor float64) ([]float64, error) {
	edges := floats.Span(make([]float64, numBins+2), scale.toMel(b.low), scale.toMel(b.high))
	for i := range edges {
		edges[i] = scale.toHz(edges[i])
	}
	if warpFactor == 1 {
		return edges, nil
	}

	w, err := newVtlnWarper(b.low, b.high, b.vtlnLow, b.vtlnHigh, warpFactor)
	if err != nil {
		return nil, err
	}
	for i := range edges {
		edges[i] = w.warp(edges[i])
	}
	return edges, nil
}

// fftBinFreqs는 각 FFT 빈의 중심 주파수 i * nyquist / (numFFTBins-1)를 반환한다.
func fftBinFreqs(frame FrameOptions) []float64 {
	return floats.Span(make([]float64, frame.NumFFTBins()), 0, frame.Nyquist())
}

// sparseTriangle은 축 위에서 (left, right) 열린 구간에 놓인 삼각형을 평가하고
// 0이 아닌 연속 구간만 잘라 반환한다. axis는 오름차순이어야 한다.
func sparseTriangle(axis []float64, left, center, right, scale float64) (Filter, bool) {
	first, end := -1, -1
	for i, x := range axis {
		if x > left && x < right {
			if first < 0 {
				first = i
			}
			end = i + 1
		}
	}
	if first < 0 {
		return Filter{}, false
	}

	weights := make([]float64, end-first)
	for j := range weights {
		x := axis[first+j]
		if x <= center {
			weights[j] = (x - left) / (center - left)
		} else {
			weights[j] = (right - x) / (right - center)
		}
		weights[j] *= scale
	}
	return Filter{Offset: first, Weights: weights}, true
}
