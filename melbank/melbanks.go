package melbank

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MelBanks는 한 번 만들어진 뒤 바뀌지 않는 필터 묶음이다.
// Compute는 여러 고루틴에서 동기화 없이 동시에 호출해도 된다.
type MelBanks struct {
	filters     []Filter
	centerFreqs []float64
	numFFTBins  int

	htkCompat      bool
	htkEnergyFloor float64
}

// New는 설정과 프레임 모양, VTLN 워핑 계수로 멜 뱅크를 만든다.
// UseSlaneyScale에 따라 HTK 또는 librosa 방식 중 하나를 고른다.
func New(opts Options, frame FrameOptions, warpFactor float64) (*MelBanks, error) {
	filters, centers, err := buildFilters(opts, frame, warpFactor)
	if err != nil {
		return nil, err
	}

	m := &MelBanks{
		filters:        filters,
		centerFreqs:    centers,
		numFFTBins:     frame.NumFFTBins(),
		htkCompat:      opts.HTKCompat,
		htkEnergyFloor: opts.HTKEnergyFloor,
	}
	if opts.Debug {
		m.logFilters(opts.logger(), warpFactor)
	}
	return m, nil
}

// NewFromRows는 [numBins][numFFTBins] 가중치 행렬로 멜 뱅크를 만든다.
// 다른 툴체인에서 내보낸 필터뱅크와 맞춰 보기 위한 경로다.
func NewFromRows(rows [][]float64) (*MelBanks, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrPrecondition, "weight matrix has no rows")
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, errors.Wrap(ErrPrecondition, "weight matrix has no columns")
	}
	data := make([]float64, 0, len(rows)*cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, errors.Wrapf(ErrPrecondition, "row %d has %d columns, want %d", r, len(row), cols)
		}
		data = append(data, row...)
	}
	return NewFromMatrix(mat.NewDense(len(rows), cols, data))
}

// NewFromMatrix는 행마다 하나의 필터를 담은 행렬로 멜 뱅크를 만든다.
// 모든 가중치는 유한하고 0 이상이어야 한다. 전부 0인 행은 빈 필터가 된다.
func NewFromMatrix(weights mat.Matrix) (*MelBanks, error) {
	if weights == nil {
		return nil, errors.Wrap(ErrPrecondition, "weight matrix is nil")
	}
	numRows, numCols := weights.Dims()
	if numRows == 0 || numCols == 0 {
		return nil, errors.Wrapf(ErrPrecondition, "weight matrix is %dx%d", numRows, numCols)
	}

	filters := make([]Filter, numRows)
	for r := range filters {
		first, end := -1, -1
		for c := 0; c < numCols; c++ {
			w := weights.At(r, c)
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return nil, errors.Wrapf(ErrPrecondition, "weight at row %d, col %d is %g", r, c, w)
			}
			if w == 0 {
				continue
			}
			if first < 0 {
				first = c
			}
			end = c + 1
		}
		if first < 0 {
			filters[r] = Filter{}
			continue
		}
		row := make([]float64, end-first)
		for c := range row {
			row[c] = weights.At(r, first+c)
		}
		filters[r] = Filter{Offset: first, Weights: row}
	}

	return &MelBanks{
		filters:    filters,
		numFFTBins: numCols,
	}, nil
}

// NumBins는 멜 밴드 개수를 반환한다.
func (m *MelBanks) NumBins() int {
	if m == nil {
		return 0
	}
	return len(m.filters)
}

// NumFFTBins는 Compute가 기대하는 입력 길이를 반환한다.
func (m *MelBanks) NumFFTBins() int {
	if m == nil {
		return 0
	}
	return m.numFFTBins
}

// Filters는 필터 목록의 복사본을 반환한다.
func (m *MelBanks) Filters() []Filter {
	if m == nil {
		return nil
	}
	out := make([]Filter, len(m.filters))
	for i, f := range m.filters {
		out[i] = Filter{Offset: f.Offset, Weights: slices.Clone(f.Weights)}
	}
	return out
}

// CenterFreqs는 각 밴드의 중심 주파수(Hz)를 반환한다. 행렬로 만든 뱅크는 nil이다.
func (m *MelBanks) CenterFreqs() []float64 {
	if m == nil {
		return nil
	}
	return slices.Clone(m.centerFreqs)
}

// Dense는 [NumBins][NumFFTBins] 밀집 가중치 행렬을 반환한다.
func (m *MelBanks) Dense() *mat.Dense {
	dense := mat.NewDense(len(m.filters), m.numFFTBins, nil)
	for r, f := range m.filters {
		for j, w := range f.Weights {
			dense.Set(r, f.Offset+j, w)
		}
	}
	return dense
}

// Compute는 FFT 에너지(로그 아님)로 멜 에너지를 계산한다.
// fftEnergies의 길이는 NumFFTBins와 같아야 하며, 다르면 패닉한다.
func (m *MelBanks) Compute(fftEnergies []float64) []float64 {
	out := make([]float64, len(m.filters))
	m.ComputeInto(out, fftEnergies)
	return out
}

// ComputeInto는 Compute와 같지만 결과를 dst에 쓴다. dst 길이는 NumBins여야 한다.
func (m *MelBanks) ComputeInto(dst, fftEnergies []float64) {
	if len(fftEnergies) != m.numFFTBins {
		panic(fmt.Sprintf("melbank: fft energies have %d bins, want %d", len(fftEnergies), m.numFFTBins))
	}
	if len(dst) != len(m.filters) {
		panic(fmt.Sprintf("melbank: output has %d bins, want %d", len(dst), len(m.filters)))
	}

	for i, f := range m.filters {
		energy := 0.0
		if len(f.Weights) > 0 {
			energy = floats.Dot(f.Weights, fftEnergies[f.Offset:f.End()])
		}
		// HTK 방식의 에너지 하한. 비교 시험용이며 보통은 디더링을 쓴다.
		if m.htkCompat && energy < m.htkEnergyFloor {
			energy = m.htkEnergyFloor
		}
		dst[i] = energy
	}
}

func (m *MelBanks) logFilters(logger *slog.Logger, warpFactor float64) {
	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	for i, f := range m.filters {
		logger.LogAttrs(ctx, slog.LevelDebug, "mel bin",
			slog.Int("bin", i),
			slog.Float64("center_hz", m.centerFreqs[i]),
			slog.Float64("warp_factor", warpFactor),
			slog.Int("offset", f.Offset),
			slog.Any("weights", f.Weights),
		)
	}
}
