package melbank

import "math"

// ComputeLifterCoeffs는 켑스트럼 계수에 곱할 리프터 계수를 order개 만든다.
// 0번(C0)은 영향을 받지 않는다. q가 0 이하이면 리프터를 끈 것으로 보고 모두 1을 반환한다.
func ComputeLifterCoeffs(q float64, order int) ([]float64, error) {
	if order < 1 {
		return nil, configErrorf("lifter_order", float64(order), "must be at least 1")
	}

	coeffs := make([]float64, order)
	coeffs[0] = 1
	for i := 1; i < order; i++ {
		if q <= 0 {
			coeffs[i] = 1
			continue
		}
		coeffs[i] = 1 + 0.5*q*math.Sin(math.Pi*float64(i)/q)
	}
	return coeffs, nil
}
