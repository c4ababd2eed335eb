package melbank

import "math"

// Slaney 척도 상수. 27/ln(6.4)와 ln(6.4)/27.
const (
	slaneyBreakHz    = 1_000.0
	slaneyBreakMel   = 15.0
	slaneyLogStepInv = 14.545078505785561
	slaneyLogStep    = 0.06875177742094911
)

// https://en.wikipedia.org/wiki/Mel_scale

// MelScale은 HTK 멜 척도로 Hz를 멜로 바꾼다.
func MelScale(hz float64) float64 {
	return 1_127 * math.Log(1+hz/700)
}

// InverseMelScale은 HTK 멜 척도의 역변환이다.
func InverseMelScale(mel float64) float64 {
	return 700 * (math.Exp(mel/1_127) - 1)
}

// MelScaleSlaney는 librosa(Slaney) 멜 척도로 Hz를 멜로 바꾼다.
// 1000Hz 이하는 선형, 그 위는 로그 구간이다.
func MelScaleSlaney(hz float64) float64 {
	if hz <= slaneyBreakHz {
		return hz * 3 / 200
	}
	return slaneyBreakMel + slaneyLogStepInv*math.Log(hz/slaneyBreakHz)
}

// InverseMelScaleSlaney는 Slaney 멜 척도의 역변환이다.
func InverseMelScaleSlaney(mel float64) float64 {
	if mel <= slaneyBreakMel {
		return mel * 200 / 3
	}
	return slaneyBreakHz * math.Exp((mel-slaneyBreakMel)*slaneyLogStep)
}

// melScale은 빌더가 쓰는 한 쌍의 변환 함수다. 두 척도는 서로 섞어 쓰지 않는다.
type melScale struct {
	toMel func(float64) float64
	toHz  func(float64) float64
}

var (
	htkScale    = melScale{toMel: MelScale, toHz: InverseMelScale}
	slaneyScale = melScale{toMel: MelScaleSlaney, toHz: InverseMelScaleSlaney}
)
