// Package melbank는 선형 주파수 FFT 에너지를 멜 밴드 에너지로 묶는 삼각 필터뱅크를 만든다.
//
// 두 가지 멜 척도를 지원한다.
//
//   - HTK/Kaldi: mel = 1127 ln(1 + hz/700)
//   - Slaney/librosa: 1000Hz(15 mel) 아래는 선형, 위는 로그
//
// 필터는 VTLN 구간 선형 워핑을 거친 뒤 만들 수 있고, 각 필터는 0이 아닌
// 연속 구간(시작 빈 + 가중치)만 저장한다. FFT, 창 씌우기, 로그/DCT 단계는
// 이 패키지 밖의 일이다.
package melbank
