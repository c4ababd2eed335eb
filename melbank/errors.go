package melbank

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrPrecondition은 외부에서 주입한 가중치 행렬이 계약을 어겼을 때 반환된다.
var ErrPrecondition = errors.New("mel bank precondition violated")

// ConfigError는 설정값이 잘못되었거나 서로 맞지 않을 때 생성 단계에서 반환된다.
// 같은 설정으로 재시도해도 결과는 바뀌지 않는다.
type ConfigError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid mel bank config: %s=%g: %s", e.Field, e.Value, e.Reason)
}

// IsConfigError는 err 체인에 ConfigError가 있는지 확인한다.
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}

func configError(field string, value float64, reason string) error {
	return errors.WithStack(&ConfigError{Field: field, Value: value, Reason: reason})
}

func configErrorf(field string, value float64, format string, args ...any) error {
	return configError(field, value, fmt.Sprintf(format, args...))
}
