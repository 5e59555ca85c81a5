package bot

import (
	"errors"
	"fmt"
)

var errEmptyJoke = errors.New("bot: empty joke in response body")

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("bot: unexpected status %d from joke API", e.code)
}
