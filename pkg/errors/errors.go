package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNoConfig = errors.New("no config provided")
)

func ErrCouldNotParseConfig(err error) error {
	return fmt.Errorf("could not parse config: %w", err)
}
