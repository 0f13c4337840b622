package pipeline

import "errors"

var (
	ErrReport = errors.New("report error")
)
