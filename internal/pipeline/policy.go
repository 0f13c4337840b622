package pipeline

import (
	"encoding/json"
	"fmt"
)

// What a failing stage does to the rest of the run.
type Policy int

const (
	Abort    Policy = iota // Stop the run.
	Continue               // Record the failure and run the next stage.
)

func (p Policy) String() string {
	switch p {
	case Abort:
		return "abort"
	case Continue:
		return "continue"
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// Implements [json.Marshaler].
func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}
