package raffle

import (
	"fmt"

	"github.com/questx-lab/raffle/pkg/enum"
)

type State int

var (
	Open        = enum.New(State(0), "OPEN")
	Calculating = enum.New(State(1), "CALCULATING")
)

func (s State) String() string {
	return enum.ToString(s)
}

func (s State) MarshalText() ([]byte, error) {
	name := enum.ToString(s)
	if name == "" {
		return nil, fmt.Errorf("invalid raffle state %d", int(s))
	}

	return []byte(name), nil
}

func (s *State) UnmarshalText(b []byte) error {
	v, err := enum.ToEnum[State](string(b))
	if err != nil {
		return err
	}

	*s = v
	return nil
}
