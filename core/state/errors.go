package state

import "errors"

var (
	errInvalidParticipant = errors.New("state: participant record missing sequence id")
	errInvalidPosition    = errors.New("state: staking position missing id")
)
