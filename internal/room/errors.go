package room

import "errors"

// Sentinel errors for every way an operation can fail. Handlers map these
// onto HTTP statuses in one place.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidSize       = errors.New("group size out of range")
	ErrInvalidChoice     = errors.New(`vote must be "in" or "out"`)
	ErrNotFound          = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrDuplicateName     = errors.New("someone with that name is already in the room")
	ErrAlreadyVoted      = errors.New("you have already voted")
	ErrVotingNotOpen     = errors.New("voting opens once everyone has joined")
	ErrInvalidCredential = errors.New("invalid token")
	ErrWrongMode         = errors.New("operation not available in this room mode")
	ErrCodeExhausted     = errors.New("could not allocate a unique room code")
	ErrInvariant         = errors.New("room state invariant violated")
)
