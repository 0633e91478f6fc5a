package room

import "errors"

// All coordinator errors are request-local and synchronous; the core never
// retries on its own.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrNameConflict       = errors.New("name already taken")
	ErrUnknownParticipant = errors.New("user not in room")
	ErrPermissionDenied   = errors.New("host permission required")
	ErrNothingToReveal    = errors.New("no votes to reveal")
	ErrTargetAlreadyVoted = errors.New("target user has already voted")
	ErrRoundAlreadyOver   = errors.New("voting round is over")
	ErrInvalidRequest     = errors.New("invalid request")
)
