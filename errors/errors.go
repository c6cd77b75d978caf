package errors

import "fmt"

var (
	ErrHistoryUnavailable = fmt.Errorf("history unavailable")
	ErrWriteFailed        = fmt.Errorf("remote write failed")
	ErrGenerationFailed   = fmt.Errorf("reply generation failed")
	ErrEmptyReply         = fmt.Errorf("generator returned an empty reply")
	ErrFeedDropped        = fmt.Errorf("live feed dropped")
	ErrFeedUnavailable    = fmt.Errorf("live feed unavailable")
	ErrRoomUnknown        = fmt.Errorf("unknown room")
	ErrRoomInactive       = fmt.Errorf("room is not active")
	ErrInvalidProfile     = fmt.Errorf("invalid profile")
	ErrNoProfile          = fmt.Errorf("no profile saved")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)
