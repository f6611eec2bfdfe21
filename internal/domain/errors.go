package domain

import "errors"

var (
	// ErrInvalidInput is returned when an upload is empty or is not a CSV file.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPayloadTooLarge is returned when an upload exceeds the configured size limit.
	ErrPayloadTooLarge = errors.New("file size exceeds limit")

	// ErrMalformedInput is returned when the uploaded file has no usable header line.
	ErrMalformedInput = errors.New("csv file missing header")

	// ErrJobNotFound is returned when a job cannot be found by ID.
	ErrJobNotFound = errors.New("invalid file ID")

	// ErrArtifactMissing is returned when a completed job's output is gone from storage.
	ErrArtifactMissing = errors.New("processed file not found")

	// ErrNotReady is returned while a job is still pending.
	ErrNotReady = errors.New("file processing not completed yet")

	// ErrProcessingFailed is returned for jobs whose transformation failed.
	ErrProcessingFailed = errors.New("file processing failed")

	// ErrSchedulingFailure is returned when background work cannot be started.
	ErrSchedulingFailure = errors.New("failed to schedule file processing")

	// ErrJobExists is returned when a job ID is registered a second time.
	ErrJobExists = errors.New("job id already registered")

	// ErrInvalidTransition is returned when a job is moved out of a terminal state.
	ErrInvalidTransition = errors.New("invalid job state transition")
)

// ErrorKind is the closed set of failure classes surfaced at the boundary.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidInput
	KindPayloadTooLarge
	KindNotFound
	KindNotReady
	KindProcessingFailed
	KindSchedulingFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindNotFound:
		return "not_found"
	case KindNotReady:
		return "not_ready"
	case KindProcessingFailed:
		return "processing_failed"
	case KindSchedulingFailure:
		return "scheduling_failure"
	}
	return "internal"
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return KindPayloadTooLarge
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMalformedInput):
		return KindInvalidInput
	case errors.Is(err, ErrJobNotFound), errors.Is(err, ErrArtifactMissing):
		return KindNotFound
	case errors.Is(err, ErrNotReady):
		return KindNotReady
	case errors.Is(err, ErrProcessingFailed):
		return KindProcessingFailed
	case errors.Is(err, ErrSchedulingFailure):
		return KindSchedulingFailure
	}
	return KindInternal
}
