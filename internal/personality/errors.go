package personality

import "errors"

var (
	// ErrNoValidAnswers rejects a submission in which every answer was discarded.
	ErrNoValidAnswers = errors.New("no valid answers")

	// ErrInsufficientCorpus means the bank cannot fill the requested
	// per-dichotomy count. It is a startup-time configuration error.
	ErrInsufficientCorpus = errors.New("question corpus too small")

	// ErrInvalidCorpus means the bank itself is malformed.
	ErrInvalidCorpus = errors.New("invalid question corpus")

	// ErrUnknownMode is returned by ParseMode.
	ErrUnknownMode = errors.New("unknown quiz mode")

	// ErrUnknownGranularity is returned by ParseGranularity.
	ErrUnknownGranularity = errors.New("unknown rotation granularity")
)
