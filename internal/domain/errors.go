package domain

import "errors"

var (
	// ErrInvalidConfiguration marks settings that cannot make progress,
	// such as a chunk overlap that is not smaller than the chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrExtraction marks a file or page whose text could not be extracted.
	ErrExtraction = errors.New("text extraction failed")
	// ErrCorruptedRecord marks a persisted record that does not decode.
	ErrCorruptedRecord = errors.New("corrupted knowledge base record")
	// ErrPersistenceWrite marks a knowledge base change that is active in
	// memory but could not be written to disk.
	ErrPersistenceWrite = errors.New("knowledge base not persisted")
	ErrEmptyQuery       = errors.New("query is empty")
)
