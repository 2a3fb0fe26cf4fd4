package extract

import "errors"

var (
	// ErrInvalidArchive indicates the upload could not be opened as a zip archive.
	ErrInvalidArchive = errors.New("invalid zip archive")
	// ErrArchiveTooLarge indicates an archive decompresses past its size budget.
	ErrArchiveTooLarge = errors.New("archive expands beyond size limit")
	// ErrInvalidEncoding indicates a text upload is not valid UTF-8.
	ErrInvalidEncoding = errors.New("text is not valid UTF-8")
)
