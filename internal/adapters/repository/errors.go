package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrEmptyImport  = errors.New("no score rows to import")
	ErrInvalidScore = errors.New("invalid score row")
)
