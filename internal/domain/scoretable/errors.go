package scoretable

import "errors"

// ErrInvalidCSV reports a score table CSV that cannot be read.
var ErrInvalidCSV = errors.New("invalid score table csv")
