package dataset

import (
	"fmt"
	"strings"
)

// MissingInputError reports an absent session directory or input file.
type MissingInputError struct {
	What string
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing %s: %s", e.What, e.Path)
}

// MalformedFilenameError reports a measurement file whose name does not
// encode a run number and configuration.
type MalformedFilenameError struct {
	Name   string
	Reason string
}

func (e *MalformedFilenameError) Error() string {
	return fmt.Sprintf("malformed measurement filename %q: %s", e.Name, e.Reason)
}

// SchemaError reports a required column absent from a loaded table.
type SchemaError struct {
	File   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: required column %q not found", e.File, e.Column)
}

// DuplicateKeyError reports a table that holds the same run key more than once.
type DuplicateKeyError struct {
	File  string
	Key   RunKey
	Lines []int
}

func (e *DuplicateKeyError) Error() string {
	lines := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		lines = append(lines, fmt.Sprint(l))
	}
	return fmt.Sprintf("%s: duplicate %s on lines %s", e.File, e.Key, strings.Join(lines, ", "))
}
