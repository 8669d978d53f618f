package tendril

import _ "embed"

// Version is the library version, embedded from the VERSION file. It may
// carry a trailing newline; trim before display.
//
//go:embed VERSION
var Version string
