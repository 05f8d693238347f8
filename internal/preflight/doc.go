// Package preflight checks the directories subenc depends on before a phase
// touches any file.
//
// The detect and transcode commands call CheckRoot before discovery or
// manifest loading. A missing root is reported separately from other failures
// so the command can print its message and exit cleanly. "subenc config
// validate" runs RunAll and prints every result.
package preflight
