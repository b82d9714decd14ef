// Package logging provides file-based structured logging with rotation for
// wordex. Logs are JSON lines written to ~/.wordex/logs/wordex.log and can
// be read back with the Viewer behind `wordex logs`.
//
// Interactive sessions log to the file only so that diagnostics never
// interleave with query output.
package logging
