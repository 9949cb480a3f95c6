// Package cmd defines the CLI interface. It relies heavily on the spf13/cobra
// package. The `help` message for each command uses backticks rather than
// quotes when refering to commands by name, even though it is cumbersome to
// maintain. Using backticks means we can get better formatting when auto
// generating markdown documentation from the command help messages.
package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	golog "github.com/ipfs/go-log"
)

var log = golog.Logger("cmd")

// ErrExit writes an error to the given io.Writer & exits.
func ErrExit(w io.Writer, err error) {
	log.Debug(err.Error())
	fmt.Fprintln(w, err.Error())
	os.Exit(1)
}

// ExitIfErr only calls ErrExit if there is an error present.
func ExitIfErr(w io.Writer, err error) {
	if err != nil {
		ErrExit(w, err)
	}
}

// GetWd is a convenience method to get the working directory or bail.
func GetWd() string {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Printf("Error getting working directory: %s", err.Error())
		os.Exit(1)
	}

	return dir
}

// loadFileIfPath opens path if it is non-empty, returning (nil, nil) when
// path is empty so callers can fall back to another reader (e.g. stdin).
func loadFileIfPath(path string) (file *os.File, err error) {
	if path == "" {
		return nil, nil
	}

	path, err = filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	return os.Open(path)
}
