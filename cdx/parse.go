// Package cdx tokenizes ingest lines - legacy CDX capture lines and
// "@alias" lines - into Capture and Alias records before they reach the
// record codec.
package cdx

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nla/cdxserver/canon"
	"github.com/nla/cdxserver/record"
)

// ErrBadLine is returned for a line that does not parse as legend, alias,
// or legacy CDX.
var ErrBadLine = fmt.Errorf("bad cdx line")

// legacy CDX field order: urlkey timestamp original mimetype statuscode
// digest redirect robotflags length offset filename.
const legacyFieldCount = 11

// ParseLine tokenizes one ingest line. It returns (capture, nil, nil) for a
// capture line, (nil, alias, nil) for an "@alias" line, and (nil, nil, nil)
// for a blank line or a " CDX" legend header, which are ignored rather than
// treated as records.
func ParseLine(line string) (*record.Capture, *record.Alias, error) {
	if line == "" || strings.HasPrefix(line, " CDX") {
		return nil, nil, nil
	}

	if strings.HasPrefix(line, "@alias ") {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, nil, fmt.Errorf("%w: malformed @alias line: %q", ErrBadLine, line)
		}
		aliasURL, targetURL := fields[1], fields[2]
		aliasSurt, err := canon.Canonicalize(aliasURL)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: alias url: %v", ErrBadLine, err)
		}
		targetSurt, err := canon.Canonicalize(targetURL)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: alias target: %v", ErrBadLine, err)
		}
		return nil, &record.Alias{AliasSurt: aliasSurt.SSURT(), TargetSurt: targetSurt.SSURT()}, nil
	}

	fields := strings.Fields(line)
	if len(fields) != legacyFieldCount {
		return nil, nil, fmt.Errorf("%w: expected %d fields, got %d: %q", ErrBadLine, legacyFieldCount, len(fields), line)
	}

	// fields[0] is the file's own urlkey, which this implementation
	// recomputes from the original URL rather than trusting, since the
	// source file's key may be legacy SURT rather than SSURT.
	timestamp, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad timestamp %q: %v", ErrBadLine, fields[1], err)
	}
	original := fields[2]
	u, err := canon.Canonicalize(original)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadLine, err)
	}

	status := 0
	if fields[4] != "-" {
		status, err = strconv.Atoi(fields[4])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: bad statuscode %q: %v", ErrBadLine, fields[4], err)
		}
	}
	length, err := parseUintOrDash(fields[8])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad length: %v", ErrBadLine, err)
	}
	offset, err := parseUintOrDash(fields[9])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad offset: %v", ErrBadLine, err)
	}

	return &record.Capture{
		UrlKey:      u.SSURT(),
		Timestamp:   timestamp,
		OriginalUrl: original,
		Status:      status,
		MimeType:    fields[3],
		Digest:      fields[5],
		RedirectUrl: fields[6],
		RobotFlags:  fields[7],
		Length:      length,
		Offset:      offset,
		File:        fields[10],
	}, nil, nil
}

func parseUintOrDash(s string) (uint64, error) {
	if s == "-" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}

// BadLineError names the 1-indexed line number a batch aborted on, used to
// give the 400 ingest response line context.
type BadLineError struct {
	Line int
	Err  error
}

func (e *BadLineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *BadLineError) Unwrap() error { return e.Err }

// ParseStream reads newline-terminated ingest lines from r, calling
// onCapture/onAlias for each record. If skipBad is false, the first
// malformed line aborts the whole batch with a *BadLineError identifying
// the offending line; if skipBad is true, malformed lines are skipped
// without being logged or passed to the caller, and parsing continues.
func ParseStream(r io.Reader, onCapture func(*record.Capture) error, onAlias func(*record.Alias) error, skipBad bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		cap, alias, err := ParseLine(line)
		if err != nil {
			if skipBad {
				continue
			}
			return &BadLineError{Line: lineNum, Err: err}
		}
		switch {
		case cap != nil:
			if err := onCapture(cap); err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
		case alias != nil:
			if err := onAlias(alias); err != nil {
				return fmt.Errorf("line %d: %w", lineNum, err)
			}
		}
	}
	return scanner.Err()
}
