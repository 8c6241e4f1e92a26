package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/1broseidon/xwlm/internal/geometry"
)

// ErrExtractionFailed is wrapped by every fatal extraction error.
var ErrExtractionFailed = errors.New("config extraction failed")

// Error is a fatal extraction failure tied to a file.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrExtractionFailed, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrExtractionFailed }

// Location identifies the lines a declaration occupies. Line and EndLine
// are 0-based and inclusive. Raw holds the original text of those lines
// joined with "\n".
type Location struct {
	File    string
	Line    int
	EndLine int
	Raw     string
}

func (l Location) String() string {
	if l.EndLine > l.Line {
		return fmt.Sprintf("%s:%d-%d", l.File, l.Line+1, l.EndLine+1)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line+1)
}

// MonitorRecord is one monitor declaration found in the config tree.
type MonitorRecord struct {
	Monitor geometry.Monitor
	Location
}

// WorkspaceRecord is one workspace assignment found in the config tree.
type WorkspaceRecord struct {
	Assignment geometry.Assignment
	Location
}

// ParseWarning records a line that looked like a declaration but could
// not be parsed, or an include that could not be read.
type ParseWarning struct {
	Location
	Err error
}

func (w ParseWarning) Error() string {
	return fmt.Sprintf("%s: %v", w.Location, w.Err)
}

func (w ParseWarning) Unwrap() error { return w.Err }

// ConfigSource describes the include tree that was walked.
type ConfigSource struct {
	// Root is the canonical path of the root config file.
	Root string

	// Files lists every file read, in visit order.
	Files []string

	// MonitorFiles maps a monitor name to the file holding its last
	// declaration.
	MonitorFiles map[string]string

	// WorkspaceFiles maps a workspace id to the file holding its last
	// assignment.
	WorkspaceFiles map[string]string
}

// Result is everything found in one extraction.
type Result struct {
	Source           ConfigSource
	MonitorRecords   []MonitorRecord
	WorkspaceRecords []WorkspaceRecord
	Warnings         []ParseWarning
}

// Monitors merges records per monitor name in order of first appearance.
// A later record replaces an earlier one, except that a record without
// geometry, as in "output X disable" or "monitor = X, disable", only
// changes the enabled state.
func (r *Result) Monitors() []geometry.Monitor {
	var out []geometry.Monitor
	index := make(map[string]int)
	for _, rec := range r.MonitorRecords {
		m := rec.Monitor
		i, seen := index[m.Name]
		if !seen {
			index[m.Name] = len(out)
			out = append(out, m.Clone())
			continue
		}
		if !m.HasGeometry() {
			out[i].Enabled = m.Enabled
			continue
		}
		out[i] = m.Clone()
	}
	return out
}

// Assignments merges workspace records; the last assignment of a
// workspace wins and order of first appearance is kept.
func (r *Result) Assignments() []geometry.Assignment {
	var out []geometry.Assignment
	index := make(map[string]int)
	for _, rec := range r.WorkspaceRecords {
		a := rec.Assignment
		a.Options = append([]string(nil), a.Options...)
		if i, seen := index[a.Workspace]; seen {
			out[i] = a
			continue
		}
		index[a.Workspace] = len(out)
		out = append(out, a)
	}
	return out
}

// SplitLines splits file content into lines without terminators. ends[i]
// holds the terminator of lines[i] as found ("\n", "\r\n", or "" for a
// last line with no newline), so mixed endings survive JoinLines.
func SplitLines(data []byte) (lines, ends []string) {
	s := string(data)
	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			ends = append(ends, "")
			break
		}
		line, end := s[:i], "\n"
		if strings.HasSuffix(line, "\r") {
			line, end = line[:len(line)-1], "\r\n"
		}
		lines = append(lines, line)
		ends = append(ends, end)
		s = s[i+1:]
	}
	return lines, ends
}

// JoinLines is the inverse of SplitLines. A line without a recorded
// terminator other than the last one gets DominantEnding(ends).
func JoinLines(lines, ends []string) []byte {
	dflt := DominantEnding(ends)
	var b strings.Builder
	for i, l := range lines {
		b.WriteString(l)
		switch {
		case i < len(ends) && (ends[i] != "" || i == len(lines)-1):
			b.WriteString(ends[i])
		case i < len(lines)-1:
			b.WriteString(dflt)
		}
	}
	return []byte(b.String())
}

// DominantEnding returns the terminator used by most lines, "\n" on a tie
// or when no line has one.
func DominantEnding(ends []string) string {
	crlf, lf := 0, 0
	for _, e := range ends {
		switch e {
		case "\r\n":
			crlf++
		case "\n":
			lf++
		}
	}
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}
