// Package probe asks a compiler driver for its system include directories.
package probe

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

const (
	searchStart = "#include <...> search starts here:"
	searchEnd   = "End of search list."
)

// ErrNoSearchList is returned when the output has no angle-bracket search list.
var ErrNoSearchList = errors.New("no include search list in compiler output")

var annotations = []string{" (framework directory)", " (headermap)"}

// ParseSearchDirs extracts the angle-bracket include directories from the
// verbose output of a gcc or clang driver.
func ParseSearchDirs(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 512*1024)
	var (
		dirs    []string
		inList  bool
		started bool
	)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, searchStart):
			inList, started = true, true
			continue
		case strings.HasPrefix(line, searchEnd):
			inList = false
			continue
		case strings.HasPrefix(line, "#include "):
			// The quote search list comes first; skip its entries.
			inList = false
			continue
		}
		if !inList {
			continue
		}
		dir := strings.TrimSpace(line)
		for _, a := range annotations {
			dir = strings.TrimSuffix(dir, a)
		}
		if dir == "" {
			continue
		}
		dirs = append(dirs, filepath.Clean(dir))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !started {
		return nil, ErrNoSearchList
	}
	return dirs, nil
}

// SystemIncludeDirs runs compiler through runner and returns its system
// include directories.
func SystemIncludeDirs(ctx context.Context, runner Runner, compiler string) ([]string, error) {
	if runner == nil {
		runner = ExecRunner{}
	}
	rc, err := runner.Run(ctx, compiler)
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", compiler, err)
	}
	dirs, parseErr := ParseSearchDirs(rc)
	closeErr := rc.Close()
	if parseErr != nil {
		return nil, fmt.Errorf("probe %s: %w", compiler, parseErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("probe %s: %w", compiler, closeErr)
	}
	return dirs, nil
}
