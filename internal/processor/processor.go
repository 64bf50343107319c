package processor

import (
	"strings"

	"github.com/hokupod/ccflags/internal/flags"
)

// Input is the raw material for a flag list.
type Input struct {
	Base           []string
	Extra          []string
	SystemDirs     []string
	IgnorePrefixes []string
}

// Assemble concatenates base and extra flags and appends each system
// directory as -isystem unless it is ignored or already present.
func Assemble(in Input) []string {
	out := make([]string, 0, len(in.Base)+len(in.Extra)+2*len(in.SystemDirs))
	out = append(out, in.Base...)
	out = append(out, in.Extra...)

	seen := map[string]struct{}{}
	for _, dir := range IncludeDirs(out) {
		seen[dir] = struct{}{}
	}
	for _, dir := range in.SystemDirs {
		if dir == "" || hasPrefix(dir, in.IgnorePrefixes) {
			continue
		}
		if _, ok := seen[dir]; ok {
			continue
		}
		seen[dir] = struct{}{}
		out = append(out, "-isystem", dir)
	}
	return out
}

// IncludeDirs returns the path arguments of every path flag in order of
// appearance, in both separate and concatenated form.
func IncludeDirs(list []string) []string {
	var dirs []string
	for i := 0; i < len(list); i++ {
		tok := list[i]
		if flags.IsPathFlag(tok) {
			if i+1 < len(list) {
				dirs = append(dirs, list[i+1])
				i++
			}
			continue
		}
		for _, pf := range flags.PathFlags {
			if strings.HasPrefix(tok, pf) {
				dirs = append(dirs, tok[len(pf):])
				break
			}
		}
	}
	return dirs
}

func hasPrefix(path string, prefixes []string) bool {
	for _, pre := range prefixes {
		if pre != "" && strings.HasPrefix(path, pre) {
			return true
		}
	}
	return false
}
