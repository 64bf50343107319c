package flags

import (
	"path/filepath"
	"strings"
)

// Default is the flag table used when no config overrides it.
var Default = []string{
	"-Wall",
	"-Wextra",
	"-Werror",
	"-std=c++14",
	"-x", "c++",
	"-isystem", "/usr/include/clang/7/include",
	"-I", ".",
}

// PathFlags introduce a path, either as the next token or as a suffix.
// Order matters: the first match wins.
var PathFlags = []string{"-isystem", "-I", "-iquote", "--sysroot="}

// MakeRelativePathsInFlagsAbsolute rewrites the path argument of every path
// flag so that it is rooted at workingDirectory. Absolute paths are kept.
// An empty workingDirectory returns a copy of flags.
func MakeRelativePathsInFlagsAbsolute(flags []string, workingDirectory string) []string {
	if workingDirectory == "" {
		return append([]string(nil), flags...)
	}
	out := make([]string, 0, len(flags))
	makeNextAbsolute := false
	for _, flag := range flags {
		newFlag := flag
		if makeNextAbsolute {
			makeNextAbsolute = false
			// An empty path still names the working directory.
			if !filepath.IsAbs(flag) {
				newFlag = filepath.Join(workingDirectory, flag)
			}
		}
		for _, pathFlag := range PathFlags {
			if flag == pathFlag {
				makeNextAbsolute = true
				break
			}
			if strings.HasPrefix(flag, pathFlag) {
				newFlag = pathFlag + absolute(workingDirectory, flag[len(pathFlag):])
				break
			}
		}
		if newFlag != "" {
			out = append(out, newFlag)
		}
	}
	return out
}

// IsPathFlag reports whether flag expects its path as the following token.
func IsPathFlag(flag string) bool {
	for _, pf := range PathFlags {
		if flag == pf {
			return true
		}
	}
	return false
}

func absolute(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
