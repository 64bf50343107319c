package flags

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeRelativePathsInFlagsAbsolute(t *testing.T) {
	wd := filepath.FromSlash("/work/project")
	tests := []struct {
		name  string
		flags []string
		want  []string
	}{
		{
			name:  "separate path token",
			flags: []string{"-I", "include"},
			want:  []string{"-I", filepath.Join(wd, "include")},
		},
		{
			name:  "dot resolves to working directory",
			flags: []string{"-I", "."},
			want:  []string{"-I", wd},
		},
		{
			name:  "concatenated path",
			flags: []string{"-Iinclude", "-iquotesrc"},
			want:  []string{"-I" + filepath.Join(wd, "include"), "-iquote" + filepath.Join(wd, "src")},
		},
		{
			name:  "sysroot suffix",
			flags: []string{"--sysroot=sdk"},
			want:  []string{"--sysroot=" + filepath.Join(wd, "sdk")},
		},
		{
			name:  "absolute paths untouched",
			flags: []string{"-isystem", "/usr/include", "-I/opt/include"},
			want:  []string{"-isystem", "/usr/include", "-I/opt/include"},
		},
		{
			name:  "non path flags pass through",
			flags: []string{"-Wall", "-std=c++14", "-x", "c++"},
			want:  []string{"-Wall", "-std=c++14", "-x", "c++"},
		},
		{
			name:  "trailing path flag kept",
			flags: []string{"-Wall", "-I"},
			want:  []string{"-Wall", "-I"},
		},
		{
			name:  "empty path token names the working directory",
			flags: []string{"-I", "", "foo"},
			want:  []string{"-I", wd, "foo"},
		},
		{
			name:  "empty tokens dropped",
			flags: []string{"-Wall", "", "-Wextra"},
			want:  []string{"-Wall", "-Wextra"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeRelativePathsInFlagsAbsolute(tt.flags, wd))
		})
	}
}

func TestMakeRelativePathsInFlagsAbsoluteEmptyWorkingDirectory(t *testing.T) {
	in := []string{"-I", ".", "-Iinclude"}
	got := MakeRelativePathsInFlagsAbsolute(in, "")
	assert.Equal(t, in, got)

	got[0] = "-X"
	assert.Equal(t, "-I", in[0], "result must not alias the input")
}

func TestMakeRelativePathsInFlagsAbsoluteIdempotent(t *testing.T) {
	dirs := []string{"/work/project", "/", "/a/b/../c"}
	inputs := [][]string{
		Default,
		{"-I", "../up", "-iquote", "x/y", "-isystem", "sys"},
		{"-I.", "-Isrc/", "--sysroot=./root"},
		{"-I", "", "foo"},
		{"-isystem", "", "-I", ""},
	}
	for _, d := range dirs {
		wd := filepath.FromSlash(d)
		for _, in := range inputs {
			once := MakeRelativePathsInFlagsAbsolute(in, wd)
			twice := MakeRelativePathsInFlagsAbsolute(once, wd)
			assert.Equal(t, once, twice, "dir %s input %v", d, in)
		}
	}
}

func TestMakeRelativePathsInFlagsAbsoluteDefaultTable(t *testing.T) {
	wd := filepath.FromSlash("/work/project")
	got := MakeRelativePathsInFlagsAbsolute(Default, wd)
	want := []string{
		"-Wall", "-Wextra", "-Werror", "-std=c++14", "-x", "c++",
		"-isystem", "/usr/include/clang/7/include",
		"-I", wd,
	}
	assert.Equal(t, want, got)
}

func TestIsPathFlag(t *testing.T) {
	assert.True(t, IsPathFlag("-I"))
	assert.True(t, IsPathFlag("-isystem"))
	assert.False(t, IsPathFlag("-Iinclude"))
	assert.False(t, IsPathFlag("-Wall"))
}
