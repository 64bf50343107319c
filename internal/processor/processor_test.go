package processor

import (
	"reflect"
	"testing"
)

func TestAssembleAppendsSystemDirs(t *testing.T) {
	got := Assemble(Input{
		Base:       []string{"-Wall", "-I", "."},
		Extra:      []string{"-DNDEBUG"},
		SystemDirs: []string{"/usr/include/c++/12", "/usr/include"},
	})
	want := []string{"-Wall", "-I", ".", "-DNDEBUG", "-isystem", "/usr/include/c++/12", "-isystem", "/usr/include"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Assemble mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestAssembleSkipsDuplicates(t *testing.T) {
	got := Assemble(Input{
		Base:       []string{"-isystem", "/usr/include", "-I/opt/x"},
		SystemDirs: []string{"/usr/include", "/opt/x", "/usr/local/include", "/usr/local/include"},
	})
	want := []string{"-isystem", "/usr/include", "-I/opt/x", "-isystem", "/usr/local/include"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Assemble mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestAssembleIgnorePrefixes(t *testing.T) {
	got := Assemble(Input{
		Base:           []string{"-Wall"},
		SystemDirs:     []string{"/Library/Frameworks", "/usr/include"},
		IgnorePrefixes: []string{"/Library", ""},
	})
	want := []string{"-Wall", "-isystem", "/usr/include"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Assemble mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestAssembleDoesNotAliasBase(t *testing.T) {
	base := []string{"-Wall", "-Wextra"}
	got := append(Assemble(Input{Base: base[:1]}), "-Werror")
	if len(got) != 2 || base[1] != "-Wextra" {
		t.Fatalf("base modified: %v", base)
	}
}

func TestIncludeDirs(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"-I", "a", "-isystem", "/b", "-iquotec", "--sysroot=/sdk"}, []string{"a", "/b", "c", "/sdk"}},
		{[]string{"-Wall", "-I"}, nil},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := IncludeDirs(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("IncludeDirs(%v) = %v want %v", tt.in, got, tt.want)
		}
	}
}
