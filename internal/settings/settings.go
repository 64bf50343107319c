// Package settings answers the host tool's flag requests. FlagsForFile serves
// the legacy protocol and Settings serves the current one.
package settings

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hokupod/ccflags/internal/flags"
	"github.com/hokupod/ccflags/internal/source"
)

// LanguageCFamily is the language tag the host uses for C, C++ and Objective-C.
const LanguageCFamily = "cfamily"

// Entry points understood by Handle.
const (
	EntryFlagsForFile = "FlagsForFile"
	EntrySettings     = "Settings"
)

// Kwargs are the keyword arguments supplied by the host tool.
type Kwargs struct {
	Filename   string         `json:"filename"`
	Language   string         `json:"language,omitempty"`
	ClientData map[string]any `json:"client_data,omitempty"`
}

// Request names an entry point together with its arguments.
type Request struct {
	Entry string `json:"entry"`
	Kwargs
}

// Response is the mapping returned to the host tool. A zero Response
// marshals to an empty object.
type Response struct {
	Flags                     []string
	IncludePathsRelativeToDir string
	OverrideFilename          string
}

// IsEmpty reports whether r carries nothing for the host.
func (r Response) IsEmpty() bool {
	return r.Flags == nil && r.IncludePathsRelativeToDir == "" && r.OverrideFilename == ""
}

func (r Response) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return []byte("{}"), nil
	}
	type wire struct {
		Flags                     []string `json:"flags"`
		IncludePathsRelativeToDir string   `json:"include_paths_relative_to_dir,omitempty"`
		OverrideFilename          string   `json:"override_filename,omitempty"`
	}
	w := wire{
		Flags:                     r.Flags,
		IncludePathsRelativeToDir: r.IncludePathsRelativeToDir,
		OverrideFilename:          r.OverrideFilename,
	}
	if w.Flags == nil {
		w.Flags = []string{}
	}
	return json.Marshal(w)
}

// Provider holds the flag table and the directory its paths are relative to.
type Provider struct {
	Flags            []string
	WorkingDirectory string
	Finder           source.Finder
	Logger           *slog.Logger
}

// NewProvider returns a Provider serving the default flag table.
func NewProvider(workingDirectory string) *Provider {
	return &Provider{
		Flags:            flags.Default,
		WorkingDirectory: workingDirectory,
		Finder:           source.NewFinder(),
	}
}

// FlagsForFile is the legacy entry point. Paths in the returned flags are
// absolute.
func (p *Provider) FlagsForFile(filename string, kwargs Kwargs) Response {
	final := flags.MakeRelativePathsInFlagsAbsolute(p.Flags, p.WorkingDirectory)
	p.logger().Debug("flags for file", "filename", filename, "count", len(final))
	return Response{Flags: final}
}

// Settings is the current entry point. Flags are returned unmodified and the
// host resolves them against IncludePathsRelativeToDir.
func (p *Provider) Settings(kwargs Kwargs) Response {
	if kwargs.Language != LanguageCFamily {
		p.logger().Debug("unsupported language", "language", kwargs.Language)
		return Response{}
	}
	filename := p.Finder.FindCorrespondingSourceFile(kwargs.Filename)
	if filename != kwargs.Filename {
		p.logger().Debug("header mapped to source", "header", kwargs.Filename, "source", filename)
	}
	return Response{
		Flags:                     append([]string{}, p.Flags...),
		IncludePathsRelativeToDir: p.WorkingDirectory,
		OverrideFilename:          filename,
	}
}

// Handle dispatches req to the entry point it names.
func (p *Provider) Handle(req Request) (Response, error) {
	switch req.Entry {
	case EntryFlagsForFile:
		if req.Filename == "" {
			return Response{}, fmt.Errorf("%s: filename is required", req.Entry)
		}
		return p.FlagsForFile(req.Filename, req.Kwargs), nil
	case EntrySettings:
		if req.Filename == "" {
			return Response{}, fmt.Errorf("%s: filename is required", req.Entry)
		}
		return p.Settings(req.Kwargs), nil
	default:
		return Response{}, fmt.Errorf("unknown entry point %q", req.Entry)
	}
}

func (p *Provider) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
