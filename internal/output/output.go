package output

import (
	"bytes"
	"encoding/json"

	"github.com/hokupod/ccflags/internal/settings"
)

// ResponseJSON renders a response as a single JSON object.
func ResponseJSON(resp settings.Response) ([]byte, error) {
	return json.Marshal(resp)
}

// ErrorJSON renders a protocol error object.
func ErrorJSON(err error) ([]byte, error) {
	return json.Marshal(map[string]string{"error": err.Error()})
}

// ResponseText renders one flag per line followed by the directory and
// override lines when present.
func ResponseText(resp settings.Response) string {
	var buf bytes.Buffer
	for i, f := range resp.Flags {
		buf.WriteString(f)
		if i != len(resp.Flags)-1 {
			buf.WriteByte('\n')
		}
	}
	if resp.IncludePathsRelativeToDir != "" {
		writeLine(&buf, "# dir: "+resp.IncludePathsRelativeToDir)
	}
	if resp.OverrideFilename != "" {
		writeLine(&buf, "# override: "+resp.OverrideFilename)
	}
	return buf.String()
}

// FlagsJSON marshals a flag list into a JSON array.
func FlagsJSON(flags []string) ([]byte, error) {
	if flags == nil {
		flags = []string{}
	}
	return json.Marshal(flags)
}

func writeLine(buf *bytes.Buffer, line string) {
	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteString(line)
}
