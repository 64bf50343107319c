package args

// Commands understood by app.Run.
const (
	CmdFlags      = "flags"
	CmdSettings   = "settings"
	CmdAbsolutize = "absolutize"
	CmdSource     = "source"
	CmdServe      = "serve"
	CmdWatch      = "watch"
)

// Options holds CLI flags parsed from arguments.
type Options struct {
	Command    string
	Filename   string
	Language   string
	Dir        string
	Tokens     []string
	ConfigPath string
	JSON       bool
	LogLevel   string
	LogFile    string
}
