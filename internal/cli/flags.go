package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DBPath  string `long:"db-path" description:"Override the cache database path"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// RunCommand runs a full housekeeping pass.
type RunCommand struct {
	KeepFiles bool `long:"keep-files" description:"Delete records but leave article payload directories on disk"`

	globals *GlobalFlags
	version string
}

// DemoteCommand demotes cached articles the navigation state does not hold.
type DemoteCommand struct {
	KeepFiles bool `long:"keep-files" description:"Clear cached flags but leave article payload directories on disk"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows cache database statistics and the active limits.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}
