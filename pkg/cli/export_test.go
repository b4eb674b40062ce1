package cli

// RunWithWriter runs the CLI with command output sent to w
var RunWithWriter = run
