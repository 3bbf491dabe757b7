package export

import "os"

// ShowHelp prints usage information for the export tool.
func ShowHelp() {
	os.Stdout.WriteString(`Contribution Leaderboard Export
===============================

Runs one fetch cycle against the annotation platform and writes the
reconciled datasets to a JSON file. Platform settings are read the same
way as the service: defaults, then LEADERBOARD_CONFIG, then LEADERBOARD_*
environment variables.

Usage:
  go run ./cmd/export [options]

Options:
  -out string
        Output file (default: datasets_<project>_TIMESTAMP.json)
  -project string
        Project id, overrides LEADERBOARD_PROJECT_ID
  -finished
        Write only the finished dataset
  -pretty
        Indent the JSON output
  -timeout duration
        Deadline of the whole run (default 5m)
  -help
        Show this help message

Examples:
  # Export both datasets of the configured project
  LEADERBOARD_API_KEY=... LEADERBOARD_PROJECT_ID=... go run ./cmd/export

  # Export only finished assets, indented
  go run ./cmd/export -finished -pretty -out out/finished.json
`)
}
