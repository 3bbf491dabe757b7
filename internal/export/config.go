// Package export runs one fetch cycle and writes the datasets to a JSON file.
package export

import "time"

// Config holds the settings of one export run.
type Config struct {
	ProjectID    string        // Annotation project to export
	OutputFile   string        // Destination file, generated when empty
	FinishedOnly bool          // Write only the finished dataset
	Pretty       bool          // Indent the JSON output
	Timeout      time.Duration // Deadline of the whole run
}

// Stats summarises an export run.
type Stats struct {
	CycleID      string
	OutputFile   string
	Assets       int
	Finished     int
	Contributors int
	Written      int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}
