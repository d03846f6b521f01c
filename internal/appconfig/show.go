package appconfig

import (
	"fmt"
	"io"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg *Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	if cfg == nil {
		cfg = &Config{}
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:                %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Log File:             %s\n", cfg.LogFilePath())
	fmt.Fprintf(out, "  Output Root:          %s\n", cfg.OutputRootPath())
	fmt.Fprintf(out, "  Buckets Per Second:   %d\n", cfg.Resolution())
	fmt.Fprintf(out, "  Drop Boundary Sample: %v\n", cfg.DropBoundarySample)
}
