package main

import (
	"fmt"
	"io"

	"mirbuild/internal/driver"
)

func printTimings(out io.Writer, path string, res *driver.Result, format string) error {
	if format == "json" {
		return driver.WriteTimingsJSON(out, driver.NewTimingPayload(path, res))
	}
	summary := res.Timing.Summary()
	if res.Cached {
		summary += "  (from cache)\n"
	}
	_, err := fmt.Fprint(out, summary)
	return err
}
