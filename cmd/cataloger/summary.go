package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/kirillkom/doc-cataloger/internal/core/domain"
)

var (
	colorTitle  = color.New(color.FgCyan, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorRed    = color.New(color.FgRed, color.Bold)
	colorDimmed = color.New(color.FgWhite)
)

func printSummary(w io.Writer, report *domain.RunReport) {
	colorTitle.Fprintf(w, "Catalog run %s\n", report.RunID)
	fmt.Fprintln(w, strings.Repeat("─", 48))
	colorDimmed.Fprintf(w, "input:    %s\noutput:   %s\nduration: %s\n",
		report.InputRoot,
		report.OutputRoot,
		report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
	)

	colorGreen.Fprintf(w, "processed: %d\n", report.Count(domain.FileProcessed))
	colorYellow.Fprintf(w, "skipped:   %d\n", report.Count(domain.FileSkipped))
	colorRed.Fprintf(w, "failed:    %d\n", report.Count(domain.FileFailed))

	reasons := report.Reasons()
	if len(reasons) == 0 {
		return
	}
	keys := make([]string, 0, len(reasons))
	for reason := range reasons {
		keys = append(keys, reason)
	}
	sort.Strings(keys)

	fmt.Fprintln(w, "reasons:")
	for _, reason := range keys {
		fmt.Fprintf(w, "  %-22s %d\n", reason, reasons[reason])
	}
	for _, res := range report.Results {
		if res.Status == domain.FileFailed {
			colorRed.Fprintf(w, "  ✗ %s: %s\n", res.Path, res.Error)
		}
	}
}
