package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/pullwatch/pullwatch/internal/puller"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func styled() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func render(style lipgloss.Style, s string) string {
	if styled() {
		return style.Render(s)
	}
	return s
}

func printResult(r puller.Result, err error) {
	if err == nil {
		fmt.Printf("%s %s (%s)\n", render(okStyle, "✓"), r.PipelineID, r.Duration.Round(time.Millisecond))
		if r.Output != "" {
			printIndented(r.Output)
		}
		return
	}

	fmt.Printf("%s %s (stage %s)\n", render(failStyle, "✗"), r.PipelineID, r.Stage)
	fmt.Printf("  Error: %s\n", err)
	switch {
	case r.Suppressed:
		fmt.Println(render(dimStyle, "  Alert suppressed: same error within the suppression window"))
	case r.Alerted:
		fmt.Println("  Alert sent")
	}
}

func printIndented(out string) {
	for _, line := range strings.Split(out, "\n") {
		fmt.Printf("  %s\n", line)
	}
}
