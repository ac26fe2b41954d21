// Command rowdex is a demo grid viewer: it opens a delimited text
// file with the rowdex library, waits for the background scan in the
// background, and renders a scrollable, column-aligned grid of
// tokenized rows with bubbletea.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/user/rowdex/internal/config"
	"github.com/user/rowdex/internal/viewerui"
)

func main() {
	highlightFlag := flag.Bool("highlight", true, "syntax-highlight the selected cell when it looks like code or JSON")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rowdex [-highlight] <file>\n")
		fmt.Fprintf(os.Stderr, "  -highlight\thighlight the selected cell (default true, overrides config.toml)\n")
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	path := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", config.GetConfigPath(), err)
		os.Exit(1)
	}
	if isFlagPassed("highlight") {
		cfg.Display.HighlightCells = *highlightFlag
	}

	model, err := viewerui.New(path, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
