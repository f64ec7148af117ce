package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/pintodo/internal/tui"
)

func runPanel(args []string) int {
	fs := flag.NewFlagSet("panel", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket, timeout := clientFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintodo panel [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the interactive content panel. It performs the ready handshake")
		fmt.Fprintln(os.Stderr, "and drives the window commands from the keyboard.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	client := newClient(*socket, *timeout)
	client.SetOrigin("pintodo-panel")
	if err := tui.RunPanel(client); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket, timeout := clientFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintodo inspect [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the development inspector. The host launches it automatically")
		fmt.Fprintln(os.Stderr, "when PINTODO_ENV=development.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if err := tui.RunInspector(newClient(*socket, *timeout)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
