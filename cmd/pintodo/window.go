package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/1broseidon/pintodo/internal/bridge"
	"github.com/1broseidon/pintodo/internal/tui"
	"golang.org/x/term"
)

// clientFlags registers the flags shared by every bridge client command.
func clientFlags(fs *flag.FlagSet) (socket *string, timeout *time.Duration) {
	socket = fs.String("socket", "", "Bridge socket path (default: $PINTODO_SOCKET or runtime dir)")
	timeout = fs.Duration("timeout", 5*time.Second, "Per-request timeout")
	return socket, timeout
}

// runSimple handles the window commands that take no arguments.
func runSimple(name, summary string, args []string, fn func(*bridge.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket, timeout := clientFlags(fs)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pintodo %s [--socket PATH]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, summary)
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	if err := fn(newClient(*socket, *timeout)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runMinimize(args []string) int {
	return runSimple("minimize", "Minimize the host window.", args, func(c *bridge.Client) error {
		return c.MinimizeWindow()
	})
}

func runClose(args []string) int {
	return runSimple("close", "Close the host window. The host quits.", args, func(c *bridge.Client) error {
		return c.CloseWindow()
	})
}

func runActivate(args []string) int {
	return runSimple("activate", "Show the host window, recreating it when none exists.", args, func(c *bridge.Client) error {
		return c.Activate()
	})
}

func runOpacity(args []string) int {
	return runSimple("opacity", "Toggle the window between full and dimmed opacity.", args, func(c *bridge.Client) error {
		data, err := c.ToggleOpacity()
		if err != nil {
			return err
		}
		if data == nil {
			fmt.Println("opacity: no window")
			return nil
		}
		fmt.Printf("opacity: %.2f\n", data.Opacity)
		return nil
	})
}

func printLevelUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pintodo level get [--socket PATH]")
	fmt.Fprintln(w, "  pintodo level set [--socket PATH] [level]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Levels: alwaysOnTop, desktop, normal.")
	fmt.Fprintln(w, "Without a level, 'set' opens an interactive picker on a terminal.")
}

func runLevel(args []string) int {
	if len(args) == 0 {
		printLevelUsage(os.Stderr)
		return 2
	}
	if isHelpArg(args[0]) {
		printLevelUsage(os.Stdout)
		return 0
	}

	switch args[0] {
	case "get":
		return runSimple("level get", "Print the current window level.", args[1:], func(c *bridge.Client) error {
			level, err := c.GetWindowLevel()
			if err != nil {
				return err
			}
			fmt.Println(level)
			return nil
		})

	case "set":
		fs := flag.NewFlagSet("level set", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		socket, timeout := clientFlags(fs)
		fs.Usage = func() { printLevelUsage(os.Stderr) }
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() > 1 {
			fmt.Fprintln(os.Stderr, "level set takes at most one level")
			return 2
		}

		var level bridge.Level
		if fs.NArg() == 1 {
			parsed, err := bridge.ParseLevel(fs.Arg(0))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 2
			}
			level = parsed
		}

		client := newClient(*socket, *timeout)
		if level == "" {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				fmt.Fprintln(os.Stderr, "level set: no level given and stdin is not a terminal")
				return 2
			}
			current, err := client.GetWindowLevel()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			picked, err := tui.PickLevel(current)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			level = picked
		}

		applied, err := client.SetWindowLevel(level)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(applied)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown level command: %s\n\n", args[0])
		printLevelUsage(os.Stderr)
		return 2
	}
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socket, timeout := clientFlags(fs)
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: pintodo status [--json] [--socket PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show host status via the bridge socket.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := newClient(*socket, *timeout).Status()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := printStatus(os.Stdout, status, *asJSON); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printStatus(w io.Writer, status *bridge.StatusData, asJSON bool) error {
	if status == nil {
		return errors.New("empty status response")
	}
	if asJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	fmt.Fprintf(w, "window_present: %v\n", status.WindowPresent)
	fmt.Fprintf(w, "visible:        %v\n", status.Visible)
	fmt.Fprintf(w, "opacity:        %.2f\n", status.Opacity)
	fmt.Fprintf(w, "level:          %s\n", status.Level)
	fmt.Fprintf(w, "bridge_ready:   %v\n", status.BridgeReady)
	fmt.Fprintf(w, "generation:     %d\n", status.Generation)
	fmt.Fprintf(w, "dev_mode:       %v\n", status.DevMode)
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
	return nil
}
