package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/1broseidon/pintodo/internal/bridge"
	"github.com/1broseidon/pintodo/internal/config"
	"github.com/1broseidon/pintodo/internal/runtimepath"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "host":
		os.Exit(runHost(os.Args[2:]))
	case "minimize":
		os.Exit(runMinimize(os.Args[2:]))
	case "close":
		os.Exit(runClose(os.Args[2:]))
	case "opacity":
		os.Exit(runOpacity(os.Args[2:]))
	case "level":
		os.Exit(runLevel(os.Args[2:]))
	case "activate":
		os.Exit(runActivate(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "panel":
		os.Exit(runPanel(os.Args[2:]))
	case "inspect":
		os.Exit(runInspect(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pintodo <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  host                Start the window host (foreground)")
	fmt.Fprintln(w, "  activate            Show the window, recreating it if needed")
	fmt.Fprintln(w, "  status              Show host status")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  minimize            Minimize the window")
	fmt.Fprintln(w, "  close               Close the window and quit the host")
	fmt.Fprintln(w, "  opacity             Toggle window opacity")
	fmt.Fprintln(w, "  level get           Print the window level")
	fmt.Fprintln(w, "  level set [level]   Set the window level (picker when omitted)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  panel               Open the interactive content panel")
	fmt.Fprintln(w, "  inspect             Open the development inspector")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print effective configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'pintodo <command> --help' for command-specific options.")
}

func isHelpArg(arg string) bool {
	return arg == "help" || arg == "-h" || arg == "--help"
}

// parseFlags parses args and maps the outcome to an exit code; ok is false
// when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

// clientSocket resolves the socket a CLI client dials. An explicit flag wins,
// then PINTODO_SOCKET, then bridge.socket from the config file.
func clientSocket(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if os.Getenv(runtimepath.SocketEnv) != "" {
		return ""
	}
	cfg, err := config.Load()
	if err != nil {
		return ""
	}
	return cfg.Bridge.Socket
}

func newClient(socket string, timeout time.Duration) *bridge.Client {
	client := bridge.NewClient(clientSocket(socket))
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return client
}

// hostSocket is where the host listens: bridge.socket, or the runtime default.
func hostSocket(cfg *config.Config) (string, error) {
	if cfg.Bridge.Socket != "" {
		return cfg.Bridge.Socket, nil
	}
	return runtimepath.SocketPath()
}
