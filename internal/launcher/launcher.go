package launcher

import (
	"errors"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoURL is returned when there is nothing to open
var ErrNoURL = errors.New("no URL to open")

// Launcher opens links (trailers, TMDB pages) in an external program
type Launcher struct {
	command string   // configured command, empty for system default
	args    []string // additional arguments placed before the URL
	goos    string
	logger  *slog.Logger

	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// NewLauncher creates a Launcher. An empty command uses the platform's
// default URL handler.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  strings.TrimSpace(command),
		args:     args,
		goos:     runtime.GOOS,
		logger:   logger,
		lookPath: exec.LookPath,
		start:    startCommand,
	}
}

// startCommand starts the program without waiting for it
func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Open opens url in the configured program or the system default
func (l *Launcher) Open(url string) error {
	if url == "" {
		return ErrNoURL
	}

	name, args := l.commandFor(url)
	l.logger.Info("opening url", "command", name, "args", args)
	if err := l.start(name, args...); err != nil {
		l.logger.Error("failed to open url", "command", name, "url", url, "error", err)
		return err
	}
	return nil
}

// commandFor builds the command line that opens url
func (l *Launcher) commandFor(url string) (string, []string) {
	if l.command == "" {
		return l.defaultCommand(url)
	}

	args := append([]string{}, l.args...)

	// On macOS, GUI apps that aren't in PATH are launched with 'open -a'
	if l.goos == "darwin" {
		if _, err := l.lookPath(l.command); err != nil {
			cmdArgs := []string{"-a", l.command}
			if len(args) > 0 {
				cmdArgs = append(cmdArgs, "--args")
				cmdArgs = append(cmdArgs, args...)
			}
			return "open", append(cmdArgs, url)
		}
	}

	return l.command, append(args, url)
}

// defaultCommand opens the URL using the system default handler
func (l *Launcher) defaultCommand(url string) (string, []string) {
	switch l.goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}
