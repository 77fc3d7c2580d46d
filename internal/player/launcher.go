// Package player hands video URLs to an external media player.
package player

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoVideo is returned when a title has nothing to play
var ErrNoVideo = errors.New("title has no playable video")

// Launcher launches media URLs in an external player
type Launcher struct {
	command string   // configured player command, empty for detection
	args    []string // additional arguments for the player
	goos    string
	logger  *slog.Logger

	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error // starts without waiting
	run      func(name string, args ...string) error // waits for exit
}

// launchPath defines a single way to launch a player
type launchPath struct {
	path      string   // Command path: "mpv", "vlc", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command
}

// players maps player name to platform-specific launch paths, tried in order
var players = map[string]map[string][]launchPath{
	"mpv": {
		"darwin":  {{path: "mpv"}},
		"linux":   {{path: "mpv"}},
		"windows": {{path: "mpv"}},
	},
	"vlc": {
		"darwin":  {{path: "vlc"}, {path: "open-a:VLC"}},
		"linux":   {{path: "vlc"}},
		"windows": {{path: "vlc"}},
	},
	"iina": {
		"darwin": {{path: "open-a:IINA", openFlags: []string{"-n"}}}, // IINA needs -n for new windows
	},
	"celluloid": {
		"linux": {{path: "celluloid"}},
	},
	"haruna": {
		"linux": {{path: "haruna"}},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "vlc", "mpv"},
	"linux":   {"mpv", "celluloid", "haruna", "vlc"},
	"windows": {"vlc", "mpv"},
}

// NewLauncher creates a launcher. An empty command tries the platform's
// candidate players, then the system default handler.
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		goos:     runtime.GOOS,
		logger:   logger,
		lookPath: exec.LookPath,
		start:    func(name string, args ...string) error { return exec.Command(name, args...).Start() },
		run:      func(name string, args ...string) error { return exec.Command(name, args...).Run() },
	}
}

// Launch opens url in the configured player or system default
func (l *Launcher) Launch(url string) error {
	if strings.TrimSpace(url) == "" {
		return ErrNoVideo
	}

	// Tier 1: User configured a specific player
	if l.command != "" {
		l.logger.Info("launching player", "command", l.command, "args", l.args, "url", url)
		return l.launchConfigured(url)
	}

	// Tier 2: Try candidate chain (IINA → VLC → mpv on macOS, etc.)
	if name, err := l.detectAndLaunch(url); err == nil {
		l.logger.Info("launched with detected player", "player", name)
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate players found, using system default")
	return l.launchDefault(url)
}

func (l *Launcher) launchConfigured(url string) error {
	args := append([]string{}, l.args...)

	// On macOS, launch GUI apps with 'open -a' if the command is not in PATH
	if l.goos == "darwin" {
		if _, err := l.lookPath(l.command); err != nil {
			return l.openWithApp(l.command, url, args, nil)
		}
	}

	return l.start(l.command, append(args, url)...)
}

// detectAndLaunch tries candidate players in order.
// Returns the player name that succeeded.
func (l *Launcher) detectAndLaunch(url string) (string, error) {
	candidates, ok := candidatePlayers[l.goos]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		for _, lp := range players[name][l.goos] {
			var err error
			if app, ok := strings.CutPrefix(lp.path, "open-a:"); ok {
				err = l.openWithApp(app, url, l.args, lp.openFlags)
			} else if _, err = l.lookPath(lp.path); err == nil {
				err = l.start(lp.path, append(append([]string{}, l.args...), url)...)
			}
			if err == nil {
				return name, nil
			}
			l.logger.Debug("launch path not available", "player", name, "path", lp.path, "error", err)
		}
	}

	return "", fmt.Errorf("no candidate players found")
}

// openWithApp opens url with a macOS app using "open -a". It waits for
// open to exit so a missing app is reported.
func (l *Launcher) openWithApp(app, url string, playerArgs, openFlags []string) error {
	cmdArgs := append([]string{}, openFlags...)
	cmdArgs = append(cmdArgs, "-a", app)
	if len(playerArgs) > 0 {
		cmdArgs = append(cmdArgs, "--args")
		cmdArgs = append(cmdArgs, playerArgs...)
	}
	cmdArgs = append(cmdArgs, url)
	return l.run("open", cmdArgs...)
}

func (l *Launcher) launchDefault(url string) error {
	l.logger.Info("launching with system default", "os", l.goos, "url", url)

	switch l.goos {
	case "darwin":
		return l.start("open", url)
	case "windows":
		return l.start("cmd", "/c", "start", "", url)
	default:
		return l.start("xdg-open", url)
	}
}
