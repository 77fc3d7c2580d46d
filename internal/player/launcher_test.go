package player

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	name string
	args []string
}

// fakeExec records commands and pretends only the listed binaries exist
func fakeExec(l *Launcher, goos string, installed ...string) *[]recorded {
	var calls []recorded
	have := map[string]bool{}
	for _, b := range installed {
		have[b] = true
	}
	l.goos = goos
	l.lookPath = func(file string) (string, error) {
		if have[file] {
			return "/usr/bin/" + file, nil
		}
		return "", errors.New("not found")
	}
	l.start = func(name string, args ...string) error {
		calls = append(calls, recorded{name, args})
		return nil
	}
	l.run = func(name string, args ...string) error {
		calls = append(calls, recorded{name, args})
		if name == "open" && !containsApp(args, have) {
			return errors.New("app not found")
		}
		return nil
	}
	return &calls
}

func containsApp(args []string, have map[string]bool) bool {
	for i, a := range args {
		if a == "-a" && i+1 < len(args) && have["app:"+args[i+1]] {
			return true
		}
	}
	return false
}

func TestLaunch_ConfiguredCommand(t *testing.T) {
	l := NewLauncher("mpv", []string{"--fs"}, nil)
	calls := fakeExec(l, "linux", "mpv")

	require.NoError(t, l.Launch("https://cdn/a.mp4"))
	require.Len(t, *calls, 1)
	assert.Equal(t, recorded{"mpv", []string{"--fs", "https://cdn/a.mp4"}}, (*calls)[0])
}

func TestLaunch_ConfiguredGUIAppOnMac(t *testing.T) {
	l := NewLauncher("IINA", nil, nil)
	calls := fakeExec(l, "darwin", "app:IINA")

	require.NoError(t, l.Launch("https://cdn/a.mp4"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "open", (*calls)[0].name)
	assert.Equal(t, []string{"-a", "IINA", "https://cdn/a.mp4"}, (*calls)[0].args)
}

func TestLaunch_DetectsCandidate(t *testing.T) {
	l := NewLauncher("", nil, nil)
	calls := fakeExec(l, "linux", "vlc")

	require.NoError(t, l.Launch("https://cdn/a.mp4"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "vlc", (*calls)[0].name)
}

func TestLaunch_FallsBackToSystemDefault(t *testing.T) {
	l := NewLauncher("", nil, nil)
	calls := fakeExec(l, "linux")

	require.NoError(t, l.Launch("https://cdn/a.mp4"))
	require.Len(t, *calls, 1)
	assert.Equal(t, recorded{"xdg-open", []string{"https://cdn/a.mp4"}}, (*calls)[0])
}

func TestLaunch_MacCandidateChain(t *testing.T) {
	l := NewLauncher("", nil, nil)
	calls := fakeExec(l, "darwin", "app:VLC")

	require.NoError(t, l.Launch("u"))
	last := (*calls)[len(*calls)-1]
	assert.Equal(t, "open", last.name)
	assert.Contains(t, strings.Join(last.args, " "), "-a VLC")
}

func TestLaunch_NoVideo(t *testing.T) {
	l := NewLauncher("mpv", nil, nil)
	calls := fakeExec(l, "linux", "mpv")
	assert.ErrorIs(t, l.Launch("  "), ErrNoVideo)
	assert.Empty(t, *calls)
}
