// Command storir synthesizes stochastic room impulse responses.
//
// Usage:
//
//	storir [command] [flags]
//
// Commands:
//
//	generate   render impulse responses to WAV files (default)
//	apply      convolve a dry WAV file with an impulse response
//	analyze    print the room acoustic parameters of WAV files
//	inspect    print the manifest of a run
//	watch      regenerate whenever the configuration file changes
//
// Examples:
//
//	storir -rt60 1200 -edt 150 -n 10 -out ./hall
//	storir generate -config room.yaml -seed 7
//	storir apply -ir hall/rir_000.wav -wet 0.3 dry.wav wet.wav
//	storir analyze hall/*.wav
//	storir inspect hall/manifest.msgpack.zst
//	storir watch -config room.yaml
//
// Exit status is 2 for invalid parameters or usage, 1 when any draw or
// command failed and 0 otherwise.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cwbudde/algo-storir/synth"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errUsage marks errors caused by bad command line arguments.
var errUsage = errors.New("usage error")

type command struct {
	name    string
	summary string
	run     func(args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"generate", "render impulse responses to WAV files", runGenerate},
	{"apply", "convolve a dry WAV file with an impulse response", runApply},
	{"analyze", "print the room acoustic parameters of WAV files", runAnalyze},
	{"inspect", "print the manifest of a run", runInspect},
	{"watch", "regenerate whenever the configuration file changes", runWatch},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := commands[0]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		found := false
		for _, c := range commands {
			if c.name == args[0] {
				cmd, found = c, true
				break
			}
		}
		if !found {
			fmt.Fprintf(stderr, "storir: unknown command %q\n\n", args[0])
			usage(stderr)
			return exitUsage
		}
		args = args[1:]
	}

	err := cmd.run(args, stdout, stderr)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	case errors.Is(err, synth.ErrInvalidParameter):
		fmt.Fprintf(stderr, "storir %s: %v\n", cmd.name, err)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "storir %s: %v\n", cmd.name, err)
		return exitFailure
	}
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: storir [command] [flags]\n\n")
	fmt.Fprintf(w, "Synthesizes stochastic room impulse responses.\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun 'storir <command> -h' for the flags of a command.\n")
}
