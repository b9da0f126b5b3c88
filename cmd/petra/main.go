// cmd/petra/main.go
package main

import (
	"fmt"
	"os"

	"petra/internal/config"
	"petra/internal/interp"
	"petra/internal/logging"
	"petra/internal/repl"
	"petra/internal/stdlib"
)

const version = "0.1.0"

const usage = `petra %s

Usage:
  petra run <file.pt> [--config <petra.toml>]   Run a script.
  petra repl [--config <petra.toml>]            Start the REPL.
  petra version                                 Print the version.
`

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(2)
	}

	switch args[0] {
	case "run":
		os.Exit(cmdRun(args[1:]))
	case "repl":
		os.Exit(cmdRepl(args[1:]))
	case "version", "--version", "-v":
		fmt.Println(version)
	case "help", "--help", "-h":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "petra: unknown command %q\n", args[0])
		showUsage()
		os.Exit(2)
	}
}

func showUsage() {
	fmt.Printf(usage, version)
}

// setup builds a configured interpreter with the stdlib registered and
// any preload scripts evaluated.
func setup(cfg config.Config) (*interp.Interp, func(), error) {
	log := logging.New(os.Stderr, cfg.LogLevel)
	in := interp.New(
		interp.WithLogger(log),
		interp.WithMaxDepth(cfg.MaxDepth),
	)

	if err := stdlib.RegisterCore(in, os.Stdout); err != nil {
		return nil, nil, err
	}
	store, err := stdlib.OpenStore(cfg.StorePath)
	if err != nil {
		return nil, nil, err
	}
	if err := stdlib.RegisterStore(in, store); err != nil {
		store.Close()
		return nil, nil, err
	}
	cleanup := func() {
		in.Close()
		store.Close()
	}

	for _, path := range cfg.Preload {
		src, err := os.ReadFile(path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("preload %s: %w", path, err)
		}
		v, err := in.EvalFile(string(src), path)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("preload %s: %w", path, err)
		}
		in.Runtime().Decref(v)
	}
	return in, cleanup, nil
}

// splitConfig extracts --config <path> from args, loading the file when
// present and the defaults otherwise.
func splitConfig(args []string) ([]string, config.Config, error) {
	rest := make([]string, 0, len(args))
	cfg := config.Default()
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" {
			if i+1 >= len(args) {
				return nil, config.Config{}, fmt.Errorf("--config requires a path")
			}
			loaded, err := config.Load(args[i+1])
			if err != nil {
				return nil, config.Config{}, err
			}
			cfg = loaded
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	return rest, cfg, nil
}

func cmdRun(args []string) int {
	rest, cfg, err := splitConfig(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "petra:", err)
		return 2
	}
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "usage: petra run <file.pt> [--config <petra.toml>]")
		return 2
	}
	file := rest[0]

	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "petra: cannot read %s: %v\n", file, err)
		return 1
	}

	in, cleanup, err := setup(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "petra:", err)
		return 1
	}
	defer cleanup()

	v, err := in.EvalFile(string(src), file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	in.Runtime().Decref(v)
	return 0
}

func cmdRepl(args []string) int {
	rest, cfg, err := splitConfig(args)
	if err != nil || len(rest) != 0 {
		if err != nil {
			fmt.Fprintln(os.Stderr, "petra:", err)
		}
		fmt.Fprintln(os.Stderr, "usage: petra repl [--config <petra.toml>]")
		return 2
	}

	in, cleanup, err := setup(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "petra:", err)
		return 1
	}
	defer cleanup()

	return repl.Run(in)
}
