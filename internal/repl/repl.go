// Package repl is the interactive front end over an interpreter
// instance.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"petra/internal/cell"
	"petra/internal/interp"
)

const (
	historyFile = ".petra_history"
	prompt      = "petra> "
)

// Run drives a read-eval-print loop on the given interpreter until EOF
// or :quit. Results print with the runtime's native stringification;
// undef prints as nothing.
func Run(in *interp.Interp) int {
	fmt.Println("Petra REPL | Ctrl+D or :quit to exit")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == ":quit" || trimmed == "exit" {
			return 0
		}
		ln.AppendHistory(line)

		v, err := in.Eval(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if v.Tag() != cell.TagUndef {
			fmt.Println(cell.Stringify(v))
		}
		in.Runtime().Decref(v)
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}
