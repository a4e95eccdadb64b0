package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"

	"github.com/peterh/liner"

	"treelox/lox"
)

const historyFile = ".treelox_history"

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %v [script]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if prof, ok := os.LookupEnv("CPUPROFILE"); ok && prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("Cannot create profile output file '%v' (%v).\n", prof, err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	switch flag.NArg() {
	case 0:
		runPrompt()
	case 1:
		l := lox.New()
		os.Exit(l.RunFile(flag.Arg(0)))
	default:
		flag.Usage()
		os.Exit(64)
	}
}

// runPrompt runs the REPL: one line at a time, echoing a bare expression
// statement's value (lox.Lox.ReplMode), persisting history across sessions.
func runPrompt() {
	fmt.Println("treelox REPL. Ctrl+D exits.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		ln.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			ln.WriteHistory(f)
			f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	l := lox.New()
	l.ReplMode = true

	for {
		line, err := ln.Prompt("> ")
		if errors.Is(err, io.EOF) {
			fmt.Println()
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		if line == "" {
			continue
		}

		ln.AppendHistory(line)
		l.RunSource(line)
	}
}
