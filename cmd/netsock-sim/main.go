package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/netsock/driver"
	"github.com/wippyai/netsock/socket"
)

func main() {
	var (
		script      = flag.String("script", "", "Script file to run (- for stdin)")
		sockets     = flag.Int("sockets", 8, "Socket set capacity")
		listeners   = flag.Int("listeners", 4, "Server ports per protocol")
		backlog     = flag.Int("backlog", 2, "Pending connections per port")
		bufSize     = flag.Int("buffer", socket.DefaultBufferSize, "Receive buffer size in bytes")
		readTimeout = flag.Duration("read-timeout", socket.DefaultReadTimeout, "Recycle delay after remote close (0 disables)")
		interval    = flag.Duration("check-interval", socket.DefaultCheckInterval, "Available-data poll interval")
		snapshot    = flag.String("snapshot", "", "Write the final socket snapshot (msgpack) to this file")
		verbose     = flag.Bool("v", false, "Log socket events to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *script == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: netsock-sim -script <file> [-snapshot out.msgpack] [-v]")
		fmt.Fprintln(os.Stderr, "       netsock-sim -i  (interactive mode)")
		os.Exit(1)
	}

	plainOutput = !term.IsTerminal(int(os.Stdout.Fd()))

	opts := driver.DefaultOptions()
	opts.Sockets = *sockets
	opts.Listeners = *listeners
	opts.Backlog = *backlog
	opts.Start = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	opts.Config = socket.Config{
		BufferSize:    *bufSize,
		CheckInterval: *interval,
		ReadTimeout:   *readTimeout,
	}

	if *verbose && !*interactive {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()
		opts.Logger = log
	}

	d, err := driver.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if err := runInteractive(d); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(d, *script, *snapshot, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(d *driver.Driver, scriptPath, snapshotPath string, out io.Writer) error {
	in := os.Stdin
	if scriptPath != "-" {
		f, err := os.Open(scriptPath)
		if err != nil {
			return fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	if err := runScript(d, in, out); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(d.Snapshot(), plainOutput))

	if snapshotPath == "" {
		return nil
	}
	data, err := socket.EncodeSnapshot(d.Snapshot())
	if err != nil {
		return err
	}
	if err := os.WriteFile(snapshotPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	fmt.Fprintf(out, "\nsnapshot: %d bytes written to %s\n", len(data), snapshotPath)
	return nil
}

// runScript executes in line by line, stopping at the first failing command.
func runScript(d *driver.Driver, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		res, err := execLine(d, sc.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if res != "" {
			fmt.Fprintln(out, res)
		}
	}
	return sc.Err()
}
