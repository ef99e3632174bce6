package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gerunddev/chordbridge/internal/commands"
	"github.com/gerunddev/chordbridge/internal/config"
	"github.com/gerunddev/chordbridge/internal/styles"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return commands.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command := args[0]; command {
	case "convert":
		err = commands.Convert(args[1:], os.Stdout)
	case "batch":
		err = commands.Batch(ctx, args[1:], os.Stdout)
	case "diff":
		err = commands.Diff(args[1:], os.Stdout)
	case "status":
		err = commands.Status(os.Stdout)
	case "version", "-v", "--version":
		fmt.Printf("chordbridge v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		err = fmt.Errorf("%w: %s", commands.ErrUnknownCommand, command)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✗ "+err.Error()))
		if errors.Is(err, commands.ErrUnknownCommand) {
			fmt.Fprintln(os.Stderr)
			printUsage()
		}
	}
	return commands.ExitCode(err)
}

func printUsage() {
	usage := fmt.Sprintf(`chordbridge - Convert chords-over-lyrics songs to ChordPro

Usage:
  chordbridge <command> [options]

Commands:
  convert     Convert one song file
  batch       Convert every changed song in a directory
  diff        Preview what converting a song would change
  status      Display tracked songs and the last batch run
  version     Show version information
  help        Show this help message

Options:
  --fix-chords      Repair shorthand chord names (convert, diff)
  --escape-sharps   Escape '#' in lyric lines (convert, diff)
  --dry-run         Report without writing (batch)
  --force           Convert songs even if unchanged (batch)
  --workers N       Number of conversion workers (batch)
  --verbose         Also log to stderr (batch)

Examples:
  chordbridge convert wonderwall.txt wonderwall.cho
  chordbridge convert --fix-chords song.txt song.cho
  chordbridge batch --dir ~/songs --out ~/chordpro
  chordbridge batch --dir ~/songs --out ~/chordpro --dry-run
  chordbridge diff song.txt song.cho
  chordbridge status

Exit codes:
  0  success
  1  general error
  2  invalid arguments or config
  3  file not found or unreadable

Configuration:
  Config file: %s
  State file:  %s
`, config.ConfigPath(), config.StateFilePath())
	fmt.Print(usage)
}
