package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mattjoyce/biobridge/internal/config"
	"github.com/mattjoyce/biobridge/internal/journal"
	"github.com/mattjoyce/biobridge/internal/storage"
)

const version = "0.3.0"

const redacted = "<redacted>"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage(os.Stderr)
		return 1
	}

	cmd := args[0]
	rest := args[1:]

	switch cmd {
	// --- NOUNS ---
	case "system":
		return runSystemNoun(rest)
	case "config":
		return runConfigNoun(rest)
	case "journal":
		return runJournalNoun(rest)

	// --- ROOT ALIASES ---
	case "start":
		return runStart(rest)
	case "version":
		fmt.Printf("biobridge version %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(os.Stdout)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage(os.Stderr)
		return 1
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `biobridge - Remote command executor for biometric attendance readers

Usage:
  biobridge <noun> <action> [flags]

Core Resources (Nouns):
  system    Executor lifecycle
  config    Configuration and integrity
  journal   Locally recorded command outcomes

System Commands:
  system start      Start the executor in the foreground

Config Commands:
  config check      Validate syntax, values, and integrity
  config lock       Authorize current state (update integrity hash)
  config show       Print the resolved configuration
  config get <path> Read one value from the resolved configuration

Journal Commands:
  journal list      Show recently processed commands

General:
  version           Show version information
  help              Show this help message

Use 'biobridge <noun> help' for resource-specific flags.
`)
}

// --- NOUN DISPATCHERS ---

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		printSystemNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSystemNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "start":
		if hasHelpFlag(actionArgs) {
			printSystemStartHelp()
			return 0
		}
		return runStart(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	case "lock":
		if hasHelpFlag(actionArgs) {
			printConfigLockHelp()
			return 0
		}
		return runConfigLock(actionArgs)
	case "show":
		if hasHelpFlag(actionArgs) {
			printConfigShowHelp()
			return 0
		}
		return runConfigShow(actionArgs)
	case "get":
		if hasHelpFlag(actionArgs) {
			printConfigGetHelp()
			return 0
		}
		return runConfigGet(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func runJournalNoun(args []string) int {
	if len(args) < 1 {
		printJournalNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printJournalNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "list":
		if hasHelpFlag(actionArgs) {
			printJournalListHelp()
			return 0
		}
		return runJournalList(actionArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown journal action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printSystemNounHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: biobridge system <action>")
	fmt.Fprintln(w, "Actions: start")
}

func printConfigNounHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: biobridge config <action> [flags]")
	fmt.Fprintln(w, "Actions: check, lock, show, get")
}

func printJournalNounHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: biobridge journal <action> [flags]")
	fmt.Fprintln(w, "Actions: list")
}

func printSystemStartHelp() {
	fmt.Println("Usage: biobridge system start [--config PATH] [--fetch-on-start]")
	fmt.Println("Start the executor in the foreground.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: biobridge config check [--config PATH] [--strict]")
	fmt.Println("Validate configuration syntax, values, and integrity.")
}

func printConfigLockHelp() {
	fmt.Println("Usage: biobridge config lock [--config PATH]")
	fmt.Println("Authorize the current configuration by regenerating its integrity hash.")
}

func printConfigShowHelp() {
	fmt.Println("Usage: biobridge config show [--config PATH] [--json]")
	fmt.Println("Print the resolved configuration with secrets redacted.")
}

func printConfigGetHelp() {
	fmt.Println("Usage: biobridge config get <path> [--config PATH] [--json]")
	fmt.Println("Read a single value from the resolved configuration.")
}

func printJournalListHelp() {
	fmt.Println("Usage: biobridge journal list [--config PATH] [--limit N] [--json]")
	fmt.Println("Show the most recently processed commands, newest first.")
}

// --- ACTION IMPLEMENTATIONS ---

func resolveConfigPath(configPath string) (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	discovered, err := config.DiscoverConfigPath()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(os.Stderr, "Using discovered config: %s\n", discovered)
	return discovered, nil
}

func loadConfigForTool(configPath string) (*config.Config, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func runConfigCheck(args []string) int {
	var configPath string
	var strict bool

	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	fs.BoolVar(&strict, "strict", false, "Treat warnings as errors")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	path, err := resolveConfigPath(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config check FAILED: %v\n", err)
		return 1
	}

	integrity, err := config.VerifyIntegrity(cfg.SourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Integrity check error: %v\n", err)
		return 1
	}
	for _, w := range integrity.Warnings {
		fmt.Printf("WARN %s\n", w)
	}

	fmt.Printf("Config: %s\n", cfg.SourcePath)
	fmt.Printf("Backend: %s\n", cfg.Backend.BaseURL)
	if cfg.Realtime.URL != "" {
		fmt.Printf("Realtime: %s (room %s)\n", cfg.Realtime.URL, cfg.Realtime.Room)
	} else {
		fmt.Println("Realtime: disabled")
	}
	fmt.Printf("Fetch schedule: every %s\n", cfg.Schedule.Fetch.Every)

	if strict && len(integrity.Warnings) > 0 {
		fmt.Println("Status: Configuration check FAILED (strict mode, warnings present).")
		return 2
	}
	fmt.Println("Status: Configuration check PASSED.")
	return 0
}

func runConfigLock(args []string) int {
	var configPath string

	fs := flag.NewFlagSet("lock", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	path, err := resolveConfigPath(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	// Lock only what parses; a locked invalid config would fail at start anyway.
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Read error: %v\n", err)
		return 1
	}
	if _, err := config.Parse(data); err != nil {
		fmt.Fprintf(os.Stderr, "Refusing to lock invalid config: %v\n", err)
		return 1
	}

	manifest, err := config.GenerateChecksums(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock failed: %v\n", err)
		return 1
	}
	fmt.Printf("Locked %s (manifest: %s)\n", path, manifest)
	return 0
}

func runConfigShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}
	redactSecrets(cfg)

	if *jsonOut {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encode error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Encode error: %v\n", err)
		return 1
	}
	fmt.Print(string(data))
	return 0
}

func runConfigGet(args []string) int {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")

	// Allow flags after the positional path.
	var path string
	var flagArgs []string
	for _, arg := range args {
		if path == "" && !strings.HasPrefix(arg, "-") && !isFlagValue(flagArgs) {
			path = arg
			continue
		}
		flagArgs = append(flagArgs, arg)
	}
	if err := fs.Parse(flagArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "Usage: biobridge config get <path> [--config PATH] [--json]")
		return 1
	}

	cfg, err := loadConfigForTool(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}
	redactSecrets(cfg)

	val, err := cfg.GetPath(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encode error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}
	if _, ok := val.(map[string]any); ok {
		data, _ := yaml.Marshal(val)
		fmt.Print(string(data))
		return 0
	}
	fmt.Printf("%v\n", val)
	return 0
}

// isFlagValue reports whether the next argument is the value of a
// preceding "--config" flag.
func isFlagValue(seen []string) bool {
	if len(seen) == 0 {
		return false
	}
	last := seen[len(seen)-1]
	return last == "--config" || last == "-config"
}

func redactSecrets(cfg *config.Config) {
	if cfg.Backend.Token != "" {
		cfg.Backend.Token = redacted
	}
	if cfg.API.Auth.APIKey != "" {
		cfg.API.Auth.APIKey = redacted
	}
}

func runJournalList(args []string) int {
	var configPath string
	var limit int
	var jsonOut bool

	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	fs.IntVar(&limit, "limit", journal.DefaultLimit, "Maximum entries to show")
	fs.BoolVar(&jsonOut, "json", false, "Output in JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if limit <= 0 || limit > journal.MaxLimit {
		fmt.Fprintf(os.Stderr, "--limit must be between 1 and %d\n", journal.MaxLimit)
		return 1
	}

	cfg, err := loadConfigForTool(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Load error: %v\n", err)
		return 1
	}

	ctx := context.Background()
	db, err := storage.OpenSQLite(ctx, cfg.State.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	entries, err := journal.NewStore(db).Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Journal read failed: %v\n", err)
		return 1
	}

	if jsonOut {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Encode error: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}
	printJournal(os.Stdout, entries)
	return 0
}

func printJournal(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No commands recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPLETED\tCOMMAND\tKIND\tRESULT\tDETAIL")
	for _, e := range entries {
		detail := e.Detail
		if e.ReportError != "" {
			detail += " (report failed: " + e.ReportError + ")"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.CompletedAt.Local().Format(time.DateTime),
			e.CommandID,
			e.Kind,
			strings.ToUpper(string(e.Result)),
			detail,
		)
	}
	_ = tw.Flush()
}
