// Command toolwire converts Anchor IDLs to compact discovery schemas and
// serves a schema catalog over HTTP.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/jonwraymond/toolwire/anchoridl"
	"github.com/jonwraymond/toolwire/catalog"
	"github.com/jonwraymond/toolwire/gateway"
)

const version = "0.1.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		printHelp(out)
		return 0
	}

	switch args[0] {
	case "convert":
		return runConvert(args[1:], out, errOut)
	case "serve":
		return runServe(args[1:], errOut)
	case "version", "--version":
		fmt.Fprintf(out, "toolwire %s\n", version)
		return 0
	case "help", "--help", "-h":
		printHelp(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command %q\n\n", args[0])
		printHelp(errOut)
		return 2
	}
}

func runConvert(args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(errOut)
	input := fs.String("input", "", "Input IDL file (use - for stdin)")
	output := fs.String("output", "", "Output file (defaults to stdout)")
	pretty := fs.Bool("pretty", false, "Pretty print the output JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *input == "" {
		fmt.Fprintln(errOut, "convert: -input is required (use - for stdin)")
		return 2
	}

	var idlJSON []byte
	var err error
	if *input == "-" {
		idlJSON, err = io.ReadAll(os.Stdin)
	} else {
		idlJSON, err = os.ReadFile(*input)
	}
	if err != nil {
		fmt.Fprintf(errOut, "convert: read input: %v\n", err)
		return 1
	}

	compact, err := anchoridl.ConvertJSON(idlJSON)
	if err != nil {
		fmt.Fprintf(errOut, "convert: %v\n", err)
		return 1
	}

	result := compact
	if *pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, compact, "", "  "); err != nil {
			fmt.Fprintf(errOut, "convert: pretty print: %v\n", err)
			return 1
		}
		result = buf.Bytes()
	}

	if *output != "" {
		if err := os.WriteFile(*output, result, 0o644); err != nil {
			fmt.Fprintf(errOut, "convert: write output: %v\n", err)
			return 1
		}
		fmt.Fprintf(errOut, "wrote schema to %s\n", *output)
		return 0
	}

	fmt.Fprintf(out, "%s\n", result)
	return 0
}

func runServe(args []string, errOut io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "toolwire.yaml", "Path to gateway config")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := gateway.LoadConfig(*configPath)
	if err != nil {
		logger.Error("load config", "error", err)
		return 1
	}

	var store catalog.Store
	if cfg.Database != "" {
		db, err := catalog.OpenSQLite(cfg.Database)
		if err != nil {
			logger.Error("open catalog", "error", err)
			return 1
		}
		defer db.Close()
		store = db
	} else {
		store = catalog.NewInMemoryStore()
	}

	g, err := gateway.New(cfg, store, logger)
	if err != nil {
		logger.Error("build gateway", "error", err)
		return 1
	}

	logger.Info("listening", "addr", cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, g.Router()); err != nil {
		logger.Error("serve", "error", err)
		return 1
	}
	return 0
}

func printHelp(out io.Writer) {
	helpText := `toolwire - compact on-chain tool discovery

Usage:
  toolwire <command> [options]

Commands:
  convert      Convert an Anchor IDL to a compact discovery schema
  serve        Serve a schema catalog over HTTP
  version      Show version information

Examples:
  toolwire convert -input target/idl/counter.json -pretty
  cat idl.json | toolwire convert -input -
  toolwire serve -config toolwire.yaml`
	fmt.Fprintln(out, helpText)
}
