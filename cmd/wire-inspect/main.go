// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/caswire/lib/capture"
	"github.com/bureau-foundation/caswire/lib/codec"
	"github.com/bureau-foundation/caswire/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Handle --version before flag parsing to match other caswire
	// binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("wire-inspect %s\n", version.Info())
		return nil
	}

	var formatFlag string
	var configPath string
	var maxDump int

	flagSet := pflag.NewFlagSet("wire-inspect", pflag.ContinueOnError)
	flagSet.StringVar(&formatFlag, "format", "", "payload rendering: hex, diag, or json")
	flagSet.StringVar(&configPath, "config", "", "YAML config file (default: $WIRE_INSPECT_CONFIG)")
	flagSet.IntVar(&maxDump, "max-dump", -1, "max payload bytes rendered per record (0 = unlimited)")
	flagSet.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: wire-inspect [flags] <transcript-file>\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return fmt.Errorf("expected exactly one transcript file, got %d arguments", flagSet.NArg())
	}

	config, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if formatFlag != "" {
		config.Format = formatFlag
	}
	if maxDump >= 0 {
		config.MaxPayloadDump = maxDump
	}
	switch config.Format {
	case "hex", "diag", "json":
	default:
		return fmt.Errorf("unknown format %q", config.Format)
	}

	path := flagSet.Arg(0)
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening transcript: %w", err)
	}
	defer file.Close()

	reader, err := capture.NewReader(file)
	if err != nil {
		return err
	}
	defer reader.Close()

	return printTranscript(os.Stdout, reader, config)
}

// jsonRecord is the --format=json output shape, one object per line.
type jsonRecord struct {
	Sequence  uint64 `json:"sequence"`
	Direction string `json:"direction"`
	Length    int    `json:"length"`
	Payload   []byte `json:"payload"`
}

func printTranscript(out io.Writer, reader *capture.Reader, config Config) error {
	header := reader.Header()
	if config.Format != "json" {
		fmt.Fprintf(out, "transcript of channel %q, created %s\n",
			header.Channel, time.Unix(header.CreatedUnix, 0).UTC().Format(time.RFC3339))
	}

	encoder := json.NewEncoder(out)
	for {
		record, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if config.Format == "json" {
			err := encoder.Encode(jsonRecord{
				Sequence:  record.Sequence,
				Direction: record.Direction.String(),
				Length:    len(record.Payload),
				Payload:   record.Payload,
			})
			if err != nil {
				return fmt.Errorf("rendering record %d: %w", record.Sequence, err)
			}
			continue
		}

		fmt.Fprintf(out, "\n#%d %s, %d bytes\n", record.Sequence, record.Direction, len(record.Payload))
		payload := record.Payload
		truncated := false
		if config.MaxPayloadDump > 0 && len(payload) > config.MaxPayloadDump {
			payload = payload[:config.MaxPayloadDump]
			truncated = true
		}

		if config.Format == "diag" {
			if notation, err := codec.Diagnose(record.Payload); err == nil {
				fmt.Fprintf(out, "%s\n", notation)
				continue
			}
			// Not CBOR; fall through to the hex dump.
		}
		fmt.Fprint(out, hex.Dump(payload))
		if truncated {
			fmt.Fprintf(out, "... %d more bytes\n", len(record.Payload)-len(payload))
		}
	}
}
