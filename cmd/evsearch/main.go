package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/usestring/everything-mcp/pkg/everything"
)

const (
	defaultLimit   = 100
	defaultTimeout = 5 * time.Second
)

func main() {
	app := &cli.App{
		Name:  "evsearch",
		Usage: "Query the Everything index from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query string to search for; positional arg is a fallback",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of results to return",
				Value:   defaultLimit,
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Results fetched per IPC round trip",
			},
			&cli.BoolFlag{
				Name:    "whole-word",
				Aliases: []string{"w"},
				Usage:   "Match whole words only",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for each IPC round trip",
				Value: defaultTimeout,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON instead of one path per line",
			},
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Report service status instead of searching",
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context

	client := everything.New()

	if c.Bool("status") {
		return printStatus(client, c.Bool("json"))
	}

	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(c.Args().First())
	}

	limit := c.Int("limit")
	if limit <= 0 {
		slog.WarnContext(ctx, "limit must be positive; falling back to default", "limit", limit, "default", defaultLimit)
		limit = defaultLimit
	}

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.WarnContext(ctx, "timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}

	opts := []everything.SearchOption{
		everything.WithMaxResults(limit),
		everything.WithPageTimeout(timeout),
	}
	if ps := c.Int("page-size"); ps > 0 {
		opts = append(opts, everything.WithPageSize(ps))
	}
	if c.Bool("whole-word") {
		opts = append(opts, everything.WithWholeWord(true))
	}

	resp, err := client.Search(ctx, query, opts...)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.Bool("json") {
		return printJSON(resp)
	}
	for _, r := range resp.Results {
		fmt.Println(r.FullPath)
	}
	if resp.Total > len(resp.Results) {
		fmt.Fprintf(os.Stderr, "showing %d of %d matches\n", len(resp.Results), resp.Total)
	}
	return nil
}

func printJSON(resp *everything.Response) error {
	payload := struct {
		Total   int                 `json:"total"`
		Results []everything.Result `json:"results"`
	}{
		Total:   resp.Total,
		Results: resp.Results,
	}
	if payload.Results == nil {
		payload.Results = []everything.Result{}
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	fmt.Println(string(data))
	return nil
}

func printStatus(client *everything.Client, asJSON bool) error {
	running, reason := client.CheckStatus()
	exe, _ := client.FindExecutable()
	version, _ := client.Version()

	if asJSON {
		payload := struct {
			Running    bool   `json:"running"`
			Reason     string `json:"reason,omitempty"`
			Executable string `json:"executable,omitempty"`
			Version    string `json:"version,omitempty"`
		}{Running: running, Executable: exe, Version: version}
		if !running {
			payload.Reason = reason.String()
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if running {
		fmt.Println("Everything service: running")
	} else {
		fmt.Printf("Everything service: not running (%s)\n", reason)
	}
	if exe != "" {
		fmt.Printf("executable: %s\n", exe)
	}
	if version != "" {
		fmt.Printf("version: %s\n", version)
	}
	return nil
}
