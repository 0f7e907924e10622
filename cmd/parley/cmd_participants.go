package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/alecthomas/kong"

	"github.com/parleychat/parley/src/app"
	"github.com/parleychat/parley/src/chatsdk"
)

// ParticipantsCmd browses the participant catalog
type ParticipantsCmd struct {
	List ParticipantsListCmd `cmd:"" help:"List catalog entries"`
}

// ParticipantsListCmd lists participant catalog entries
type ParticipantsListCmd struct {
	Format  string `help:"Output format (table, json)" default:"table"`
	Limit   int    `help:"Maximum number of entries" default:"0"`
	Refresh bool   `help:"Bypass the local cache"`
}

// Run executes the participants list command
func (c *ParticipantsListCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	logger := createCLILogger(cfg.LogLevel)

	instance, err := app.New(context.Background(), cfg, app.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer instance.Close()

	limit := c.Limit
	if limit <= 0 {
		limit = cfg.CatalogLimit
	}

	entries, err := instance.Catalog.Entries(context.Background(), limit, c.Refresh)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}

	switch c.Format {
	case "json":
		return printEntriesJSON(entries)
	case "table":
		return printEntriesTable(entries)
	default:
		return fmt.Errorf("invalid format: %s", c.Format)
	}
}

func printEntriesJSON(entries []chatsdk.CatalogEntry) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func printEntriesTable(entries []chatsdk.CatalogEntry) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDESCRIPTION")
	for _, e := range entries {
		desc := e.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.Name, e.Status, desc)
	}
	return w.Flush()
}
