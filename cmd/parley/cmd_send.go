package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/parleychat/parley/src/app"
	"github.com/parleychat/parley/src/chat"
	"github.com/parleychat/parley/src/chatsdk"
	"github.com/parleychat/parley/src/hubclient"
)

// SendCmd sends a single message and prints the reply.
type SendCmd struct {
	Message     string   `arg:"" help:"Message text"`
	Participant []string `short:"p" help:"Participant spec alias:model_name:integration_uid (repeatable)" required:""`
	Target      string   `short:"t" help:"Display name of the participant to address"`
	NoStream    bool     `help:"Request a complete reply instead of streaming"`
	ShowTarget  bool     `help:"Print the resolved target before the reply"`
}

// Run executes the send command
func (c *SendCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	logger := createCLILogger(cfg.LogLevel)

	instance, err := app.New(context.Background(), cfg, app.Options{
		Streaming: !c.NoStream,
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer instance.Close()

	participants, err := parseParticipants(c.Participant)
	if err != nil {
		return err
	}

	instance.Store.SetActive(chatsdk.Conversation{
		Name:         "one-shot",
		IsPrivate:    true,
		Source:       "parley",
		Participants: participants,
	})

	var explicit *chatsdk.Participant
	if c.Target != "" {
		matched := chat.FilterRoster(participants, c.Target)
		if len(matched) == 0 {
			return fmt.Errorf("no participant matches %q", c.Target)
		}
		explicit = &matched[0]
	}

	target, err := instance.Controller.ResolveTarget(explicit)
	if err != nil {
		return err
	}
	if c.ShowTarget {
		fmt.Fprintf(os.Stderr, "-> @%s\n", target.DisplayName())
	}

	final, err := instance.Controller.Send(context.Background(), c.Message, explicit, nil)
	if err != nil {
		// The failed reply still carries the apology text; show it the way
		// the transcript would.
		if final.State == chatsdk.StateFailed {
			fmt.Println(final.Content)
		}
		var apiErr *hubclient.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("hub rejected the request: %w", err)
		}
		return err
	}

	fmt.Println(final.Content)
	return nil
}
