package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/parleychat/parley/src/app"
	"github.com/parleychat/parley/src/chatsdk"
	"github.com/parleychat/parley/src/tui"
)

// ChatCmd starts the interactive chat TUI.
type ChatCmd struct {
	Participant []string `short:"p" help:"Participant spec alias:model_name:integration_uid (repeatable)" required:""`
	Name        string   `help:"Conversation name" default:"New Conversation"`
	NoStream    bool     `help:"Request complete replies instead of streaming"`
	Remote      bool     `help:"Also create the conversation on the hub"`
}

// Run executes the chat command
func (c *ChatCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return err
	}

	logger := createTUILogger(cfg.LogLevel)

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

	conversation := chatsdk.Conversation{
		Name:         c.Name,
		IsPrivate:    true,
		Source:       "parley",
		Participants: participants,
	}

	if c.Remote {
		created, err := instance.Hub.CreateConversation(context.Background(), conversation)
		if err != nil {
			return fmt.Errorf("failed to create conversation: %w", err)
		}
		conversation.ID = created.ID
		if _, err := instance.Hub.AddParticipants(context.Background(), created.ID, participants); err != nil {
			return fmt.Errorf("failed to add participants: %w", err)
		}
	}

	instance.Store.SetActive(conversation)

	return tui.Run(instance.Store, instance.Controller, logger)
}
