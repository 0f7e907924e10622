package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/parleychat/parley/src/app"
	"github.com/parleychat/parley/src/chatsdk"
)

// ConversationCmd manages conversations on the hub
type ConversationCmd struct {
	New ConversationNewCmd `cmd:"" help:"Create a conversation"`
}

// ConversationNewCmd creates a conversation on the hub
type ConversationNewCmd struct {
	Name        string   `arg:"" help:"Conversation name"`
	Participant []string `short:"p" help:"Participant spec alias:model_name:integration_uid (repeatable)"`
	Attach      []int    `help:"Catalog entry ids to attach as participants (repeatable)"`
	Public      bool     `help:"Create a public conversation"`
}

// Run executes the conversation new command
func (c *ConversationNewCmd) Run(ctx *kong.Context, cli *CLI) error {
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

	participants, err := parseParticipants(c.Participant)
	if err != nil {
		return err
	}

	created, err := instance.Hub.CreateConversation(context.Background(), chatsdk.Conversation{
		Name:         c.Name,
		IsPrivate:    !c.Public,
		Source:       "parley",
		Participants: participants,
	})
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}

	if len(participants) > 0 {
		if _, err := instance.Hub.AddParticipants(context.Background(), created.ID, participants); err != nil {
			return fmt.Errorf("failed to add participants: %w", err)
		}
	}

	for _, catalogID := range c.Attach {
		if err := instance.Hub.AttachCatalogParticipant(context.Background(), created.ID, catalogID); err != nil {
			return fmt.Errorf("failed to attach catalog entry %d: %w", catalogID, err)
		}
	}

	fmt.Printf("Created conversation %d (%s)\n", created.ID, created.Name)
	return nil
}
