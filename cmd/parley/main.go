package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	Config   string `help:"Path to config file" type:"path"`
	BaseURL  string `env:"PARLEY_BASE_URL" help:"Prompt hub base URL"`
	Token    string `env:"PARLEY_BEARER_TOKEN" help:"Bearer token"`
	LogLevel string `default:"warn" help:"Log level"`

	Chat         ChatCmd         `cmd:"" default:"1" help:"Start the interactive chat TUI (default)"`
	Send         SendCmd         `cmd:"" help:"Send a single message and print the reply"`
	Conversation ConversationCmd `cmd:"" help:"Conversation management"`
	Participants ParticipantsCmd `cmd:"" help:"Participant catalog"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("parley"),
		kong.Description("Multi-participant chat over a prompt hub"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
