package main

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/parleychat/parley/src/chatsdk"
	"github.com/parleychat/parley/src/config"
)

// loadConfig loads the config file and applies top-level CLI overrides.
func loadConfig(cli *CLI) (*config.Config, error) {
	path := cli.Config
	if path == "" {
		path = config.DefaultPath()
	}

	loader := config.NewLoader(afero.NewOsFs())
	cfg, err := loader.Load(path)
	if err != nil {
		// Flag overrides may supply the missing credentials, so retry
		// validation after applying them.
		if cli.BaseURL == "" && cli.Token == "" {
			return nil, err
		}
		cfg, err = loader.LoadUnvalidated(path)
		if err != nil {
			return nil, err
		}
		applyFlags(cfg, cli)
		if err := loader.Validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	applyFlags(cfg, cli)
	return cfg, nil
}

func applyFlags(cfg *config.Config, cli *CLI) {
	if cli.BaseURL != "" {
		cfg.BaseURL = cli.BaseURL
	}
	if cli.Token != "" {
		cfg.BearerToken = cli.Token
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
}

// parseParticipant parses an "alias:model_name:integration_uid" spec into a
// participant with default generation settings.
func parseParticipant(spec string) (chatsdk.Participant, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return chatsdk.Participant{}, fmt.Errorf("invalid participant spec %q, want alias:model_name:integration_uid", spec)
	}
	return chatsdk.Participant{
		EntityName: parts[0],
		EntityMeta: chatsdk.EntityMeta{
			Name:           parts[0],
			ModelName:      parts[1],
			IntegrationUID: parts[2],
		},
		EntitySettings: chatsdk.EntitySettings{
			MaxTokens:   1024,
			TopP:        0.5,
			TopK:        20,
			Temperature: 0.7,
		},
	}, nil
}

func parseParticipants(specs []string) ([]chatsdk.Participant, error) {
	participants := make([]chatsdk.Participant, 0, len(specs))
	for _, spec := range specs {
		p, err := parseParticipant(spec)
		if err != nil {
			return nil, err
		}
		if err := chatsdk.ValidateParticipant(p); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, nil
}
