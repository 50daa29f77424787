// DualPlex - Telegram Control Panel for Plex Media Servers
// Copyright 2026 SinCracK
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sincrack/dualplex

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNoServers is returned when no Plex server is configured.
	ErrNoServers = errors.New("at least one Plex server must be configured")

	// ErrNoAllowedIdentity is returned when neither a chat allowlist nor
	// an allowed username is configured: the bot would refuse everyone.
	ErrNoAllowedIdentity = errors.New("telegram: allowed_chat_ids or allowed_username must be set")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks struct tags plus the cross-field rules the tags cannot
// express. It is called by Load; tests call it directly on hand-built
// configs.
func (c *Config) Validate() error {
	if len(c.Servers) == 0 {
		return ErrNoServers
	}

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("field %s failed rule %q", f.Namespace(), f.Tag())
		}
		return err
	}

	if err := validateBotToken(c.Telegram.Token); err != nil {
		return err
	}

	if len(c.Telegram.AllowedChatIDs) == 0 && c.Telegram.AllowedUsername == "" {
		return ErrNoAllowedIdentity
	}

	// Server names are both display keys and Glances pairing keys, so
	// duplicates (case-insensitive) would make reports ambiguous.
	seen := make(map[string]struct{}, len(c.Servers))
	for _, s := range c.Servers {
		key := strings.ToLower(s.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate server name %q", s.Name)
		}
		seen[key] = struct{}{}
	}

	return nil
}

// validateBotToken checks the BotFather token format: numeric bot ID,
// a colon, then the secret.
func validateBotToken(token string) error {
	parts := strings.Split(token, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return errors.New("telegram: invalid bot token format")
	}
	for _, r := range parts[0] {
		if r < '0' || r > '9' {
			return errors.New("telegram: invalid bot token format")
		}
	}
	return nil
}
