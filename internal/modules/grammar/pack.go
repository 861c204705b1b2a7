package grammar

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/induslogic/isapa/internal/domain"
)

//go:embed defaults.toml
var defaultPackTOML string

// SignEntry is one catalog row of a grammar pack
type SignEntry struct {
	ID          int64  `toml:"id" json:"id"`
	Name        string `toml:"name" json:"name"`
	Role        string `toml:"role" json:"role"`
	Frequency   int64  `toml:"frequency" json:"frequency"`
	Description string `toml:"description" json:"description"`
}

// TransitionRule is a configured role-pair ban
type TransitionRule struct {
	From string `toml:"from" json:"from"`
	To   string `toml:"to" json:"to"`
}

// RuleSet holds the structural rules of a pack
type RuleSet struct {
	MinLength            int              `toml:"min_length" json:"min_length"`
	MaxLength            int              `toml:"max_length" json:"max_length"` // 0 = unlimited
	ForbiddenTransitions []TransitionRule `toml:"forbidden_transitions" json:"forbidden_transitions"`
}

// Pack is a declarative grammar configuration (TOML)
type Pack struct {
	Name    string      `toml:"name" json:"name"`
	Version string      `toml:"version" json:"version"`
	Rules   RuleSet     `toml:"rules" json:"rules"`
	Signs   []SignEntry `toml:"signs" json:"signs"`
}

// Validate checks pack consistency before a grammar is built from it
func (p *Pack) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("pack name is required")
	}

	if len(p.Signs) == 0 {
		return fmt.Errorf("pack %q contains no signs", p.Name)
	}

	seen := make(map[int64]bool, len(p.Signs))
	for _, s := range p.Signs {
		if s.Name == "" {
			return fmt.Errorf("sign %d has no name", s.ID)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate sign id %d", s.ID)
		}
		seen[s.ID] = true

		if _, err := domain.ParseRole(s.Role); err != nil {
			return fmt.Errorf("sign %d (%s): %w", s.ID, s.Name, err)
		}
	}

	if p.Rules.MinLength < 0 {
		return fmt.Errorf("min_length must be >= 0, got %d", p.Rules.MinLength)
	}
	if p.Rules.MaxLength < 0 {
		return fmt.Errorf("max_length must be >= 0, got %d", p.Rules.MaxLength)
	}
	if p.Rules.MaxLength > 0 && p.Rules.MaxLength < p.Rules.MinLength {
		return fmt.Errorf("max_length %d is smaller than min_length %d", p.Rules.MaxLength, p.Rules.MinLength)
	}

	for _, tr := range p.Rules.ForbiddenTransitions {
		if _, err := domain.ParseRole(tr.From); err != nil {
			return fmt.Errorf("forbidden transition source: %w", err)
		}
		if _, err := domain.ParseRole(tr.To); err != nil {
			return fmt.Errorf("forbidden transition target: %w", err)
		}
	}

	return nil
}

// DefaultPack parses the embedded default pack
func DefaultPack() (*Pack, error) {
	var pack Pack
	if _, err := toml.Decode(defaultPackTOML, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse embedded pack: %w", err)
	}
	if err := pack.Validate(); err != nil {
		return nil, fmt.Errorf("embedded pack invalid: %w", err)
	}
	return &pack, nil
}

// Default builds a grammar from the embedded default pack
func Default() (*Grammar, error) {
	pack, err := DefaultPack()
	if err != nil {
		return nil, err
	}
	return FromPack(pack)
}
