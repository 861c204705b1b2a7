package grammar

import (
	"errors"
	"fmt"
	"sort"

	"github.com/induslogic/isapa/internal/domain"
)

// ErrUnknownSign is returned when a sign id is not in the grammar table
var ErrUnknownSign = errors.New("unknown sign")

type rolePair struct {
	from domain.Role
	to   domain.Role
}

// Grammar is an immutable role table plus structural rules.
// Safe for concurrent use; all lookups are pure.
type Grammar struct {
	name      string
	version   string
	entries   map[domain.SignID]domain.Sign
	rules     RuleSet
	forbidden map[rolePair]bool
}

// FromPack validates a pack and builds a grammar from it
func FromPack(pack *Pack) (*Grammar, error) {
	if pack == nil {
		return nil, fmt.Errorf("pack is required")
	}
	if err := pack.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pack: %w", err)
	}

	entries := make(map[domain.SignID]domain.Sign, len(pack.Signs))
	for _, s := range pack.Signs {
		role, _ := domain.ParseRole(s.Role)
		entries[domain.SignID(s.ID)] = domain.Sign{
			ID:          domain.SignID(s.ID),
			Name:        s.Name,
			Role:        role,
			Frequency:   s.Frequency,
			Description: s.Description,
		}
	}

	forbidden := make(map[rolePair]bool, len(pack.Rules.ForbiddenTransitions))
	for _, tr := range pack.Rules.ForbiddenTransitions {
		from, _ := domain.ParseRole(tr.From)
		to, _ := domain.ParseRole(tr.To)
		forbidden[rolePair{from, to}] = true
	}

	rules := pack.Rules
	rules.ForbiddenTransitions = append([]TransitionRule(nil), pack.Rules.ForbiddenTransitions...)

	return &Grammar{
		name:      pack.Name,
		version:   pack.Version,
		entries:   entries,
		rules:     rules,
		forbidden: forbidden,
	}, nil
}

// Name returns the pack name the grammar was built from
func (g *Grammar) Name() string {
	return g.name
}

// Version returns the pack version
func (g *Grammar) Version() string {
	return g.version
}

// ResolveRole looks up the role of a sign id
func (g *Grammar) ResolveRole(id domain.SignID) (domain.Role, error) {
	entry, ok := g.entries[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownSign, id)
	}
	return entry.Role, nil
}

// IsRole reports whether a sign id resolves to the given role.
// Unknown signs are not any role.
func (g *Grammar) IsRole(id domain.SignID, role domain.Role) bool {
	entry, ok := g.entries[id]
	return ok && entry.Role == role
}

// Entry returns the catalog entry of a sign id
func (g *Grammar) Entry(id domain.SignID) (domain.Sign, bool) {
	entry, ok := g.entries[id]
	return entry, ok
}

// NameOf returns the catalog name of a sign, or SIGN_<id> when unknown
func (g *Grammar) NameOf(id domain.SignID) string {
	if entry, ok := g.entries[id]; ok {
		return entry.Name
	}
	return fmt.Sprintf("SIGN_%d", id)
}

// Signs returns all catalog entries ordered by id
func (g *Grammar) Signs() []domain.Sign {
	signs := make([]domain.Sign, 0, len(g.entries))
	for _, s := range g.entries {
		signs = append(signs, s)
	}
	sort.Slice(signs, func(i, j int) bool { return signs[i].ID < signs[j].ID })
	return signs
}

// SignCount returns the number of signs in the table
func (g *Grammar) SignCount() int {
	return len(g.entries)
}

// Rules returns a copy of the structural rule set
func (g *Grammar) Rules() RuleSet {
	rules := g.rules
	rules.ForbiddenTransitions = append([]TransitionRule(nil), g.rules.ForbiddenTransitions...)
	return rules
}

// IsForbidden reports whether a role transition is banned by the pack
func (g *Grammar) IsForbidden(from, to domain.Role) bool {
	return g.forbidden[rolePair{from, to}]
}

// CanFollow reports whether sign b may directly follow sign a.
// Unknown signs are treated permissively here; strict handling of unknowns
// belongs to sequence validation. The adjacency rules:
//   - a Closer is a sink
//   - an Opener may only follow a direction switch
//   - a Quantity needs a Payload, Quantity or direction switch before it
//   - configured forbidden role pairs
func (g *Grammar) CanFollow(a, b domain.SignID) bool {
	roleA, errA := g.ResolveRole(a)
	roleB, errB := g.ResolveRole(b)
	if errA != nil || errB != nil {
		return true
	}

	if roleA == domain.RoleCloser {
		return false
	}
	if roleB == domain.RoleOpener && roleA != domain.RoleDirectionSwitch {
		return false
	}
	if roleB == domain.RoleQuantity {
		switch roleA {
		case domain.RolePayload, domain.RoleQuantity, domain.RoleDirectionSwitch:
		default:
			return false
		}
	}

	return !g.forbidden[rolePair{roleA, roleB}]
}
