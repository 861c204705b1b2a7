package grammar

import (
	"errors"
	"testing"

	"github.com/induslogic/isapa/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultGrammar(t *testing.T) *Grammar {
	t.Helper()
	g, err := Default()
	require.NoError(t, err)
	return g
}

func TestDefaultPack(t *testing.T) {
	pack, err := DefaultPack()
	require.NoError(t, err)

	assert.Equal(t, "mahadevan-administrative", pack.Name)
	assert.Len(t, pack.Signs, 12)
	assert.Equal(t, 1, pack.Rules.MinLength)
	assert.Equal(t, 0, pack.Rules.MaxLength)
	assert.Empty(t, pack.Rules.ForbiddenTransitions)
}

func TestDefaultGrammarRoles(t *testing.T) {
	g := defaultGrammar(t)

	tests := []struct {
		name string
		id   domain.SignID
		want domain.Role
	}{
		{"JAR is the terminal seal", 342, domain.RoleCloser},
		{"MARKED_JAR opens a batch", 343, domain.RoleOpener},
		{"UNICORN opens a batch", 456, domain.RoleOpener},
		{"FISH is a payload", 59, domain.RolePayload},
		{"STROKE is a quantity", 789, domain.RoleQuantity},
		{"ARROW switches direction", 99, domain.RoleDirectionSwitch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := g.ResolveRole(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}

func TestResolveRoleUnknownSign(t *testing.T) {
	g := defaultGrammar(t)

	_, err := g.ResolveRole(905)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownSign))
}

func TestIsRole(t *testing.T) {
	g := defaultGrammar(t)

	assert.True(t, g.IsRole(343, domain.RoleOpener))
	assert.True(t, g.IsRole(342, domain.RoleCloser))
	assert.False(t, g.IsRole(342, domain.RoleOpener))
	assert.False(t, g.IsRole(905, domain.RolePayload))
}

func TestFromPackValidation(t *testing.T) {
	base := func() *Pack {
		return &Pack{
			Name:    "test",
			Version: "1",
			Signs: []SignEntry{
				{ID: 1, Name: "A", Role: "OPENER"},
				{ID: 2, Name: "B", Role: "CLOSER"},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Pack)
	}{
		{"empty name", func(p *Pack) { p.Name = "" }},
		{"no signs", func(p *Pack) { p.Signs = nil }},
		{"duplicate id", func(p *Pack) { p.Signs = append(p.Signs, SignEntry{ID: 1, Name: "C", Role: "PAYLOAD"}) }},
		{"unknown role", func(p *Pack) { p.Signs[0].Role = "HEADER" }},
		{"nameless sign", func(p *Pack) { p.Signs[0].Name = "" }},
		{"negative min length", func(p *Pack) { p.Rules.MinLength = -1 }},
		{"max below min", func(p *Pack) { p.Rules.MinLength = 5; p.Rules.MaxLength = 2 }},
		{"bad forbidden role", func(p *Pack) {
			p.Rules.ForbiddenTransitions = []TransitionRule{{From: "QUANTITY", To: "NONSENSE"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pack := base()
			tt.mutate(pack)
			_, err := FromPack(pack)
			assert.Error(t, err)
		})
	}

	_, err := FromPack(nil)
	assert.Error(t, err)
}

func TestCanFollow(t *testing.T) {
	g := defaultGrammar(t)

	tests := []struct {
		name string
		a, b domain.SignID
		want bool
	}{
		{"payload then quantity", 59, 789, true},
		{"quantity run", 789, 789, true},
		{"payload then payload", 59, 211, true},
		{"closer is a sink", 342, 59, false},
		{"closer then closer", 342, 344, false},
		{"opener after payload", 59, 343, false},
		{"opener after direction switch", 99, 343, true},
		{"quantity after opener", 343, 789, false},
		{"quantity after direction switch", 99, 789, true},
		{"unknown signs are permissive", 905, 59, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.CanFollow(tt.a, tt.b))
		})
	}
}

func TestForbiddenTransitions(t *testing.T) {
	pack, err := DefaultPack()
	require.NoError(t, err)
	pack.Rules.ForbiddenTransitions = []TransitionRule{
		{From: "QUANTITY", To: "DIRECTION_SWITCH"},
	}

	g, err := FromPack(pack)
	require.NoError(t, err)

	assert.True(t, g.IsForbidden(domain.RoleQuantity, domain.RoleDirectionSwitch))
	assert.False(t, g.IsForbidden(domain.RolePayload, domain.RoleQuantity))

	// Stroke into arrow becomes illegal under this pack
	assert.False(t, g.CanFollow(789, 99))
	assert.True(t, g.CanFollow(59, 99))
}

func TestLoaderStringRoundTrip(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	pack, err := DefaultPack()
	require.NoError(t, err)

	encoded, err := loader.ToString(pack)
	require.NoError(t, err)

	decoded, err := loader.LoadFromString(encoded)
	require.NoError(t, err)

	assert.Equal(t, pack.Name, decoded.Name)
	assert.Equal(t, pack.Version, decoded.Version)
	assert.Len(t, decoded.Signs, len(pack.Signs))
}

func TestLoaderFileNotFound(t *testing.T) {
	loader := NewLoader(zerolog.Nop())

	_, err := loader.LoadFromFile("/nonexistent/pack.toml")
	assert.Error(t, err)
}

func TestSignsSortedByID(t *testing.T) {
	g := defaultGrammar(t)

	signs := g.Signs()
	require.NotEmpty(t, signs)
	for i := 1; i < len(signs); i++ {
		assert.Less(t, signs[i-1].ID, signs[i].ID)
	}
}
