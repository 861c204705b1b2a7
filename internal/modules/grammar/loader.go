package grammar

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// Loader handles loading grammar packs from TOML files.
type Loader struct {
	log zerolog.Logger
}

// NewLoader creates a new pack loader.
func NewLoader(log zerolog.Logger) *Loader {
	return &Loader{
		log: log.With().Str("component", "pack_loader").Logger(),
	}
}

// LoadFromFile loads a grammar pack from a TOML file.
func (l *Loader) LoadFromFile(packPath string) (*Pack, error) {
	l.log.Info().Str("path", packPath).Msg("Loading grammar pack")

	// Check if file exists
	if _, err := os.Stat(packPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("pack file not found: %s", packPath)
	}

	// Read and decode TOML file
	var pack Pack
	if _, err := toml.DecodeFile(packPath, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse TOML pack: %w", err)
	}

	if err := pack.Validate(); err != nil {
		return nil, fmt.Errorf("pack %s: %w", packPath, err)
	}

	// Log loaded pack summary
	l.log.Info().
		Str("name", pack.Name).
		Str("version", pack.Version).
		Int("signs", len(pack.Signs)).
		Int("forbidden_transitions", len(pack.Rules.ForbiddenTransitions)).
		Msg("Grammar pack loaded successfully")

	return &pack, nil
}

// LoadFromString loads a grammar pack from a TOML string.
// This is useful for loading packs stored in the database.
func (l *Loader) LoadFromString(tomlString string) (*Pack, error) {
	l.log.Debug().Msg("Loading grammar pack from string")

	var pack Pack
	if _, err := toml.Decode(tomlString, &pack); err != nil {
		return nil, fmt.Errorf("failed to parse TOML pack: %w", err)
	}

	if err := pack.Validate(); err != nil {
		return nil, err
	}

	l.log.Info().
		Str("name", pack.Name).
		Msg("Grammar pack loaded from string")

	return &pack, nil
}

// SaveToFile saves a grammar pack to a TOML file.
func (l *Loader) SaveToFile(pack *Pack, packPath string) error {
	l.log.Info().
		Str("path", packPath).
		Str("name", pack.Name).
		Msg("Saving grammar pack")

	// Create file
	file, err := os.Create(packPath)
	if err != nil {
		return fmt.Errorf("failed to create pack file: %w", err)
	}
	defer file.Close()

	// Encode to TOML
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(pack); err != nil {
		return fmt.Errorf("failed to encode pack to TOML: %w", err)
	}

	l.log.Info().Msg("Grammar pack saved successfully")
	return nil
}

// ToString converts a grammar pack to a TOML string.
func (l *Loader) ToString(pack *Pack) (string, error) {
	var buffer string
	encoder := toml.NewEncoder(&stringWriter{buf: &buffer})
	if err := encoder.Encode(pack); err != nil {
		return "", fmt.Errorf("failed to encode pack to TOML: %w", err)
	}
	return buffer, nil
}

// stringWriter is a simple writer that writes to a string.
type stringWriter struct {
	buf *string
}

func (sw *stringWriter) Write(p []byte) (n int, err error) {
	*sw.buf += string(p)
	return len(p), nil
}
