package validation

import (
	"time"

	"github.com/induslogic/isapa/internal/domain"
)

// Record is an archived validation run.
type Record struct {
	ID             string          `json:"id"`
	Signs          []domain.SignID `json:"signs"`
	Result         Result          `json:"result"`
	GrammarName    string          `json:"grammar_name"`
	GrammarVersion string          `json:"grammar_version"`
	CollectAll     bool            `json:"collect_all"`
	CreatedAt      time.Time       `json:"created_at"`
}
