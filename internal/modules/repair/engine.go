package repair

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/induslogic/isapa/internal/domain"
	"github.com/induslogic/isapa/internal/events"
	"github.com/induslogic/isapa/internal/modules/corpus"
	"github.com/induslogic/isapa/internal/modules/grammar"
)

// maxPredictions caps the candidate list returned per gap.
const maxPredictions = 3

// illegalAdjacencyPenalty discounts candidates whose placement the grammar
// rejects. Applied once per violated side.
const illegalAdjacencyPenalty = 0.1

// ModelProvider hands out the current transition model snapshot.
type ModelProvider interface {
	Model() *corpus.TransitionModel
}

// Engine predicts plausible signs for damaged sequence positions by
// combining corpus transition probabilities with grammar adjacency rules.
type Engine struct {
	grammar      *grammar.Grammar
	models       ModelProvider
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewEngine creates a new repair engine
func NewEngine(g *grammar.Grammar, models ModelProvider, eventManager *events.Manager, log zerolog.Logger) *Engine {
	return &Engine{
		grammar:      g,
		models:       models,
		eventManager: eventManager,
		log:          log.With().Str("service", "repair").Logger(),
	}
}

// Prediction is one candidate restoration of a damaged position.
type Prediction struct {
	Sign       domain.SignID `json:"sign"`
	Name       string        `json:"name"`
	Confidence float64       `json:"confidence"`
	Logic      string        `json:"logic"`
}

// Predict proposes up to three candidates for the sign at gapIndex. The
// value at signs[gapIndex] is ignored; context comes from its neighbors.
// A candidate scores P(pre -> cand) * P(cand -> post), discounted for every
// adjacency the grammar forbids. Gaps at the sequence edge have only one
// neighbor and an unobserved side contributes no probability mass, so they
// yield no candidates.
func (e *Engine) Predict(signs []domain.SignID, gapIndex int) ([]Prediction, error) {
	if gapIndex < 0 || gapIndex >= len(signs) {
		return nil, fmt.Errorf("gap index %d out of range for sequence of length %d", gapIndex, len(signs))
	}

	model := e.models.Model()

	hasPre := gapIndex > 0
	hasPost := gapIndex < len(signs)-1

	var pre, post domain.SignID
	if hasPre {
		pre = signs[gapIndex-1]
	}
	if hasPost {
		post = signs[gapIndex+1]
	}

	var predictions []Prediction
	for _, cand := range e.grammar.Signs() {
		var pPre, pPost float64
		if hasPre {
			pPre = model.Probability(pre, cand.ID)
		}
		if hasPost {
			pPost = model.Probability(cand.ID, post)
		}

		confidence := pPre * pPost
		if confidence <= 0 {
			continue
		}

		if hasPre && !e.grammar.CanFollow(pre, cand.ID) {
			confidence *= illegalAdjacencyPenalty
		}
		if hasPost && !e.grammar.CanFollow(cand.ID, post) {
			confidence *= illegalAdjacencyPenalty
		}

		logic := fmt.Sprintf("P(%s→%s)=%.2f * P(%s→%s)=%.2f",
			e.grammar.NameOf(pre), cand.Name, pPre,
			cand.Name, e.grammar.NameOf(post), pPost)

		predictions = append(predictions, Prediction{
			Sign:       cand.ID,
			Name:       cand.Name,
			Confidence: confidence,
			Logic:      logic,
		})
	}

	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].Confidence != predictions[j].Confidence {
			return predictions[i].Confidence > predictions[j].Confidence
		}
		return predictions[i].Sign < predictions[j].Sign
	})

	if len(predictions) > maxPredictions {
		predictions = predictions[:maxPredictions]
	}

	e.log.Debug().
		Int("gap_index", gapIndex).
		Int("candidates", len(predictions)).
		Msg("Gap prediction computed")

	e.eventManager.Emit(events.PredictionMade, "repair", map[string]interface{}{
		"gap_index":  gapIndex,
		"candidates": len(predictions),
	})

	return predictions, nil
}
