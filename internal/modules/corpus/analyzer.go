package corpus

import (
	"sort"

	"github.com/induslogic/isapa/internal/domain"
)

// TransitionModel holds aggregated bigram counts and answers transition
// probability queries. Immutable once built, safe for concurrent reads.
type TransitionModel struct {
	counts map[domain.SignID]map[domain.SignID]int64
	totals map[domain.SignID]int64
}

// NewTransitionModel creates an empty model.
func NewTransitionModel() *TransitionModel {
	return &TransitionModel{
		counts: make(map[domain.SignID]map[domain.SignID]int64),
		totals: make(map[domain.SignID]int64),
	}
}

// FromCounts builds a model from aggregated bigram rows.
func FromCounts(bigrams []domain.Bigram) *TransitionModel {
	m := NewTransitionModel()
	for _, b := range bigrams {
		if b.Count <= 0 {
			continue
		}
		targets, ok := m.counts[b.Source]
		if !ok {
			targets = make(map[domain.SignID]int64)
			m.counts[b.Source] = targets
		}
		targets[b.Target] += b.Count
		m.totals[b.Source] += b.Count
	}
	return m
}

// Probability returns P(target | source), the share of transitions out of
// source that lead to target. Zero when source was never observed.
func (m *TransitionModel) Probability(source, target domain.SignID) float64 {
	total := m.totals[source]
	if total == 0 {
		return 0
	}
	return float64(m.counts[source][target]) / float64(total)
}

// Count returns the raw observation count for one transition.
func (m *TransitionModel) Count(source, target domain.SignID) int64 {
	return m.counts[source][target]
}

// Transition is one observed continuation of a source sign.
type Transition struct {
	Target      domain.SignID `json:"target"`
	Count       int64         `json:"count"`
	Probability float64       `json:"probability"`
}

// Transitions returns the observed continuations of a sign, most probable
// first.
func (m *TransitionModel) Transitions(source domain.SignID) []Transition {
	targets := m.counts[source]
	if len(targets) == 0 {
		return nil
	}

	total := m.totals[source]
	transitions := make([]Transition, 0, len(targets))
	for target, count := range targets {
		transitions = append(transitions, Transition{
			Target:      target,
			Count:       count,
			Probability: float64(count) / float64(total),
		})
	}

	sort.Slice(transitions, func(i, j int) bool {
		if transitions[i].Probability != transitions[j].Probability {
			return transitions[i].Probability > transitions[j].Probability
		}
		return transitions[i].Target < transitions[j].Target
	})

	return transitions
}

// Sources returns every sign observed as a transition source, ascending.
func (m *TransitionModel) Sources() []domain.SignID {
	sources := make([]domain.SignID, 0, len(m.counts))
	for id := range m.counts {
		sources = append(sources, id)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	return sources
}

// Size returns the number of distinct observed transitions.
func (m *TransitionModel) Size() int {
	n := 0
	for _, targets := range m.counts {
		n += len(targets)
	}
	return n
}

// ExtractBigrams lists the adjacent sign pairs of one sequence in reading
// order. Sequences shorter than two signs contribute nothing.
func ExtractBigrams(signs []domain.SignID) []domain.Bigram {
	if len(signs) < 2 {
		return nil
	}

	bigrams := make([]domain.Bigram, 0, len(signs)-1)
	for i := 0; i < len(signs)-1; i++ {
		bigrams = append(bigrams, domain.Bigram{
			Source: signs[i],
			Target: signs[i+1],
			Count:  1,
		})
	}
	return bigrams
}

// AggregateBigrams folds per-sequence pairs into one count per transition.
func AggregateBigrams(sequences [][]domain.SignID) []domain.Bigram {
	counts := make(map[domain.SignID]map[domain.SignID]int64)
	for _, signs := range sequences {
		for _, b := range ExtractBigrams(signs) {
			targets, ok := counts[b.Source]
			if !ok {
				targets = make(map[domain.SignID]int64)
				counts[b.Source] = targets
			}
			targets[b.Target]++
		}
	}

	var bigrams []domain.Bigram
	for source, targets := range counts {
		for target, count := range targets {
			bigrams = append(bigrams, domain.Bigram{Source: source, Target: target, Count: count})
		}
	}

	sort.Slice(bigrams, func(i, j int) bool {
		if bigrams[i].Source != bigrams[j].Source {
			return bigrams[i].Source < bigrams[j].Source
		}
		return bigrams[i].Target < bigrams[j].Target
	})

	return bigrams
}
