package corpus

import (
	"math"
	"testing"

	"github.com/induslogic/isapa/internal/domain"
)

func TestExtractBigrams(t *testing.T) {
	tests := []struct {
		name  string
		signs []domain.SignID
		want  int
	}{
		{"empty", nil, 0},
		{"single sign", []domain.SignID{59}, 0},
		{"pair", []domain.SignID{59, 342}, 1},
		{"triple", []domain.SignID{59, 789, 342}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractBigrams(tt.signs)
			if len(got) != tt.want {
				t.Errorf("ExtractBigrams(%v) returned %d pairs, want %d", tt.signs, len(got), tt.want)
			}
		})
	}
}

func TestExtractBigramsOrder(t *testing.T) {
	got := ExtractBigrams([]domain.SignID{59, 789, 342})

	want := []domain.Bigram{
		{Source: 59, Target: 789, Count: 1},
		{Source: 789, Target: 342, Count: 1},
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAggregateBigramsTrainingCorpus(t *testing.T) {
	bigrams := AggregateBigrams(TrainingCorpus)

	if len(bigrams) != 10 {
		t.Fatalf("expected 10 distinct transitions, got %d", len(bigrams))
	}

	counts := make(map[[2]domain.SignID]int64)
	for _, b := range bigrams {
		counts[[2]domain.SignID{b.Source, b.Target}] = b.Count
	}

	if got := counts[[2]domain.SignID{99, 342}]; got != 2 {
		t.Errorf("count(99->342) = %d, want 2", got)
	}
	if got := counts[[2]domain.SignID{789, 342}]; got != 2 {
		t.Errorf("count(789->342) = %d, want 2", got)
	}
	if got := counts[[2]domain.SignID{59, 99}]; got != 1 {
		t.Errorf("count(59->99) = %d, want 1", got)
	}
}

func TestProbability(t *testing.T) {
	model := FromCounts(AggregateBigrams(TrainingCorpus))

	tests := []struct {
		name           string
		source, target domain.SignID
		want           float64
	}{
		{"two thirds of arrow continuations", 99, 342, 2.0 / 3.0},
		{"one third of arrow continuations", 99, 343, 1.0 / 3.0},
		{"stroke always closes", 789, 342, 1.0},
		{"fish splits evenly", 59, 789, 0.5},
		{"unseen transition", 59, 342, 0},
		{"unseen source", 905, 342, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.Probability(tt.source, tt.target)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Probability(%d, %d) = %f, want %f", tt.source, tt.target, got, tt.want)
			}
		})
	}
}

func TestTransitionsSorted(t *testing.T) {
	model := FromCounts(AggregateBigrams(TrainingCorpus))

	transitions := model.Transitions(99)
	if len(transitions) != 2 {
		t.Fatalf("expected 2 continuations of sign 99, got %d", len(transitions))
	}
	if transitions[0].Target != 342 {
		t.Errorf("most probable continuation = %d, want 342", transitions[0].Target)
	}
	if transitions[0].Probability <= transitions[1].Probability {
		t.Errorf("transitions not sorted by probability: %f <= %f",
			transitions[0].Probability, transitions[1].Probability)
	}

	if got := model.Transitions(905); got != nil {
		t.Errorf("expected no transitions for unseen source, got %v", got)
	}
}

func TestModelSizeAndSources(t *testing.T) {
	model := FromCounts(AggregateBigrams(TrainingCorpus))

	if got := model.Size(); got != 10 {
		t.Errorf("Size() = %d, want 10", got)
	}

	sources := model.Sources()
	want := []domain.SignID{59, 65, 99, 123, 211, 456, 789}
	if len(sources) != len(want) {
		t.Fatalf("Sources() returned %d entries, want %d", len(sources), len(want))
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("sources[%d] = %d, want %d", i, sources[i], want[i])
		}
	}
}

func TestEmptyModel(t *testing.T) {
	model := NewTransitionModel()

	if got := model.Probability(59, 342); got != 0 {
		t.Errorf("empty model Probability = %f, want 0", got)
	}
	if got := model.Size(); got != 0 {
		t.Errorf("empty model Size = %d, want 0", got)
	}
}
