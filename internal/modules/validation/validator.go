package validation

import (
	"fmt"

	"github.com/induslogic/isapa/internal/domain"
	"github.com/induslogic/isapa/internal/modules/grammar"
)

type state int

const (
	stateAwaitingOpen state = iota
	stateBatchOpen
	stateClosed
)

// Validator runs the direction-aware reading protocol over sign sequences.
// The grammar is immutable, so a single validator is safe for concurrent use;
// each call keeps all machine state on its own stack.
type Validator struct {
	grammar *grammar.Grammar
	minLen  int
	maxLen  int
}

// New creates a validator bound to a grammar.
// A nil grammar is an invalid argument and fails fast.
func New(g *grammar.Grammar) (*Validator, error) {
	if g == nil {
		return nil, fmt.Errorf("invalid argument: grammar is required")
	}

	rules := g.Rules()
	return &Validator{
		grammar: g,
		minLen:  rules.MinLength,
		maxLen:  rules.MaxLength,
	}, nil
}

// Grammar returns the grammar the validator was built with
func (v *Validator) Grammar() *grammar.Grammar {
	return v.grammar
}

// Validate classifies a sequence, stopping at the first violation
func (v *Validator) Validate(signs []domain.SignID) Result {
	return v.run(signs, false)
}

// ValidateAll classifies a sequence in diagnostic mode: recoverable
// violations are recorded, the offending sign is skipped, and scanning
// continues so that every problem in the sequence is reported.
func (v *Validator) ValidateAll(signs []domain.SignID) Result {
	return v.run(signs, true)
}

// run is the single-pass state machine. The reading head is a two-ended
// window over the unread tokens: Forward consumes the lowest unread index,
// Reverse the highest, so a reversal continues through the remaining unread
// tokens from the far end and consumed tokens are never re-read. A maximal
// run of consecutive switch signs is consumed in the walking direction and
// reverses the head only when its length is odd.
func (v *Validator) run(signs []domain.SignID, collectAll bool) Result {
	n := len(signs)

	reasons := []Reason{}
	dirLog := []DirectionEntry{{Position: -1, Direction: domain.DirectionForward}}
	items := []TallyItem{}

	halted := false
	if n < v.minLen {
		reasons = append(reasons, Reason{
			Code:     ReasonFragmentTooShort,
			Position: -1,
			Message:  fmt.Sprintf("sequence length %d below minimum %d", n, v.minLen),
		})
		halted = !collectAll
	}
	if !halted && v.maxLen > 0 && n > v.maxLen {
		reasons = append(reasons, Reason{
			Code:     ReasonInscriptionTooLong,
			Position: -1,
			Message:  fmt.Sprintf("sequence length %d above maximum %d", n, v.maxLen),
		})
		halted = !collectAll
	}

	lo, hi := 0, n-1
	dir := domain.DirectionForward
	st := stateAwaitingOpen
	hasPayload := false
	lastContent := domain.Role("") // last consumed non-switch role
	prevRole := domain.Role("")    // last consumed role of any kind
	processed := 0

	headPos := func() int {
		if dir == domain.DirectionForward {
			return lo
		}
		return hi
	}
	advance := func() {
		if dir == domain.DirectionForward {
			lo++
		} else {
			hi--
		}
	}
	fail := func(code ReasonCode, pos int, msg string) bool {
		reasons = append(reasons, Reason{Code: code, Position: pos, Message: msg})
		if !collectAll {
			halted = true
			return true
		}
		return false
	}

	for !halted && lo <= hi && st != stateClosed {
		pos := headPos()
		id := signs[pos]

		role, err := v.grammar.ResolveRole(id)
		if err != nil {
			if fail(ReasonUnknownSign, pos, fmt.Sprintf("sign %d is not in the grammar", id)) {
				break
			}
			advance()
			processed++
			continue
		}

		if prevRole != "" && v.grammar.IsForbidden(prevRole, role) {
			if fail(ReasonForbiddenTransition, pos, fmt.Sprintf("transition %s -> %s is forbidden", prevRole, role)) {
				break
			}
			// Skipped signs leave the machine untouched
			advance()
			processed++
			continue
		}

		if role == domain.RoleDirectionSwitch {
			// Consume the maximal positional run of switch signs in the
			// current walking direction, toggling once per sign.
			cur := dir
			for lo <= hi {
				p := headPos()
				r, rerr := v.grammar.ResolveRole(signs[p])
				if rerr != nil || r != domain.RoleDirectionSwitch {
					break
				}
				cur = cur.Flip()
				dirLog = append(dirLog, DirectionEntry{Position: p, Direction: cur})
				advance()
				processed++
			}
			dir = cur
			prevRole = domain.RoleDirectionSwitch
			continue
		}

		switch role {
		case domain.RoleOpener:
			if st == stateBatchOpen {
				if fail(ReasonDoubleOpen, pos, fmt.Sprintf("opener %s while a batch is already open", v.grammar.NameOf(id))) {
					break
				}
				advance()
				processed++
				continue
			}
			st = stateBatchOpen
			hasPayload = false
			lastContent = domain.RoleOpener

		case domain.RolePayload:
			if st == stateAwaitingOpen {
				// Implicit open: content may begin a batch without a marked jar
				st = stateBatchOpen
			}
			hasPayload = true
			items = append(items, TallyItem{Sign: id, Name: v.grammar.NameOf(id)})
			lastContent = domain.RolePayload

		case domain.RoleQuantity:
			if lastContent != domain.RolePayload && lastContent != domain.RoleQuantity {
				if fail(ReasonOrphanQuantity, pos, fmt.Sprintf("quantity sign %s has no preceding payload", v.grammar.NameOf(id))) {
					break
				}
				advance()
				processed++
				continue
			}
			items[len(items)-1].Count++
			lastContent = domain.RoleQuantity

		case domain.RoleCloser:
			remaining := hi - lo // unread tokens besides this one
			switch {
			case st != stateBatchOpen:
				if fail(ReasonPrematureClose, pos, fmt.Sprintf("closer %s with no open batch", v.grammar.NameOf(id))) {
					break
				}
				advance()
				processed++
				continue
			case !hasPayload:
				if fail(ReasonPrematureClose, pos, fmt.Sprintf("closer %s before any payload", v.grammar.NameOf(id))) {
					break
				}
				advance()
				processed++
				continue
			case remaining > 0:
				if fail(ReasonPrematureClose, pos, fmt.Sprintf("closer %s before end of inscription, %d signs unread", v.grammar.NameOf(id), remaining)) {
					break
				}
				advance()
				processed++
				continue
			default:
				st = stateClosed
				lastContent = domain.RoleCloser
			}
		}

		if halted {
			break
		}
		prevRole = role
		advance()
		processed++
	}

	if !halted && st != stateClosed {
		if st == stateBatchOpen {
			reasons = append(reasons, Reason{
				Code:     ReasonMissingSeal,
				Position: -1,
				Message:  "inscription ended while a batch is still open",
			})
		} else if n >= v.minLen {
			reasons = append(reasons, Reason{
				Code:     ReasonMissingSeal,
				Position: -1,
				Message:  "inscription ended with no sealed batch",
			})
		}
	}

	// Unquantified payloads carry an implicit count of one
	for i := range items {
		if items[i].Count == 0 {
			items[i].Count = 1
		}
	}

	status := StatusValidReceipt
	if len(reasons) > 0 || st != stateClosed || !hasPayload {
		status = StatusProtocolViolation
	}

	return Result{
		Status:       status,
		Reasons:      reasons,
		DirectionLog: dirLog,
		Items:        items,
		Processed:    processed,
	}
}
