package combat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownIntent is returned by ParseIntent for unrecognised input.
var ErrUnknownIntent = errors.New("combat: unknown intent")

// IntentKind enumerates the player intents a session accepts.
type IntentKind int

const (
	IntentCycleTargetPrev IntentKind = iota
	IntentCycleTargetNext
	IntentSelectTargetAt
	IntentBasicAttack
	IntentSpecialAttack
)

// String returns the textual form accepted by ParseIntent.
func (k IntentKind) String() string {
	switch k {
	case IntentCycleTargetPrev:
		return "prev"
	case IntentCycleTargetNext:
		return "next"
	case IntentSelectTargetAt:
		return "select"
	case IntentBasicAttack:
		return "attack"
	case IntentSpecialAttack:
		return "special"
	default:
		return "unknown"
	}
}

// Intent is one debounced player request. Index is only meaningful for
// IntentSelectTargetAt and refers to the alive view.
type Intent struct {
	Kind  IntentKind
	Index int
}

// SelectAt builds an IntentSelectTargetAt for the given alive-view index.
func SelectAt(index int) Intent {
	return Intent{Kind: IntentSelectTargetAt, Index: index}
}

// String returns the textual form accepted by ParseIntent.
func (i Intent) String() string {
	if i.Kind == IntentSelectTargetAt {
		return fmt.Sprintf("select %d", i.Index)
	}
	return i.Kind.String()
}

// ParseIntent reads "attack", "special", "next", "prev" or "select N".
func ParseIntent(text string) (Intent, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return Intent{}, fmt.Errorf("%w: empty", ErrUnknownIntent)
	}
	switch fields[0] {
	case "attack", "basic":
		return Intent{Kind: IntentBasicAttack}, nil
	case "special":
		return Intent{Kind: IntentSpecialAttack}, nil
	case "next":
		return Intent{Kind: IntentCycleTargetNext}, nil
	case "prev", "previous":
		return Intent{Kind: IntentCycleTargetPrev}, nil
	case "select":
		if len(fields) != 2 {
			return Intent{}, fmt.Errorf("%w: select needs an index", ErrUnknownIntent)
		}
		index, err := strconv.Atoi(fields[1])
		if err != nil {
			return Intent{}, fmt.Errorf("%w: select index %q: %v", ErrUnknownIntent, fields[1], err)
		}
		return SelectAt(index), nil
	default:
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownIntent, text)
	}
}

// Apply dispatches an intent to the matching session operation.
func (s *Session) Apply(ctx context.Context, intent Intent) Result {
	switch intent.Kind {
	case IntentCycleTargetPrev:
		return s.selection(s.SelectTarget(Previous))
	case IntentCycleTargetNext:
		return s.selection(s.SelectTarget(Next))
	case IntentSelectTargetAt:
		return s.selection(s.SelectTargetAt(intent.Index))
	case IntentBasicAttack:
		return s.BasicAttack(ctx)
	case IntentSpecialAttack:
		return s.SpecialAttack(ctx)
	default:
		return s.rejected(ActionNone)
	}
}

func (s *Session) selection(accepted bool) Result {
	return Result{
		Accepted: accepted,
		Action:   ActionSelectTarget,
		Outcome:  s.outcome,
		Message:  s.message,
	}
}
