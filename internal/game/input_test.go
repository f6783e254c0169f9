package game

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/wildgates/internal/combat"
)

func key(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestCombatIntent(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want combat.Intent
		ok   bool
	}{
		{"left", key(tcell.KeyLeft), combat.Intent{Kind: combat.IntentCycleTargetPrev}, true},
		{"a", runeKey('a'), combat.Intent{Kind: combat.IntentCycleTargetPrev}, true},
		{"right", key(tcell.KeyRight), combat.Intent{Kind: combat.IntentCycleTargetNext}, true},
		{"D", runeKey('D'), combat.Intent{Kind: combat.IntentCycleTargetNext}, true},
		{"enter", key(tcell.KeyEnter), combat.Intent{Kind: combat.IntentBasicAttack}, true},
		{"space", runeKey(' '), combat.Intent{Kind: combat.IntentBasicAttack}, true},
		{"s", runeKey('s'), combat.Intent{Kind: combat.IntentSpecialAttack}, true},
		{"x", runeKey('X'), combat.Intent{Kind: combat.IntentSpecialAttack}, true},
		{"1", runeKey('1'), combat.SelectAt(0), true},
		{"9", runeKey('9'), combat.SelectAt(8), true},
		{"0", runeKey('0'), combat.Intent{}, false},
		{"up", key(tcell.KeyUp), combat.Intent{}, false},
		{"z", runeKey('z'), combat.Intent{}, false},
	}

	for _, tt := range tests {
		got, ok := CombatIntent(tt.ev)
		if ok != tt.ok || got != tt.want {
			t.Errorf("%s: CombatIntent = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMoveDelta(t *testing.T) {
	tests := []struct {
		ev     *tcell.EventKey
		dx, dy int
		ok     bool
	}{
		{key(tcell.KeyUp), 0, -1, true},
		{key(tcell.KeyDown), 0, 1, true},
		{key(tcell.KeyLeft), -1, 0, true},
		{key(tcell.KeyRight), 1, 0, true},
		{runeKey('w'), 0, -1, true},
		{runeKey('S'), 0, 1, true},
		{runeKey('a'), -1, 0, true},
		{runeKey('d'), 1, 0, true},
		{runeKey('x'), 0, 0, false},
		{key(tcell.KeyEnter), 0, 0, false},
	}

	for _, tt := range tests {
		dx, dy, ok := MoveDelta(tt.ev)
		if dx != tt.dx || dy != tt.dy || ok != tt.ok {
			t.Errorf("MoveDelta(%v) = (%d, %d, %v), want (%d, %d, %v)", tt.ev.Name(), dx, dy, ok, tt.dx, tt.dy, tt.ok)
		}
	}
}

func TestQuitAndConfirmKeys(t *testing.T) {
	for _, ev := range []*tcell.EventKey{key(tcell.KeyEscape), key(tcell.KeyCtrlC), runeKey('q'), runeKey('Q')} {
		if !isQuit(ev) {
			t.Errorf("%s should quit", ev.Name())
		}
	}
	if isQuit(runeKey('w')) {
		t.Error("w should not quit")
	}
	if !isConfirm(key(tcell.KeyEnter)) || !isConfirm(runeKey(' ')) || isConfirm(runeKey('r')) {
		t.Error("confirm keys are Enter and Space only")
	}
}
