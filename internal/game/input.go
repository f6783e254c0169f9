package game

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/wildgates/internal/combat"
)

// CombatIntent maps a key press to a combat intent.
func CombatIntent(ev *tcell.EventKey) (combat.Intent, bool) {
	switch ev.Key() {
	case tcell.KeyLeft:
		return combat.Intent{Kind: combat.IntentCycleTargetPrev}, true
	case tcell.KeyRight:
		return combat.Intent{Kind: combat.IntentCycleTargetNext}, true
	case tcell.KeyEnter:
		return combat.Intent{Kind: combat.IntentBasicAttack}, true
	case tcell.KeyRune:
		r := ev.Rune()
		switch r {
		case 'a', 'A':
			return combat.Intent{Kind: combat.IntentCycleTargetPrev}, true
		case 'd', 'D':
			return combat.Intent{Kind: combat.IntentCycleTargetNext}, true
		case ' ':
			return combat.Intent{Kind: combat.IntentBasicAttack}, true
		case 's', 'S', 'x', 'X':
			return combat.Intent{Kind: combat.IntentSpecialAttack}, true
		}
		if r >= '1' && r <= '9' {
			return combat.SelectAt(int(r - '1')), true
		}
	}
	return combat.Intent{}, false
}

// MoveDelta maps a key press to an overworld step.
func MoveDelta(ev *tcell.EventKey) (dx, dy int, ok bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return 0, -1, true
	case tcell.KeyDown:
		return 0, 1, true
	case tcell.KeyLeft:
		return -1, 0, true
	case tcell.KeyRight:
		return 1, 0, true
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W':
			return 0, -1, true
		case 's', 'S':
			return 0, 1, true
		case 'a', 'A':
			return -1, 0, true
		case 'd', 'D':
			return 1, 0, true
		}
	}
	return 0, 0, false
}

// isQuit reports whether the key press should end the game.
func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// isConfirm reports whether the key press confirms a result screen.
func isConfirm(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == ' ')
}
