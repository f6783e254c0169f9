package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/wildgates/internal/combat"
	"github.com/samdwyer/wildgates/internal/creature"
	"github.com/samdwyer/wildgates/internal/gamedata"
	"github.com/samdwyer/wildgates/internal/world"
)

const (
	// driftPerRow converts feedback drift units into screen rows.
	driftPerRow = 8.0

	minSlotWidth = 14
	slotHeight   = 5
	barPadding   = 4
)

// rect is a screen-space rectangle.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// combatLayout remembers where the last combat frame put each opponent,
// for mouse hit-testing.
type combatLayout struct {
	slots      []rect // By fixed opponent index
	aliveIndex []int  // Fixed index -> alive-view index, -1 when defeated
	attacker   rect
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen   *Screen
	elements *gamedata.ElementRegistry
	layout   combatLayout
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen, elements *gamedata.ElementRegistry) *Renderer {
	return &Renderer{screen: screen, elements: elements}
}

// RenderField draws the overworld with the player on top.
func (r *Renderer) RenderField(field *world.Field, biome *gamedata.BiomeDef, px, py int, player *creature.Creature, status string) {
	r.screen.Clear()

	floor := tcell.ColorGray
	biomeName := "Wilds"
	if biome != nil {
		floor = biome.TCellColor()
		biomeName = biome.Name
	}

	// Draw field tiles
	for y := 0; y < field.Height; y++ {
		for x := 0; x < field.Width; x++ {
			tile := field.GetTile(x, y)
			r.screen.SetContent(x, y, tile.Rune(), r.getTileStyle(tile, floor))
		}
	}

	// Draw player on top
	playerStyle := tcell.StyleDefault.
		Foreground(r.elementColor(player.Element)).
		Bold(true)
	r.screen.SetContent(px, py, r.elementGlyph(player.Element), playerStyle)

	info := fmt.Sprintf("%s | %s Lv %d | %s", biomeName, r.elementName(player.Element), player.Level, status)
	r.RenderMessage(info, field.Height)
	r.renderHelp(field.Height+1, "Arrows/WASD move  ! encounter  Q quit")

	r.screen.Show()
}

// getTileStyle returns the appropriate style for a tile type.
func (r *Renderer) getTileStyle(tile world.Tile, floor tcell.Color) tcell.Style {
	switch tile {
	case world.TileWall:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case world.TileRock:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	case world.TileFloor, world.TileGrass:
		return tcell.StyleDefault.Foreground(floor)
	case world.TileEncounter:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	default:
		return tcell.StyleDefault
	}
}

// RenderSelection draws the companion selection screen.
func (r *Renderer) RenderSelection(options []*gamedata.ElementDef) {
	r.screen.Clear()

	title := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	r.screen.DrawText(2, 1, "Choose your companion", title)

	for i, e := range options {
		y := 3 + i*2
		x := r.screen.DrawText(4, y, fmt.Sprintf("%d) ", i+1), tcell.StyleDefault)
		style := tcell.StyleDefault.Foreground(e.TCellColor()).Bold(true)
		r.screen.SetContent(x, y, e.GlyphRune(), style)
		r.screen.DrawText(x+2, y, e.Name, style)
	}

	r.renderHelp(4+len(options)*2, fmt.Sprintf("Press 1-%d to choose, Esc to quit", len(options)))
	r.screen.Show()
}

// RenderCombat draws a combat session: opponents, the attacker, the last
// message, and live feedback events.
func (r *Renderer) RenderCombat(sess *combat.Session, status string) {
	r.screen.Clear()
	w, h := r.screen.Size()

	opponents := sess.Opponents()
	alive := sess.AliveIndices()
	targetFixed := -1
	if t := sess.TargetIndex(); t >= 0 && t < len(alive) {
		targetFixed = alive[t]
	}

	slotW := max(w/max(len(opponents), 1), minSlotWidth)
	r.layout = combatLayout{
		slots:      make([]rect, len(opponents)),
		aliveIndex: make([]int, len(opponents)),
	}
	for i := range r.layout.aliveIndex {
		r.layout.aliveIndex[i] = -1
	}
	for view, idx := range alive {
		r.layout.aliveIndex[idx] = view
	}

	for i, o := range opponents {
		slot := rect{x: i * slotW, y: 2, w: slotW, h: slotHeight}
		r.layout.slots[i] = slot
		r.renderOpponent(slot, o, r.layout.aliveIndex[i], len(alive), !sess.Outcome().Resolved() && i == targetFixed)
	}

	attacker := sess.Attacker()
	r.layout.attacker = rect{x: 2, y: max(h-9, slotHeight+3), w: w - 4, h: 3}
	r.renderAttacker(r.layout.attacker, attacker)

	msgStyle := tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	r.screen.DrawText(2, r.layout.attacker.y+4, sess.Message(), msgStyle)
	if status != "" {
		r.screen.DrawText(2, r.layout.attacker.y+5, status, tcell.StyleDefault.Foreground(tcell.ColorGray))
	}

	r.renderFeedback(sess.Feedback())
	r.renderHelp(h-1, "Left/Right target  Enter attack  S special  1-9 select  Esc quit")

	r.screen.Show()
}

func (r *Renderer) renderOpponent(slot rect, o *creature.Creature, view, aliveCount int, selected bool) {
	if view < 0 {
		dim := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
		r.screen.DrawText(slot.x+2, slot.y, "defeated", dim)
		return
	}

	label := strings.ToUpper(r.elementName(o.Element))
	if aliveCount > 1 {
		label = fmt.Sprintf("%s %d", label, view+1)
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	prefix := "  "
	if selected {
		style = style.Reverse(true).Bold(true)
		prefix = "> "
	}
	r.screen.DrawText(slot.x, slot.y, prefix, style)
	r.screen.DrawText(slot.x+2, slot.y, label, style)

	glyphStyle := tcell.StyleDefault.Foreground(r.elementColor(o.Element)).Bold(true)
	r.screen.SetContent(slot.x+slot.w/2, slot.y+1, r.elementGlyph(o.Element), glyphStyle)

	r.drawBar(slot.x+2, slot.y+2, slot.w-barPadding, o.DisplayHealth(), o.MaxHealth)
	r.screen.DrawText(slot.x+2, slot.y+3, fmt.Sprintf("HP %d/%d", o.DisplayHealth(), o.MaxHealth), tcell.StyleDefault)
}

func (r *Renderer) renderAttacker(area rect, c *creature.Creature) {
	style := tcell.StyleDefault.Foreground(r.elementColor(c.Element)).Bold(true)
	r.screen.DrawText(area.x, area.y, fmt.Sprintf("YOU  %s Lv %d", r.elementName(c.Element), c.Level), style)
	r.drawBar(area.x, area.y+1, min(area.w, 30), c.DisplayHealth(), c.MaxHealth)
	stats := fmt.Sprintf("HP %d/%d  Special %d/%d", c.DisplayHealth(), c.MaxHealth, c.SpecialUses, c.MaxSpecialUses)
	r.screen.DrawText(area.x, area.y+2, stats, tcell.StyleDefault)
}

// renderFeedback draws floating damage numbers above their anchors,
// fading them toward the background as they age.
func (r *Renderer) renderFeedback(events []combat.Event) {
	for _, ev := range events {
		var x, y int
		if ev.Origin == combat.OriginOpponent && ev.OpponentIndex >= 0 && ev.OpponentIndex < len(r.layout.slots) {
			slot := r.layout.slots[ev.OpponentIndex]
			x, y = slot.x+slot.w/2+2, slot.y+1
		} else {
			x, y = r.layout.attacker.x+20, r.layout.attacker.y
		}
		y += int(math.Round(ev.OffsetY / driftPerRow))
		if y < 0 {
			y = 0
		}
		style := tcell.StyleDefault.Foreground(FadeColor(TagColor(ev.Color), ev.Progress())).Bold(true)
		r.screen.DrawText(x, y, ev.Text, style)
	}
}

// drawBar draws a horizontal health bar.
func (r *Renderer) drawBar(x, y, width, current, maximum int) {
	if width <= 0 {
		return
	}
	filled := 0
	if maximum > 0 {
		filled = width * current / maximum
	}
	filled = min(max(filled, 0), width)
	r.screen.Fill(x, y, filled, '█', tcell.StyleDefault.Foreground(HealthColor(current, maximum)))
	r.screen.Fill(x+filled, y, width-filled, '░', tcell.StyleDefault.Foreground(tcell.ColorDarkGray))
}

// OpponentAt returns the alive-view index of the opponent drawn at (x, y)
// in the last combat frame, or -1 if there is none.
func (r *Renderer) OpponentAt(x, y int) int {
	for i, slot := range r.layout.slots {
		if slot.contains(x, y) {
			return r.layout.aliveIndex[i]
		}
	}
	return -1
}

// RenderEnd draws a full-screen banner with supporting lines.
func (r *Renderer) RenderEnd(title string, color tcell.Color, lines []string) {
	r.screen.Clear()
	_, h := r.screen.Size()

	y := max(h/2-len(lines)/2-2, 0)
	r.screen.DrawCentered(y, title, tcell.StyleDefault.Foreground(color).Bold(true))
	for i, line := range lines {
		r.screen.DrawCentered(y+2+i, line, tcell.StyleDefault)
	}
	r.screen.Show()
}

// RenderMessage displays a message at the given row.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	r.screen.DrawText(0, y, msg, style)
}

func (r *Renderer) renderHelp(y int, text string) {
	r.screen.DrawText(0, y, text, tcell.StyleDefault.Foreground(tcell.ColorDarkGray))
}

func (r *Renderer) elementName(id string) string {
	if e := r.element(id); e != nil {
		return e.Name
	}
	return id
}

func (r *Renderer) elementGlyph(id string) rune {
	if e := r.element(id); e != nil {
		return e.GlyphRune()
	}
	return '@'
}

func (r *Renderer) elementColor(id string) tcell.Color {
	if e := r.element(id); e != nil {
		return e.TCellColor()
	}
	return tcell.ColorYellow
}

func (r *Renderer) element(id string) *gamedata.ElementDef {
	if r.elements == nil {
		return nil
	}
	return r.elements.GetByID(id)
}
