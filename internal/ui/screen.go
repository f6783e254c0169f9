// Package ui draws the field, the selection menu and combat on a tcell
// terminal.
package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

var baseStyle = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)

// Screen is the drawing surface the renderer and the game loop share.
// Every write is clipped to the current terminal size.
type Screen struct {
	term tcell.Screen
}

// NewScreen opens the controlling terminal.
func NewScreen() (*Screen, error) {
	term, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return Wrap(term)
}

// Wrap initializes term for drawing. Tests pass a simulation screen.
func Wrap(term tcell.Screen) (*Screen, error) {
	if err := term.Init(); err != nil {
		return nil, err
	}
	term.SetStyle(baseStyle)
	term.EnableMouse()
	term.Clear()
	return &Screen{term: term}, nil
}

// Close restores the terminal. PollEvent returns nil afterwards.
func (s *Screen) Close() { s.term.Fini() }

// PollEvent blocks until the next key, mouse or resize event.
func (s *Screen) PollEvent() tcell.Event { return s.term.PollEvent() }

func (s *Screen) Clear() { s.term.Clear() }
func (s *Screen) Show() { s.term.Show() }

// Sync repaints everything, used after a resize.
func (s *Screen) Sync() { s.term.Sync() }

func (s *Screen) Size() (width, height int) { return s.term.Size() }

// SetContent writes one cell. Off-screen cells are dropped.
func (s *Screen) SetContent(x, y int, r rune, style tcell.Style) {
	if !s.inside(x, y) {
		return
	}
	s.term.SetContent(x, y, r, nil, style)
}

// DrawText writes text from (x, y) and returns the column after it.
func (s *Screen) DrawText(x, y int, text string, style tcell.Style) int {
	for _, ch := range text {
		s.SetContent(x, y, ch, style)
		x++
	}
	return x
}

// DrawCentered writes text horizontally centred on row y.
func (s *Screen) DrawCentered(y int, text string, style tcell.Style) {
	w, _ := s.Size()
	x := max((w-uniseg.StringWidth(text))/2, 0)
	s.DrawText(x, y, text, style)
}

// Fill repeats r across n cells starting at (x, y).
func (s *Screen) Fill(x, y, n int, r rune, style tcell.Style) {
	for i := 0; i < n; i++ {
		s.SetContent(x+i, y, r, style)
	}
}

func (s *Screen) inside(x, y int) bool {
	w, h := s.term.Size()
	return x >= 0 && y >= 0 && x < w && y < h
}
