package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up     key.Binding
	down   key.Binding
	enter  key.Binding
	back   key.Binding
	toggle key.Binding
	next   key.Binding
	prev   key.Binding
	mobile key.Binding
	tab    key.Binding
	detail key.Binding
	like   key.Binding
	subtab key.Binding
	wave   key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		toggle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		mobile: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "expand player")),
		tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch list")),
		detail: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		like:   key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "like")),
		subtab: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "lyrics/similar")),
		wave:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "preview")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.toggle, k.tab, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.tab},
		{k.toggle, k.next, k.prev, k.mobile},
		{k.detail, k.like, k.subtab, k.wave},
		{k.back, k.quit},
	}
}
