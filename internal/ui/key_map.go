package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	toggle key.Binding
	stop   key.Binding
	export key.Binding
	copy   key.Binding
	clear  key.Binding
	up     key.Binding
	down   key.Binding
	yes    key.Binding
	no     key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		toggle: key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("espaço/s", "iniciar/pausar")),
		stop:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "parar")),
		export: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "exportar")),
		copy:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copiar")),
		clear:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "limpar")),
		up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "rolar")),
		down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "rolar")),
		yes:    key.NewBinding(key.WithKeys("s", "y"), key.WithHelp("s", "sim")),
		no:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "não")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "sair")),
	}
}

// setHasPeriods enables the bindings that act on recorded periods.
func (k *keyMap) setHasPeriods(ok bool) {
	k.export.SetEnabled(ok)
	k.copy.SetEnabled(ok)
	k.clear.SetEnabled(ok)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.toggle, k.stop, k.export, k.copy, k.clear, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.toggle, k.stop},
		{k.export, k.copy, k.clear},
		{k.up, k.down, k.quit},
	}
}
