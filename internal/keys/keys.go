package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings of the terminal notification prompt.
type KeyMap struct {
	// Open is the default action, offered only when the notification
	// waits for dismissal.
	Open key.Binding

	// Dismiss acknowledges the chapter.
	Dismiss key.Binding

	// Later closes the prompt without acknowledging.
	Later key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Dismiss: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "dismiss"),
		),
		Later: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "remind me later"),
		),
	}
}

// ShortHelp returns the keybindings shown under the prompt.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Open, k.Dismiss, k.Later}
}

// FullHelp returns all keybindings grouped by category.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Open, k.Dismiss, k.Later},
	}
}
