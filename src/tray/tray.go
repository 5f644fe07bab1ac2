package tray

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Actions are the tray menu entries. Nil entries are left out.
type Actions struct {
	Show         func()
	Notify       func()
	ToggleHotkey func() bool
	HotkeyOn     func() bool
}

// Install sets the icon on fa and, on desktop drivers, a system tray menu.
// It reports whether a tray menu was installed.
func Install(fa fyne.App, actions Actions) bool {
	fa.SetIcon(Icon)

	desk, ok := fa.(desktop.App)
	if !ok {
		return false
	}
	desk.SetSystemTrayMenu(Menu(actions))
	desk.SetSystemTrayIcon(Icon)
	return true
}

// Menu builds the tray menu. The hotkey item relabels itself on toggle.
func Menu(actions Actions) *fyne.Menu {
	menu := fyne.NewMenu("Pack - Manager")
	if actions.Show != nil {
		menu.Items = append(menu.Items, fyne.NewMenuItem("Show Pack - Manager", actions.Show))
	}
	if actions.Notify != nil {
		menu.Items = append(menu.Items, fyne.NewMenuItem("Discord Notification", actions.Notify))
	}
	if actions.ToggleHotkey != nil {
		on := actions.HotkeyOn != nil && actions.HotkeyOn()
		item := fyne.NewMenuItem(hotkeyLabel(on), nil)
		item.Action = func() {
			item.Label = hotkeyLabel(actions.ToggleHotkey())
			menu.Refresh()
		}
		menu.Items = append(menu.Items, item)
	}
	return menu
}

func hotkeyLabel(on bool) string {
	if on {
		return "Disable Hotkey"
	}
	return "Enable Hotkey"
}
