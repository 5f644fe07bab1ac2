package tray

import (
	_ "embed"

	"fyne.io/fyne/v2"
)

//go:embed icon.svg
var iconSVG []byte

// Icon is the window and tray icon: a map with both markers and the connector.
var Icon = fyne.NewStaticResource("pack-manager.svg", iconSVG)
