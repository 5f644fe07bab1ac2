package hotkey

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
	"go.uber.org/zap"
)

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// Listen registers a global key combination such as "Ctrl+Q" and calls
// callback each time the full combination is held down. The callback runs on
// its own goroutine so a slow handler never stalls the hook loop. Listening
// stops when ctx is cancelled.
func Listen(ctx context.Context, hotkeyConfig string, callback func(), log *zap.SugaredLogger) error {
	keyStates, err := compileHotkey(hotkeyConfig)
	if err != nil {
		return err
	}
	log.Debugw("parsed hotkey configuration", "keys", keyNames(keyStates))

	log.Infow("hotkey listener configured", "hotkey", hotkeyConfig)

	evChan := gohook.Start()
	if evChan == nil {
		return fmt.Errorf("gohook.Start returned nil channel")
	}

	go func() {
		<-ctx.Done()
		gohook.End()
	}()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("panic in hotkey goroutine", "panic", r)
			}
		}()

		var mu sync.Mutex
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				mu.Lock()
				fired := press(keyStates, ev.Rawcode)
				mu.Unlock()
				if fired {
					log.Infow("hotkey combination detected", "hotkey", hotkeyConfig)
					if callback != nil {
						go callback()
					}
				}
			case gohook.KeyUp:
				mu.Lock()
				release(keyStates, ev.Rawcode)
				mu.Unlock()
			}
		}
		log.Debug("hotkey event channel closed")
	}()
	return nil
}

// press marks the key owning rawcode as held and reports whether the whole
// combination is now down. States reset after a match.
// compileHotkey resolves every key of hotkeyConfig to its rawcodes. Any key
// without a rawcode rejects the whole combination, since dropping it would
// widen the trigger.
func compileHotkey(hotkeyConfig string) ([]keyState, error) {
	keys := parseHotkey(hotkeyConfig)
	if len(keys) == 0 {
		return nil, fmt.Errorf("no keys in hotkey configuration %q", hotkeyConfig)
	}
	states := make([]keyState, 0, len(keys))
	for _, keyName := range keys {
		rawcodes := keyNameToRawcodes(keyName)
		if len(rawcodes) == 0 {
			return nil, fmt.Errorf("unknown key %q in hotkey configuration %q", keyName, hotkeyConfig)
		}
		states = append(states, keyState{name: keyName, rawcodes: rawcodes})
	}
	return states, nil
}

func keyNames(states []keyState) []string {
	names := make([]string, len(states))
	for i, st := range states {
		names[i] = st.name
	}
	return names
}

func press(states []keyState, rawcode uint16) bool {
	for i := range states {
		if matches(states[i].rawcodes, rawcode) {
			states[i].pressed = true
		}
	}
	for i := range states {
		if !states[i].pressed {
			return false
		}
	}
	for i := range states {
		states[i].pressed = false
	}
	return true
}

func release(states []keyState, rawcode uint16) {
	for i := range states {
		if matches(states[i].rawcodes, rawcode) {
			states[i].pressed = false
		}
	}
}

func matches(rawcodes []uint16, rawcode uint16) bool {
	for _, rc := range rawcodes {
		if rc == rawcode {
			return true
		}
	}
	return false
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	parts := strings.Split(strings.ToLower(hotkeyConfig), "+")
	var keys []string

	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}

	return keys
}

// Windows virtual key codes. Modifiers carry both left and right variants.
var rawcodeTable = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},

	"left":  {37},
	"up":    {38},
	"right": {39},
	"down":  {40},
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		rawcodeTable[string(c)] = []uint16{uint16(c - 'a' + 65)}
	}
	for c := '0'; c <= '9'; c++ {
		rawcodeTable[string(c)] = []uint16{uint16(c - '0' + 48)}
	}
	for n := 1; n <= 24; n++ {
		rawcodeTable[fmt.Sprintf("f%d", n)] = []uint16{uint16(111 + n)}
	}
}

// keyNameToRawcodes maps a key name to its rawcodes, or nil if unknown.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if keyName == "win" || keyName == "super" {
		keyName = "cmd"
	}
	return rawcodeTable[keyName]
}
