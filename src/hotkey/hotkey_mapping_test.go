package hotkey

import (
	"testing"
)

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		// Modifier keys
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"win", []uint16{91, 92}},
		{"cmd", []uint16{91, 92}},
		{"super", []uint16{91, 92}},

		// Letter keys
		{"q", []uint16{81}},
		{"e", []uint16{69}},
		{"o", []uint16{79}},
		{"t", []uint16{84}},

		// Number keys
		{"0", []uint16{48}},
		{"1", []uint16{49}},
		{"9", []uint16{57}},

		// Function keys
		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f13", []uint16{124}},
		{"f24", []uint16{135}},

		// Special keys
		{"space", []uint16{32}},
		{"enter", []uint16{13}},
		{"esc", []uint16{27}},
		{" Q ", []uint16{81}},

		// Unknown key
		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			result := keyNameToRawcodes(tt.keyName)
			if len(result) != len(tt.expected) {
				t.Errorf("keyNameToRawcodes(%q) returned %d rawcodes, expected %d",
					tt.keyName, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("keyNameToRawcodes(%q)[%d] = %d, expected %d",
						tt.keyName, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+Q", []string{"ctrl", "alt", "q"}},
		{"Ctrl+Shift+O", []string{"ctrl", "shift", "o"}},
		{"Ctrl+alt+e", []string{"ctrl", "alt", "e"}},
		{"Alt+F4", []string{"alt", "f4"}},
		{"Ctrl+Shift+F13", []string{"ctrl", "shift", "f13"}},
		{"Alt+F24", []string{"alt", "f24"}},
		{"Ctrl+Shift+T", []string{"ctrl", "shift", "t"}},
		{"Ctrl+Win+E", []string{"ctrl", "cmd", "e"}},
		{"Win+Shift+S", []string{"cmd", "shift", "s"}},
		{"Super+Alt+T", []string{"cmd", "alt", "t"}},
		{"Ctrl+Q", []string{"ctrl", "q"}},
		{"Control + q", []string{"ctrl", "q"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseHotkey(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("parseHotkey(%q) returned %d keys, expected %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseHotkey(%q)[%d] = %q, expected %q",
						tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestPressReleaseCombination(t *testing.T) {
	states := []keyState{
		{name: "ctrl", rawcodes: keyNameToRawcodes("ctrl")},
		{name: "q", rawcodes: keyNameToRawcodes("q")},
	}

	if press(states, 81) {
		t.Fatal("Expected q alone not to fire")
	}
	release(states, 81)
	if press(states, 163) {
		t.Fatal("Expected right ctrl alone not to fire")
	}
	if !press(states, 81) {
		t.Fatal("Expected ctrl+q to fire")
	}
	for _, s := range states {
		if s.pressed {
			t.Errorf("Expected %s to be reset after firing", s.name)
		}
	}
}

func TestCompileHotkey(t *testing.T) {
	tests := []struct {
		hotkey  string
		want    []string
		wantErr bool
	}{
		{hotkey: "Ctrl+Q", want: []string{"ctrl", "q"}},
		{hotkey: "Control+Shift+F5", want: []string{"ctrl", "shift", "f5"}},
		{hotkey: "Ctrl+`", wantErr: true},
		{hotkey: "Ctrl+Hyper", wantErr: true},
		{hotkey: "Bogus", wantErr: true},
		{hotkey: "", wantErr: true},
		{hotkey: " + ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.hotkey, func(t *testing.T) {
			states, err := compileHotkey(tt.hotkey)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected an error for %q, got keys %v", tt.hotkey, keyNames(states))
				}
				return
			}
			if err != nil {
				t.Fatalf("compileHotkey(%q) failed: %v", tt.hotkey, err)
			}
			got := keyNames(states)
			if len(got) != len(tt.want) {
				t.Fatalf("compileHotkey(%q) = %v, expected %v", tt.hotkey, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("compileHotkey(%q)[%d] = %q, expected %q", tt.hotkey, i, got[i], tt.want[i])
				}
			}
		})
	}
}
