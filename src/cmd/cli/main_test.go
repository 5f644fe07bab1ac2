package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	img := image.NewRGBA(image.Rect(0, 0, 1100, 906))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	f, err := os.Create(filepath.Join(dir, "game_map.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfgPath := filepath.Join(dir, "config.json")
	if err := os.WriteFile(cfgPath, []byte(`{"map_scale": 1}`), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestNormalizeLegacyArgs(t *testing.T) {
	got := normalizeLegacyArgs([]string{"pm-map", "-position", "1,2", "-json", "-out=x.png", "--config", "c.json"})
	want := []string{"pm-map", "--position", "1,2", "--json", "--out=x.png", "--config", "c.json"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("Expected %v, got %v", want, got)
	}
}

func TestRequiresSomethingToPlace(t *testing.T) {
	var out bytes.Buffer
	err := runWithArgs([]string{"pm-map", "--config", writeFixture(t)}, &out)
	if err == nil || !strings.Contains(err.Error(), "nothing to place") {
		t.Fatalf("Expected nothing-to-place error, got %v", err)
	}
}

func TestJSONOutput(t *testing.T) {
	cfgPath := writeFixture(t)
	var out bytes.Buffer
	err := runWithArgs([]string{"pm-map", "--config", cfgPath, "--position", "0,0", "--destination", "(-805, -960)", "--json"}, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	var r MapResult
	if err := json.Unmarshal(out.Bytes(), &r); err != nil {
		t.Fatalf("invalid JSON %q: %v", out.String(), err)
	}
	if r.Width != 1100 || r.Height != 906 {
		t.Fatalf("Expected 1100x906, got %dx%d", r.Width, r.Height)
	}
	if r.Position == nil || r.Position.World != "0,0" || !r.Position.OnMap {
		t.Fatalf("Unexpected position %+v", r.Position)
	}
	// world origin sits at (west, north) on the unscaled stock map
	if r.Position.PixelX != 960 || r.Position.PixelY != 805 {
		t.Fatalf("Expected pixel 960,805, got %v,%v", r.Position.PixelX, r.Position.PixelY)
	}
	if r.Destination == nil || r.Destination.PixelX > 1e-6 || r.Destination.PixelY > 1e-6 {
		t.Fatalf("Expected destination at the top-left corner, got %+v", r.Destination)
	}
	if !r.Connector {
		t.Fatal("Expected a connector between both markers")
	}
}

func TestWritesSnapshot(t *testing.T) {
	cfgPath := writeFixture(t)
	outPath := filepath.Join(t.TempDir(), "annotated.png")
	var out bytes.Buffer
	if err := runWithArgs([]string{"pm-map", "--config", cfgPath, "--position", "10,10", "--out", outPath}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Fatalf("snapshot is not a PNG: %v", err)
	}
	if !strings.Contains(out.String(), "position") || !strings.Contains(out.String(), outPath) {
		t.Fatalf("Unexpected text output %q", out.String())
	}
}

func TestSnapshotToStdout(t *testing.T) {
	cfgPath := writeFixture(t)
	var out bytes.Buffer
	if err := runWithArgs([]string{"pm-map", "--config", cfgPath, "--position", "10,10", "--out", "-"}, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(out.Bytes())); err != nil {
		t.Fatalf("stdout is not a PNG: %v", err)
	}
}

func TestRejectsBadCoordinates(t *testing.T) {
	var out bytes.Buffer
	if err := runWithArgs([]string{"pm-map", "--config", writeFixture(t), "--position", "north"}, &out); err == nil {
		t.Fatal("Expected a parse error")
	}
}
