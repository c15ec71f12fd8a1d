package config

import (
	"log/slog"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	opts := cfg.EditorOptions()
	if opts.Width != 800 || opts.Height != 600 || opts.Tolerance != 10 || opts.HitLineWidth != 5 || opts.RotationStep != 1 {
		t.Errorf("EditorOptions() = %+v", opts)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CANVAS_WIDTH", "1024")
	t.Setenv("SELECT_TOLERANCE", "4.5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EditorOptions().Width != 1024 || cfg.EditorOptions().Tolerance != 4.5 {
		t.Errorf("EditorOptions() = %+v", cfg.EditorOptions())
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v", cfg.SlogLevel())
	}
	if o := cfg.Origins(); len(o) != 2 || o[1] != "http://b.test" {
		t.Errorf("Origins() = %q", o)
	}
	if h := cfg.OriginHosts(); len(h) != 2 || h[0] != "a.test" {
		t.Errorf("OriginHosts() = %q", h)
	}
}

func TestLoad_InvalidCanvas(t *testing.T) {
	t.Setenv("CANVAS_HEIGHT", "0")
	if _, err := Load(); err == nil {
		t.Error("Load accepted a zero canvas height")
	}
	t.Setenv("CANVAS_HEIGHT", "tall")
	if _, err := Load(); err == nil {
		t.Error("Load accepted a non-numeric canvas height")
	}
}
