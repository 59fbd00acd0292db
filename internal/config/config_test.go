package config

import "testing"

func TestDefaultValidatesOnceProgramSet(t *testing.T) {
	cfg := Default()
	cfg.Program = "xterm"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsMissingProgram(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing program, got nil")
	}
}

func TestValidateRejectsOutOfRangeScale(t *testing.T) {
	cfg := Default()
	cfg.Program = "xterm"
	cfg.Scale = 20.0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range scale, got nil")
	}
}

func TestApplyEnvOverridesScale(t *testing.T) {
	cfg := Default()
	env := map[string]string{"XWL_SCALE": "2.5"}
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Scale != 2.5 {
		t.Errorf("Scale = %v, want 2.5", cfg.Scale)
	}
}

func TestApplyEnvRejectsMalformedScale(t *testing.T) {
	cfg := Default()
	env := map[string]string{"XWL_SCALE": "not-a-number"}
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err == nil {
		t.Fatal("expected error for malformed XWL_SCALE, got nil")
	}
}

func TestApplyEnvBoolFallsBackOnMalformedValue(t *testing.T) {
	cfg := Default()
	cfg.Glamor = false
	env := map[string]string{"XWL_GLAMOR": "not-a-bool"}
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Glamor != false {
		t.Errorf("Glamor = %v, want fallback false", cfg.Glamor)
	}
}

func TestFrameColorRGBParsesHex(t *testing.T) {
	cfg := Default()
	cfg.Program = "xterm"
	cfg.FrameColor = "#1a2b3c"
	r, g, b, ok, err := cfg.FrameColorRGB()
	if err != nil {
		t.Fatalf("FrameColorRGB: %v", err)
	}
	if !ok {
		t.Fatal("ok = false, want true")
	}
	if r != 0x1a || g != 0x2b || b != 0x3c {
		t.Errorf("rgb = %02x%02x%02x, want 1a2b3c", r, g, b)
	}
}

func TestFrameColorRGBUnsetReturnsNotOK(t *testing.T) {
	cfg := Default()
	_, _, _, ok, err := cfg.FrameColorRGB()
	if err != nil {
		t.Fatalf("FrameColorRGB: %v", err)
	}
	if ok {
		t.Fatal("ok = true, want false for unset frame color")
	}
}

func TestValidateRejectsMalformedFrameColor(t *testing.T) {
	cfg := Default()
	cfg.Program = "xterm"
	cfg.FrameColor = "blue"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for malformed frame color, got nil")
	}
}
