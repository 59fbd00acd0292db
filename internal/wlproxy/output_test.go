package wlproxy

import (
	"testing"

	"github.com/friedelschoen/xwl-run/internal/wlproto"
)

func TestNewOutputDefaultsToUnitScale(t *testing.T) {
	o := NewOutput(HostResource{})
	if o.ScaleCurrent != 1.0 || o.ScaleMax != 1.0 {
		t.Errorf("default scale = (%v, %v), want (1.0, 1.0)", o.ScaleCurrent, o.ScaleMax)
	}
}

func TestApplyAuraScaleUpdatesCurrentOnlyWhenFlagged(t *testing.T) {
	o := NewOutput(HostResource{})
	o.ApplyAuraScale(0, 1500) // no "current" flag bit set
	if o.ScaleCurrent != 1.0 {
		t.Errorf("ScaleCurrent = %v, want unchanged 1.0", o.ScaleCurrent)
	}
	if o.ScaleMax != 1.5 {
		t.Errorf("ScaleMax = %v, want 1.5", o.ScaleMax)
	}

	o.ApplyAuraScale(wlproto.AuraOutputScaleFactorFlagCurrent, 2000)
	if o.ScaleCurrent != 2.0 {
		t.Errorf("ScaleCurrent = %v, want 2.0", o.ScaleCurrent)
	}
	if o.ScaleMax != 2.0 {
		t.Errorf("ScaleMax = %v, want 2.0 (new running max)", o.ScaleMax)
	}
}

func TestApplyModeRecordsMode(t *testing.T) {
	o := NewOutput(HostResource{})
	o.ApplyMode(0, 1920, 1080, 60000)
	if !o.HaveMode {
		t.Fatal("HaveMode = false after ApplyMode")
	}
	if o.Mode.Width != 1920 || o.Mode.Height != 1080 {
		t.Errorf("Mode = %+v, want 1920x1080", o.Mode)
	}
}
