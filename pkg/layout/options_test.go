package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/untangle/pkg/errors"
)

func TestApplyDefaults(t *testing.T) {
	var o Options
	o.ApplyDefaults()

	if o != DefaultOptions() {
		t.Errorf("zero options after ApplyDefaults = %+v, want %+v", o, DefaultOptions())
	}

	// Explicit non-zero values survive
	o = Options{Iterations: 50, ChargeStrength: -100}
	o.ApplyDefaults()
	if o.Iterations != 50 {
		t.Errorf("Iterations = %d, want 50", o.Iterations)
	}
	if o.ChargeStrength != -100 {
		t.Errorf("ChargeStrength = %g, want -100", o.ChargeStrength)
	}
	if o.Width != DefaultWidth {
		t.Errorf("Width = %g, want %g", o.Width, DefaultWidth)
	}
}

func TestOptionsValidate(t *testing.T) {
	valid := DefaultOptions()

	tests := []struct {
		name     string
		mutate   func(*Options)
		wantCode errors.Code
	}{
		{"defaults pass", func(o *Options) {}, ""},
		{"zero width", func(o *Options) { o.Width = 0 }, errors.ErrCodeInvalidDimensions},
		{"negative height", func(o *Options) { o.Height = -1 }, errors.ErrCodeInvalidDimensions},
		{"negative iterations", func(o *Options) { o.Iterations = -1 }, errors.ErrCodeInvalidOptions},
		{"alpha decay at one", func(o *Options) { o.AlphaDecay = 1 }, errors.ErrCodeInvalidOptions},
		{"negative velocity decay", func(o *Options) { o.VelocityDecay = -0.1 }, errors.ErrCodeInvalidOptions},
		{"NaN alpha", func(o *Options) { o.Alpha = math.NaN() }, errors.ErrCodeInvalidOptions},
		{"infinite charge", func(o *Options) { o.ChargeStrength = math.Inf(-1) }, errors.ErrCodeInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid
			tt.mutate(&o)
			err := o.Validate()
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if got := errors.GetCode(err); got != tt.wantCode {
				t.Errorf("error code = %v, want %v", got, tt.wantCode)
			}
		})
	}
}
