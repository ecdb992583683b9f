package econ

import (
	"testing"

	"github.com/econlabs/growthgame/go/internal/models"
)

func TestDefaultModelDeterministic(t *testing.T) {
	model := Default(models.DefaultGameConfig())

	c1, o1 := model(100, 10, 5)
	c2, o2 := model(100, 10, 5)
	if c1 != c2 || o1 != o2 {
		t.Fatalf("model not deterministic: (%v,%v) vs (%v,%v)", c1, o1, c2, o2)
	}
}

func TestDefaultModelDepreciation(t *testing.T) {
	cfg := models.DefaultGameConfig()
	cfg.Depreciation = 0.1
	model := Default(cfg)

	newCapital, _ := model(100, 10, 0)
	if newCapital != 90 {
		t.Fatalf("expected capital 90 after depreciation, got %v", newCapital)
	}
}

func TestDefaultModelClampsInvestment(t *testing.T) {
	cfg := models.DefaultGameConfig()
	model := Default(cfg)

	// Negative investments count as zero.
	gotNeg, _ := model(100, 10, -5)
	gotZero, _ := model(100, 10, 0)
	if gotNeg != gotZero {
		t.Fatalf("negative investment not clamped: %v vs %v", gotNeg, gotZero)
	}

	// Investment cannot exceed current output.
	gotOver, _ := model(100, 10, 50)
	gotMax, _ := model(100, 10, 10)
	if gotOver != gotMax {
		t.Fatalf("oversized investment not clamped: %v vs %v", gotOver, gotMax)
	}
}

func TestDefaultModelGrowsWithInvestment(t *testing.T) {
	model := Default(models.DefaultGameConfig())

	_, lowOutput := model(100, 10, 0)
	_, highOutput := model(100, 10, 10)
	if highOutput <= lowOutput {
		t.Fatalf("expected investing to raise output: %v <= %v", highOutput, lowOutput)
	}
}
