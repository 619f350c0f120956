package followup

import (
	"testing"
)

func TestClassify(t *testing.T) {
	s := DefaultSettings() // threshold 10, critical x2.0, watch 0.7

	cases := []struct {
		daysSince int
		want      RiskLevel
	}{
		{-1, RiskCritical}, // never contacted
		{0, ""},
		{6, ""},   // below watch threshold (7)
		{7, RiskWatch},
		{9, RiskWatch},
		{10, RiskWarning},
		{19, RiskWarning},
		{20, RiskCritical},
		{45, RiskCritical},
	}
	for _, tc := range cases {
		if got := Classify(tc.daysSince, s); got != tc.want {
			t.Errorf("Classify(%d) = %q, want %q", tc.daysSince, got, tc.want)
		}
	}
}

func TestClassifyCustomSettings(t *testing.T) {
	s := Settings{ThresholdDays: 5, CriticalMultiplier: 3.0, WatchRatio: 0.5}

	if got := Classify(2, s); got != RiskWatch {
		t.Errorf("watch floor: got %q", got)
	}
	if got := Classify(5, s); got != RiskWarning {
		t.Errorf("threshold: got %q", got)
	}
	if got := Classify(15, s); got != RiskCritical {
		t.Errorf("critical: got %q", got)
	}
	if got := Classify(1, s); got != "" {
		t.Errorf("fresh contact: got %q", got)
	}
}
