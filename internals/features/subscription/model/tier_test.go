package model

import "testing"

func TestUsageRatioAndWarnLevel(t *testing.T) {
	tests := []struct {
		name  string
		used  int
		limit int
		ratio float64
		warn  string
	}{
		{"kosong", 0, 50, 0, ""},
		{"setengah", 25, 50, 0.5, ""},
		{"tepat 80 persen", 40, 50, 0.8, "warning"},
		{"tepat 90 persen", 45, 50, 0.9, "critical"},
		{"over limit", 60, 50, 1.2, "critical"},
		{"limit nol", 10, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ratio := UsageRatio(tt.used, tt.limit)
			if ratio != tt.ratio {
				t.Fatalf("UsageRatio(%d,%d) = %v, want %v", tt.used, tt.limit, ratio, tt.ratio)
			}
			if got := WarnLevel(ratio); got != tt.warn {
				t.Fatalf("WarnLevel(%v) = %q, want %q", ratio, got, tt.warn)
			}
		})
	}
}

func TestIsUpgrade(t *testing.T) {
	tests := []struct {
		current, target string
		want            bool
	}{
		{TierBasic, TierStandard, true},
		{TierBasic, TierPremium, true},
		{TierStandard, TierPremium, true},
		{TierStandard, TierBasic, false},
		{TierPremium, TierPremium, false},
		{"unknown", TierPremium, false},
		{TierBasic, "unknown", false},
	}
	for _, tt := range tests {
		if got := IsUpgrade(tt.current, tt.target); got != tt.want {
			t.Errorf("IsUpgrade(%q, %q) = %v, want %v", tt.current, tt.target, got, tt.want)
		}
	}
}

func TestSavingsPercent(t *testing.T) {
	standard, _ := TierByCode(TierStandard)
	// 12x299rb = 3.588jt vs 2.99jt tahunan → hemat 16%
	if got := SavingsPercent(standard); got != 16 {
		t.Fatalf("SavingsPercent(standard) = %d, want 16", got)
	}

	basic, _ := TierByCode(TierBasic)
	if got := SavingsPercent(basic); got != 0 {
		t.Fatalf("SavingsPercent(basic) = %d, want 0 (gratis)", got)
	}

	noDiscount := Tier{MonthlyPrice: 100_000, YearlyPrice: 1_200_000}
	if got := SavingsPercent(noDiscount); got != 0 {
		t.Fatalf("SavingsPercent tanpa diskon = %d, want 0", got)
	}
}

func TestTierCatalog(t *testing.T) {
	tiers := AllTiers()
	if len(tiers) != 3 {
		t.Fatalf("AllTiers() len = %d, want 3", len(tiers))
	}
	if tiers[0].Code != TierBasic || tiers[2].Code != TierPremium {
		t.Fatalf("urutan katalog salah: %v", tiers)
	}
	if _, ok := TierByCode("enterprise"); ok {
		t.Fatal("TierByCode(enterprise) harus false")
	}
	basic, _ := TierByCode(TierBasic)
	if basic.ReportsEnabled {
		t.Fatal("tier basic tidak boleh punya akses reports")
	}
}
