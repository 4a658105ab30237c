package model

// Tier = level paket langganan yang mengontrol limit student & fitur.
const (
	TierBasic    = "basic"
	TierStandard = "standard"
	TierPremium  = "premium"
)

type Tier struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	StudentLimit   int    `json:"student_limit"`
	ClassLimit     int    `json:"class_limit"`
	ReportsEnabled bool   `json:"reports_enabled"`
	// Harga dalam rupiah (IDR), tanpa desimal
	MonthlyPrice int64 `json:"monthly_price"`
	YearlyPrice  int64 `json:"yearly_price"`
}

// Katalog tier; urutan = urutan upgrade.
var tierCatalog = map[string]Tier{
	TierBasic: {
		Code:         TierBasic,
		Name:         "Basic",
		StudentLimit: 50,
		ClassLimit:   5,
		MonthlyPrice: 0,
		YearlyPrice:  0,
	},
	TierStandard: {
		Code:           TierStandard,
		Name:           "Standard",
		StudentLimit:   300,
		ClassLimit:     30,
		ReportsEnabled: true,
		MonthlyPrice:   299_000,
		YearlyPrice:    2_990_000,
	},
	TierPremium: {
		Code:           TierPremium,
		Name:           "Premium",
		StudentLimit:   2000,
		ClassLimit:     200,
		ReportsEnabled: true,
		MonthlyPrice:   799_000,
		YearlyPrice:    7_990_000,
	},
}

var tierOrder = []string{TierBasic, TierStandard, TierPremium}

func TierByCode(code string) (Tier, bool) {
	t, ok := tierCatalog[code]
	return t, ok
}

func AllTiers() []Tier {
	out := make([]Tier, 0, len(tierOrder))
	for _, c := range tierOrder {
		out = append(out, tierCatalog[c])
	}
	return out
}

// IsUpgrade: target berada di atas current pada urutan katalog.
func IsUpgrade(current, target string) bool {
	ci, ti := -1, -1
	for i, c := range tierOrder {
		if c == current {
			ci = i
		}
		if c == target {
			ti = i
		}
	}
	return ci >= 0 && ti >= 0 && ti > ci
}

// SavingsPercent: persentase hemat paket tahunan vs 12x bulanan (display only,
// tidak ada proration).
func SavingsPercent(t Tier) int {
	full := t.MonthlyPrice * 12
	if full <= 0 || t.YearlyPrice >= full {
		return 0
	}
	return int((full - t.YearlyPrice) * 100 / full)
}

// UsageRatio: students used vs limit, 0..1 (bisa >1 kalau over limit).
func UsageRatio(used, limit int) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(used) / float64(limit)
}

// WarnLevel untuk UI: "" (aman), "warning" (≥80%), "critical" (≥90%).
func WarnLevel(ratio float64) string {
	switch {
	case ratio >= 0.9:
		return "critical"
	case ratio >= 0.8:
		return "warning"
	default:
		return ""
	}
}
