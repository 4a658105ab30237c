// file: internals/features/subscription/dto/subscription_dto.go
package dto

import (
	"time"

	m "sekolahku_backend/internals/features/subscription/model"
)

/* =============== REQUESTS =============== */

type UpgradeRequest struct {
	TargetTier    string `json:"target_tier" validate:"required,oneof=standard premium"`
	BillingPeriod string `json:"billing_period" validate:"omitempty,oneof=monthly yearly"`
}

func (r *UpgradeRequest) Normalize() {
	if r.BillingPeriod == "" {
		r.BillingPeriod = "monthly"
	}
}

/* =============== RESPONSES =============== */

type UsageMeter struct {
	Used      int     `json:"used"`
	Limit     int     `json:"limit"`
	Ratio     float64 `json:"ratio"`
	WarnLevel string  `json:"warn_level,omitempty"`
}

func BuildUsageMeter(used, limit int) UsageMeter {
	ratio := m.UsageRatio(used, limit)
	return UsageMeter{
		Used:      used,
		Limit:     limit,
		Ratio:     ratio,
		WarnLevel: m.WarnLevel(ratio),
	}
}

type TierInfo struct {
	Code           string `json:"code"`
	Name           string `json:"name"`
	StudentLimit   int    `json:"student_limit"`
	ClassLimit     int    `json:"class_limit"`
	ReportsEnabled bool   `json:"reports_enabled"`
	MonthlyPrice   int64  `json:"monthly_price"`
	YearlyPrice    int64  `json:"yearly_price"`
	SavingsPercent int    `json:"savings_percent"`
}

func FromTier(t m.Tier) TierInfo {
	return TierInfo{
		Code:           t.Code,
		Name:           t.Name,
		StudentLimit:   t.StudentLimit,
		ClassLimit:     t.ClassLimit,
		ReportsEnabled: t.ReportsEnabled,
		MonthlyPrice:   t.MonthlyPrice,
		YearlyPrice:    t.YearlyPrice,
		SavingsPercent: m.SavingsPercent(t),
	}
}

func AllTierInfos() []TierInfo {
	tiers := m.AllTiers()
	out := make([]TierInfo, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, FromTier(t))
	}
	return out
}

type SubscriptionResponse struct {
	Tier              TierInfo   `json:"tier"`
	Students          UsageMeter `json:"students"`
	Classes           UsageMeter `json:"classes"`
	ReportsGenerated  int        `json:"reports_generated"`
	CycleStart        time.Time  `json:"cycle_start"`
	CycleEnd          time.Time  `json:"cycle_end"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	PendingOrderID    *string    `json:"pending_order_id,omitempty"`
	PendingTier       *string    `json:"pending_tier,omitempty"`

	AvailableTiers []TierInfo `json:"available_tiers"`
}

func FromSubscriptionModel(sub m.SubscriptionModel, tier m.Tier) SubscriptionResponse {
	return SubscriptionResponse{
		Tier:              FromTier(tier),
		Students:          BuildUsageMeter(sub.SubscriptionStudentsUsed, tier.StudentLimit),
		Classes:           BuildUsageMeter(sub.SubscriptionClassesCreated, tier.ClassLimit),
		ReportsGenerated:  sub.SubscriptionReportsGenerated,
		CycleStart:        sub.SubscriptionCycleStart,
		CycleEnd:          sub.SubscriptionCycleEnd,
		CancelAtPeriodEnd: sub.SubscriptionCancelAtPeriodEnd,
		PendingOrderID:    sub.SubscriptionPendingOrderID,
		PendingTier:       sub.SubscriptionPendingTier,
		AvailableTiers:    AllTierInfos(),
	}
}

type UpgradeResponse struct {
	OrderID     string `json:"order_id"`
	TargetTier  string `json:"target_tier"`
	GrossAmount int64  `json:"gross_amount"`
	SnapToken   string `json:"snap_token"`
	RedirectURL string `json:"redirect_url,omitempty"`
}
