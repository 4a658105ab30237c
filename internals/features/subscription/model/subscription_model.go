package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionModel struct {
	SubscriptionID uuid.UUID `gorm:"column:subscription_id;type:uuid;primaryKey" json:"subscription_id"`

	SubscriptionInstituteID uuid.UUID `gorm:"column:subscription_institute_id;type:uuid;not null;uniqueIndex" json:"subscription_institute_id"`

	SubscriptionTier string `gorm:"column:subscription_tier;type:varchar(20);not null;default:'basic'" json:"subscription_tier"`

	// Usage counters
	SubscriptionStudentsUsed     int `gorm:"column:subscription_students_used;not null;default:0" json:"subscription_students_used"`
	SubscriptionClassesCreated   int `gorm:"column:subscription_classes_created;not null;default:0" json:"subscription_classes_created"`
	SubscriptionReportsGenerated int `gorm:"column:subscription_reports_generated;not null;default:0" json:"subscription_reports_generated"`

	// Billing cycle
	SubscriptionCycleStart        time.Time `gorm:"column:subscription_cycle_start;not null" json:"subscription_cycle_start"`
	SubscriptionCycleEnd          time.Time `gorm:"column:subscription_cycle_end;not null" json:"subscription_cycle_end"`
	SubscriptionCancelAtPeriodEnd bool      `gorm:"column:subscription_cancel_at_period_end;not null;default:false" json:"subscription_cancel_at_period_end"`

	// Order Midtrans yang belum settle (upgrade pending)
	SubscriptionPendingOrderID *string `gorm:"column:subscription_pending_order_id;type:varchar(64);index" json:"subscription_pending_order_id,omitempty"`
	SubscriptionPendingTier    *string `gorm:"column:subscription_pending_tier;type:varchar(20)" json:"subscription_pending_tier,omitempty"`

	SubscriptionCreatedAt time.Time  `gorm:"column:subscription_created_at;autoCreateTime" json:"subscription_created_at"`
	SubscriptionUpdatedAt *time.Time `gorm:"column:subscription_updated_at;autoUpdateTime" json:"subscription_updated_at,omitempty"`
}

func (SubscriptionModel) TableName() string { return "subscriptions" }

func (m *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if m.SubscriptionID == uuid.Nil {
		m.SubscriptionID = uuid.New()
	}
	return nil
}
