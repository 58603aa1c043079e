package models

import "time"

// Well-known setting keys
const (
	SettingShopName           = "shop_name"
	SettingShopAddress        = "shop_address"
	SettingShopPhone          = "shop_phone"
	SettingAuditRetentionDays = "audit_retention_days"
	SettingLowStockThreshold  = "low_stock_threshold"
	SettingOnlinePayments     = "online_payments_enabled"
)

type SystemSetting struct {
	ID              int       `json:"id"`
	SettingKey      string    `json:"setting_key"`
	SettingValue    string    `json:"setting_value"`
	Description     string    `json:"description"`
	UpdatedAt       time.Time `json:"updated_at"`
	UpdatedByUserID int       `json:"updated_by_user_id"`
}

type UpdateSettingRequest struct {
	SettingValue string `json:"setting_value"`
}
