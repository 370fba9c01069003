package model

// 受け取り方法
type DeliveryMode string

const (
	DeliveryModeLocal    DeliveryMode = "local"
	DeliveryModePickup   DeliveryMode = "pickup"
	DeliveryModeDelivery DeliveryMode = "delivery"
)

func (m DeliveryMode) Valid() bool {
	switch m {
	case DeliveryModeLocal, DeliveryModePickup, DeliveryModeDelivery:
		return true
	}
	return false
}

// 受け取り設定。Mode 以外のフィールドはモードに応じて片方だけ埋まる。
type DeliveryConfig struct {
	Mode          DeliveryMode `json:"mode"`
	Tables        []int        `json:"tables,omitempty"`
	PickupTime    string       `json:"pickup_time,omitempty"`
	PickupNotes   string       `json:"pickup_notes,omitempty"`
	Address       string       `json:"address,omitempty"`
	DeliveryNotes string       `json:"delivery_notes,omitempty"`
}
