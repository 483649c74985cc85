package models

// AllModels lists every table owned by the service, in migration order.
func AllModels() []any {
	return []any{
		&User{},
		&Order{},
		&OrderItem{},
		&OrderTracking{},
		&TransactionLog{},
		&ActionLog{},
		&Notification{},
	}
}
