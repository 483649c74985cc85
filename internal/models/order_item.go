package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderItem struct {
	ID             uint            `json:"item_id" gorm:"column:item_id;primaryKey"`
	OrderID        uint            `json:"order_id" gorm:"not null;index"`
	Order          *Order          `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	ServiceType    ServiceType     `json:"service_type" gorm:"type:varchar(32);not null"`
	ServiceName    string          `json:"service_name"`
	FinalPrice     decimal.Decimal `json:"final_price" gorm:"type:numeric(12,2);not null"`
	ApprovalStatus ApprovalStatus  `json:"approval_status" gorm:"type:varchar(32);not null;default:'pending_review'"`
	CurrentStatus  Status          `json:"current_status" gorm:"type:varchar(32);not null;default:'pending'"`
	PaymentStatus  PaymentStatus   `json:"payment_status" gorm:"type:varchar(32);not null;default:'unpaid'"`
	SpecificData   datatypes.JSON  `json:"specific_data" gorm:"type:json"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `json:"-" gorm:"index"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// OwnerID returns the user who placed the order, or 0 when the order was not loaded.
func (i *OrderItem) OwnerID() uint {
	if i.Order == nil {
		return 0
	}
	return i.Order.UserID
}

// Details decodes SpecificData into the payload shape of the item's service type.
func (i *OrderItem) Details() (ServiceDetails, error) {
	return DecodeServiceDetails(i.ServiceType, i.SpecificData)
}

// SetDetails stores d and aligns ServiceType with it.
func (i *OrderItem) SetDetails(d ServiceDetails) error {
	raw, err := EncodeServiceDetails(d)
	if err != nil {
		return err
	}
	i.ServiceType = d.ServiceType()
	i.SpecificData = raw
	return nil
}
