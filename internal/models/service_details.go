package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// ServiceDetails is the per-service-type payload kept in order_items.specific_data.
// Exactly one concrete type exists per ServiceType.
type ServiceDetails interface {
	ServiceType() ServiceType
}

type RepairDetails struct {
	GarmentType       string `json:"garment_type"`
	DamageDescription string `json:"damage_description"`
	DamageLevel       string `json:"damage_level,omitempty"` // minor, moderate, severe
	PickupDate        string `json:"pickup_date,omitempty"`
}

func (RepairDetails) ServiceType() ServiceType { return ServiceRepair }

type DryCleaningDetails struct {
	GarmentType string `json:"garment_type"`
	Quantity    int    `json:"quantity"`
	FabricCare  string `json:"fabric_care,omitempty"`
	Express     bool   `json:"express,omitempty"`
}

func (DryCleaningDetails) ServiceType() ServiceType { return ServiceDryCleaning }

type CustomizationDetails struct {
	GarmentType  string             `json:"garment_type"`
	Fabric       string             `json:"fabric,omitempty"`
	Measurements map[string]float64 `json:"measurements,omitempty"`
	DesignNotes  string             `json:"design_notes,omitempty"`
}

func (CustomizationDetails) ServiceType() ServiceType { return ServiceCustomization }

type RentalDetails struct {
	ProductName string     `json:"product_name"`
	Size        string     `json:"size,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

func (RentalDetails) ServiceType() ServiceType { return ServiceRental }

// DecodeServiceDetails unmarshals raw into the variant for st. An empty payload yields
// the zero value of that variant.
func DecodeServiceDetails(st ServiceType, raw []byte) (ServiceDetails, error) {
	switch st {
	case ServiceRepair:
		return decodeInto[RepairDetails](raw)
	case ServiceDryCleaning:
		return decodeInto[DryCleaningDetails](raw)
	case ServiceCustomization:
		return decodeInto[CustomizationDetails](raw)
	case ServiceRental:
		return decodeInto[RentalDetails](raw)
	}
	return nil, fmt.Errorf("unknown service type %q", st)
}

func EncodeServiceDetails(d ServiceDetails) (datatypes.JSON, error) {
	if d == nil {
		return nil, fmt.Errorf("service details are required")
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s details: %w", d.ServiceType(), err)
	}
	return datatypes.JSON(raw), nil
}

func decodeInto[T ServiceDetails](raw []byte) (ServiceDetails, error) {
	var v T
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s details: %w", v.ServiceType(), err)
	}
	return v, nil
}
