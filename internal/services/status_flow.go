package services

import (
	"slices"
	"tailor_shop/internal/models"
)

// genericFlow covers repair, dry cleaning and customization.
var genericFlow = map[models.Status][]models.Status{
	models.StatusPending:       {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress:    {models.StatusReadyToPickup, models.StatusCancelled},
	models.StatusReadyToPickup: {models.StatusPickedUp, models.StatusCancelled},
	models.StatusPickedUp:      {models.StatusCompleted},
	models.StatusCompleted:     {},
	models.StatusCancelled:     {},
	models.StatusPriceDeclined: {},
}

var rentalFlow = map[models.Status][]models.Status{
	models.StatusPending:       {models.StatusRented, models.StatusCancelled},
	models.StatusReadyToPickup: {models.StatusRented, models.StatusReturned, models.StatusCompleted, models.StatusCancelled},
	models.StatusPickedUp:      {models.StatusRented},
	models.StatusRented:        {models.StatusReturned, models.StatusCompleted},
	models.StatusReturned:      {models.StatusCompleted},
	models.StatusCompleted:     {},
	models.StatusCancelled:     {},
}

func flowFor(serviceType models.ServiceType) map[models.Status][]models.Status {
	switch serviceType {
	case models.ServiceRepair, models.ServiceDryCleaning, models.ServiceCustomization:
		return genericFlow
	case models.ServiceRental:
		return rentalFlow
	}
	return genericFlow
}

// InitialStatus is the status an item holds before its first tracking event.
// Every flow currently starts at pending.
func InitialStatus(models.ServiceType) models.Status {
	return models.StatusPending
}

// NextStatuses returns the statuses reachable in one step. Terminal and unknown statuses
// yield an empty, non-nil slice.
func NextStatuses(serviceType models.ServiceType, current models.Status) []models.Status {
	next := flowFor(serviceType)[current]
	out := make([]models.Status, len(next))
	copy(out, next)
	return out
}

func IsTerminal(serviceType models.ServiceType, status models.Status) bool {
	return len(flowFor(serviceType)[status]) == 0
}

// ValidateTransition accepts any listed next status and the no-op transition to the same status.
func ValidateTransition(serviceType models.ServiceType, from, to models.Status) error {
	if from == to {
		return nil
	}
	next := NextStatuses(serviceType, from)
	if slices.Contains(next, to) {
		return nil
	}
	return &InvalidTransitionError{
		ServiceType: serviceType,
		From:        from,
		To:          to,
		Allowed:     next,
	}
}

// ValidatePath replays statuses from the initial status and reports the first illegal step.
func ValidatePath(serviceType models.ServiceType, statuses []models.Status) error {
	current := InitialStatus(serviceType)
	for _, s := range statuses {
		if err := ValidateTransition(serviceType, current, s); err != nil {
			return err
		}
		current = s
	}
	return nil
}
