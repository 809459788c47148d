// Package validator registers the domain enum tags used by request DTOs
// across all bounded contexts, so every module validates plan tiers,
// visit types, windows and statuses against one list.
package validator

import (
	"storeroom_backend/internal/domain"
	"storeroom_backend/platform/validator"
)

// Tags registered by Register.
const (
	TagPlanTier    = "plantier"
	TagVisitType   = "visittype"
	TagTimeWindow  = "timewindow"
	TagVisitStatus = "visitstatus"
)

// Register adds the domain tags to val. It must run before the first
// Struct call that uses them.
func Register(val *validator.Validator) error {
	rules := map[string][]string{
		TagPlanTier:    stringsOf(domain.PlanTiers()),
		TagVisitType:   {string(domain.VisitPickup), string(domain.VisitDelivery), string(domain.VisitContainerDelivery)},
		TagTimeWindow:  {string(domain.WindowMorning), string(domain.WindowMidday), string(domain.WindowAfternoon), string(domain.WindowWeekend)},
		TagVisitStatus: {string(domain.VisitScheduled), string(domain.VisitInProgress), string(domain.VisitCompleted), string(domain.VisitCancelled)},
	}
	for tag, values := range rules {
		if err := val.RegisterValidation(tag, validator.OneOf(values...)); err != nil {
			return err
		}
	}
	return nil
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
