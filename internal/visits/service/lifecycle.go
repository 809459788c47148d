package service

import (
	"context"
	"fmt"

	"storeroom_backend/internal/domain"
	"storeroom_backend/internal/events"
	"storeroom_backend/internal/schema"
	"storeroom_backend/internal/visits/transport"
	"storeroom_backend/platform/apperr"
	"storeroom_backend/platform/sanitize"
)

// Transition moves a visit to a new status.
//
// Staff may perform any legal transition. A customer may only cancel their
// own scheduled visit. Repeating the current status is acknowledged without
// a write, except that a repeated completion of a pickup re-runs the billing
// activation check so a failed activation can be retried.
//
// The status is persisted before any side effect. Billing, item and task
// side effects never undo a persisted transition.
func (s *Service) Transition(ctx context.Context, actor domain.Actor, id string, req transport.TransitionRequest) (transport.VisitResponse, error) {
	target := domain.VisitStatus(req.Status)
	if !target.Valid() {
		return transport.VisitResponse{}, apperr.InvalidFields("invalid status", []apperr.FieldError{{Field: "status", Message: "unknown status"}})
	}

	visit, err := s.load(ctx, actor, id)
	if err != nil {
		return transport.VisitResponse{}, err
	}
	if !actor.Staff && !(target == domain.VisitCancelled && (visit.Status == domain.VisitScheduled || visit.Status == domain.VisitCancelled)) {
		return transport.VisitResponse{}, apperr.Forbidden("customers can only cancel scheduled visits")
	}

	if visit.Status == target {
		if target == domain.VisitCompleted && visit.Type == domain.VisitPickup {
			s.activateBilling(ctx, visit)
		}
		return toResponse(visit), nil
	}
	if visit.Status.Terminal() {
		return transport.VisitResponse{}, apperr.Validation(fmt.Sprintf("visit is already %s", visit.Status))
	}
	if !visit.Status.CanTransitionTo(target) {
		return transport.VisitResponse{}, apperr.Validation(fmt.Sprintf("cannot move visit from %s to %s", visit.Status, target))
	}

	from := visit.Status
	now := s.now()
	visit.Status = target
	fields := []string{schema.FieldStatus}
	switch target {
	case domain.VisitCompleted:
		visit.CompletedAt = &now
		fields = append(fields, schema.FieldCompletedAt)
	case domain.VisitCancelled:
		visit.CancelledAt = &now
		fields = append(fields, schema.FieldCancelledAt)
	}
	if notes := sanitize.Text(req.DriverNotes); notes != "" {
		visit.DriverNotes = notes
		fields = append(fields, schema.FieldDriverNotes)
	}

	updated, err := s.visits.Update(ctx, visit.ID, visit, fields...)
	if err != nil {
		return transport.VisitResponse{}, err
	}

	if target == domain.VisitCompleted && updated.Type == domain.VisitPickup {
		s.activateBilling(ctx, updated)
	}
	s.syncItems(ctx, updated, from)

	s.tasks.Record(ctx, domain.OperationalTask{
		CustomerID: updated.CustomerID,
		VisitID:    updated.ID,
		Priority:   transitionPriority(target),
		Action:     fmt.Sprintf("%s visit on %s moved from %s to %s", label(updated.Type), updated.Date.Format(transport.DateLayout), from, target),
	})
	s.eventBus.Publish(ctx, events.VisitStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		VisitID:    updated.ID,
		CustomerID: updated.CustomerID,
		Type:       updated.Type,
		From:       from,
		To:         target,
		ActorID:    actor.ID,
	})

	return toResponse(updated), nil
}

// itemMove describes how a transition changes the items on the truck.
type itemMove struct {
	from        []domain.ItemStatus
	to          domain.ItemStatus
	clearReturn bool
}

func itemMoveFor(visitType domain.VisitType, to domain.VisitStatus) (itemMove, bool) {
	switch visitType {
	case domain.VisitPickup:
		switch to {
		case domain.VisitInProgress:
			return itemMove{from: []domain.ItemStatus{domain.ItemAtHome}, to: domain.ItemInTransit}, true
		case domain.VisitCompleted:
			return itemMove{from: []domain.ItemStatus{domain.ItemAtHome, domain.ItemInTransit}, to: domain.ItemInStorage}, true
		case domain.VisitCancelled:
			return itemMove{from: []domain.ItemStatus{domain.ItemInTransit}, to: domain.ItemAtHome}, true
		}
	case domain.VisitDelivery:
		switch to {
		case domain.VisitInProgress:
			return itemMove{from: []domain.ItemStatus{domain.ItemInStorage}, to: domain.ItemInTransit}, true
		case domain.VisitCompleted:
			return itemMove{from: []domain.ItemStatus{domain.ItemInStorage, domain.ItemInTransit}, to: domain.ItemAtHome, clearReturn: true}, true
		case domain.VisitCancelled:
			return itemMove{from: []domain.ItemStatus{domain.ItemInTransit}, to: domain.ItemInStorage, clearReturn: true}, true
		}
	}
	return itemMove{}, false
}

// syncItems follows the items through the visit and refreshes usage. It is
// best effort: a failure leaves the item for staff to correct and is logged.
func (s *Service) syncItems(ctx context.Context, visit *domain.Visit, from domain.VisitStatus) {
	move, ok := itemMoveFor(visit.Type, visit.Status)
	if !ok || len(visit.ItemIDs) == 0 {
		return
	}

	changed := false
	for _, itemID := range visit.ItemIDs {
		item, err := s.items.Find(ctx, itemID)
		if err != nil {
			s.warn(ctx, "item sync skipped", "visit_id", visit.ID, "item_id", itemID, "error", err)
			continue
		}

		var fields []string
		if contains(move.from, item.Status) {
			item.Status = move.to
			fields = append(fields, schema.FieldStatus)
		}
		if move.clearReturn && item.ReturnVisitID == visit.ID {
			item.ReturnVisitID = ""
			fields = append(fields, schema.FieldReturnVisitID)
		}
		if len(fields) == 0 {
			continue
		}
		if _, err := s.items.Update(ctx, item.ID, item, fields...); err != nil {
			s.warn(ctx, "item sync failed", "visit_id", visit.ID, "item_id", itemID, "from", from, "error", err)
			continue
		}
		changed = true
	}

	if changed && s.usage != nil {
		if err := s.usage.RecomputeUsage(ctx, visit.CustomerID); err != nil {
			s.warn(ctx, "usage recompute failed", "customer_id", visit.CustomerID, "error", err)
		}
	}
}

func transitionPriority(to domain.VisitStatus) domain.TaskPriority {
	switch to {
	case domain.VisitCancelled:
		return domain.PriorityHigh
	case domain.VisitCompleted:
		return domain.PriorityLow
	}
	return domain.PriorityNormal
}

func contains(list []domain.ItemStatus, s domain.ItemStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (s *Service) warn(ctx context.Context, msg string, args ...any) {
	if s.log != nil {
		s.log.WithContext(ctx).Warn(msg, args...)
	}
}
