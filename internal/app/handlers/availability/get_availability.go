package availability

import (
	"context"
	"time"

	"stayflow/internal/app/dto"
	"stayflow/internal/app/handlers/support"
	"stayflow/internal/app/queries"
	"stayflow/internal/app/uow"
	"stayflow/internal/domain/calendar"
	domainproperty "stayflow/internal/domain/property"
	"stayflow/internal/domain/shared/fault"
)

const GetAvailabilityQueryKey = "availability.get_range"

// GetAvailabilityQuery lists the owner's explicit slots in a range. Dates
// with no record are omitted; absence means available.
type GetAvailabilityQuery struct {
	PropertyID string
	OwnerID    string
	StartDate  string
	EndDate    string
}

func (q GetAvailabilityQuery) Key() string { return GetAvailabilityQueryKey }

type GetAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetAvailabilityHandler) Handle(ctx context.Context, query GetAvailabilityQuery) (dto.AvailabilityRange, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AvailabilityRange{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	prop, err := support.OwnedProperty(ctx, unit, query.PropertyID, query.OwnerID)
	if err != nil {
		return dto.AvailabilityRange{}, err
	}
	start, end, err := parseOptionalRange(query.StartDate, query.EndDate)
	if err != nil {
		return dto.AvailabilityRange{}, err
	}

	slots, err := unit.Availability().Range(ctx, prop.ID, start, end)
	if err != nil {
		return dto.AvailabilityRange{}, err
	}
	return dto.MapAvailabilityRange(query.PropertyID, slots), nil
}

const GetPublicAvailabilityQueryKey = "availability.get_public_range"

// GetPublicAvailabilityQuery is the guest-facing variant without an
// ownership check.
type GetPublicAvailabilityQuery struct {
	PropertyID string
	StartDate  string
	EndDate    string
}

func (q GetPublicAvailabilityQuery) Key() string { return GetPublicAvailabilityQueryKey }

type GetPublicAvailabilityHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetPublicAvailabilityHandler) Handle(ctx context.Context, query GetPublicAvailabilityQuery) (dto.AvailabilityRange, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.AvailabilityRange{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	propertyID := domainproperty.ID(query.PropertyID)
	if _, err := unit.Properties().ByID(ctx, propertyID); err != nil {
		return dto.AvailabilityRange{}, fault.NotFound("property not found")
	}
	start, end, err := parseOptionalRange(query.StartDate, query.EndDate)
	if err != nil {
		return dto.AvailabilityRange{}, err
	}

	slots, err := unit.Availability().Range(ctx, propertyID, start, end)
	if err != nil {
		return dto.AvailabilityRange{}, err
	}
	return dto.MapAvailabilityRange(query.PropertyID, slots), nil
}

// parseOptionalRange allows either bound to be empty, which leaves that side
// of the repository range unbounded.
func parseOptionalRange(startDate, endDate string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if startDate != "" {
		if start, err = calendar.ParseLocal(startDate); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if endDate != "" {
		if end, err = calendar.ParseLocal(endDate); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return time.Time{}, time.Time{}, fault.InvalidRange("start date %s is after end date %s", startDate, endDate)
	}
	return start, end, nil
}

var _ queries.Handler[GetAvailabilityQuery, dto.AvailabilityRange] = (*GetAvailabilityHandler)(nil)
var _ queries.Handler[GetPublicAvailabilityQuery, dto.AvailabilityRange] = (*GetPublicAvailabilityHandler)(nil)
