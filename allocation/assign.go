package allocation

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/api"
	"github.com/goliatone/go-hostel-admin/internal/logging"
	"github.com/rs/zerolog"
)

// Hostels is what the assigner needs from the cached hostel resource.
// *resourcecache.Hostels satisfies it.
type Hostels interface {
	// Lookup returns the most recently fetched copy of a hostel, if any.
	Lookup(id api.ID) (api.Hostel, bool)
	Get(ctx context.Context, id api.ID) (api.Hostel, error)
	ManualAssign(ctx context.Context, req api.ManualAssignRequest) error
}

// Assigner places selected members in a hostel after checking capacity
// locally.
type Assigner struct {
	hostels Hostels
	logger  zerolog.Logger
}

func NewAssigner(hostels Hostels) *Assigner {
	return &Assigner{
		hostels: hostels,
		logger:  logging.WithComponent("allocation"),
	}
}

// ManualAssign assigns memberIDs to hostelID. The assignment request is only
// sent when the selection fits the hostel's remaining capacity; server
// rejections are returned unchanged.
func (a *Assigner) ManualAssign(ctx context.Context, hostelID api.ID, memberIDs []api.ID) error {
	if len(memberIDs) == 0 {
		return errors.NewValidation("Please select at least one user", errors.FieldError{
			Field:   "memberIds",
			Message: "select at least one user",
		}).WithTextCode(TextCodeNoMembers)
	}
	if hostelID.IsZero() {
		return errors.NewValidation("Please select a hostel", errors.FieldError{
			Field:   "hostelId",
			Message: "select a hostel",
		}).WithTextCode(TextCodeNoHostel)
	}

	hostel, ok := a.hostels.Lookup(hostelID)
	if !ok {
		var err error
		hostel, err = a.hostels.Get(ctx, hostelID)
		if err != nil {
			return err
		}
	}

	if err := CheckCapacity(len(memberIDs), hostel); err != nil {
		a.logger.Debug().
			Str("hostel_id", hostelID.String()).
			Int("requested", len(memberIDs)).
			Int("remaining", hostel.RemainingCapacity).
			Msg("assignment rejected locally")
		return err
	}

	return a.hostels.ManualAssign(ctx, api.ManualAssignRequest{
		MemberIDs: append([]api.ID(nil), memberIDs...),
		HostelID:  hostelID,
	})
}
