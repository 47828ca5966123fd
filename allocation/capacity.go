package allocation

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-hostel-admin/api"
)

const (
	TextCodeCapacityExceeded = "CAPACITY_EXCEEDED"
	TextCodeNoMembers        = "NO_MEMBERS_SELECTED"
	TextCodeNoHostel         = "NO_HOSTEL_SELECTED"
)

type capacityRequest struct {
	Requested int
	Remaining int
}

// CheckCapacity fails when more members are selected than the hostel has
// spots left. Exactly filling the hostel is allowed.
func CheckCapacity(selected int, hostel api.Hostel) error {
	remaining := hostel.RemainingCapacity
	if remaining < 0 {
		remaining = 0
	}

	msg := fmt.Sprintf("Not enough space. Only %d spots available.", remaining)
	req := capacityRequest{Requested: selected, Remaining: remaining}

	verr := errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&req,
			validation.Field(&req.Requested,
				validation.Min(0),
				validation.Max(req.Remaining).ErrorObject(validation.NewError("validation_capacity_exceeded", msg)),
			),
		)
	}, msg)
	if verr == nil {
		return nil
	}

	verr.Message = msg
	return verr.
		WithTextCode(TextCodeCapacityExceeded).
		WithMetadata(map[string]any{
			"hostelId":          hostel.ID.String(),
			"remainingCapacity": remaining,
			"requested":         selected,
		})
}

// IsCapacityExceeded reports whether err came from CheckCapacity.
func IsCapacityExceeded(err error) bool {
	var e *errors.Error
	return errors.As(err, &e) && e.TextCode == TextCodeCapacityExceeded
}
