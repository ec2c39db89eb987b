// internal/domain/checkout/stage.go
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/your-org/storefront-checkout/internal/domain/basket"
)

// Stage is one step of the checkout flow. It is encoded in the navigable URL
// state, never persisted server-side.
type Stage string

const (
	StageProduct  Stage = "product"
	StageInfo     Stage = "info"
	StageShipment Stage = "shipment"
)

// Valid reports whether the stage is one of the known checkout stages
func (s Stage) Valid() bool {
	switch s {
	case StageProduct, StageInfo, StageShipment:
		return true
	}
	return false
}

// FieldError describes one invalid or missing recipient field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports the exact set of recipient fields blocking a stage
// transition. It is recoverable: the stage does not advance and nothing is
// discarded.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return fmt.Sprintf("invalid checkout form: %s", strings.Join(msgs, "; "))
}

// Transition is the outcome of a stage navigation attempt
type Transition struct {
	Next           Stage `json:"next"`
	RedirectToAuth bool  `json:"redirect_to_auth"` // Destination stage is preserved in Next
}

var validate = validator.New()

var fieldMessages = map[string]string{
	"Name":     "recipient name is required",
	"Province": "province is required",
	"City":     "city is required",
	"Address":  "address is required",
	"PostCode": "postal code is required",
	"Shipment": "shipment method is required",
}

var fieldNames = map[string]string{
	"Name":     "name",
	"Province": "state",
	"City":     "city",
	"Address":  "address",
	"PostCode": "postCode",
	"Shipment": "shipment",
}

// ValidateSession checks the six required recipient fields and the chosen
// shipment method, reporting one message per failing field. Courier delivery
// outside the courier city fails on the shipment field, mirroring the form
// where the option is unselectable elsewhere.
func ValidateSession(session *Session, courierCity string) error {
	var fields []FieldError

	if err := validate.Struct(session); err != nil {
		var invalid validator.ValidationErrors
		if !errors.As(err, &invalid) {
			return err
		}
		for _, fe := range invalid {
			fields = append(fields, FieldError{
				Field:   fieldNames[fe.StructField()],
				Message: fieldMessages[fe.StructField()],
			})
		}
	}

	if session.Shipment != "" {
		method := session.ShipmentMethod()
		switch {
		case !method.Valid():
			fields = append(fields, FieldError{
				Field:   "shipment",
				Message: fmt.Sprintf("unknown shipment method %q", session.Shipment),
			})
		case method == basket.ShipmentCourier && session.City != courierCity:
			fields = append(fields, FieldError{
				Field:   "shipment",
				Message: fmt.Sprintf("courier delivery is only available in %s", courierCity),
			})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Advance applies the stage-gating rules for a navigation attempt.
// Back navigation is always allowed and discards nothing. Moving forward to
// info requires an authenticated session; moving forward to shipment
// additionally requires a complete recipient form.
func Advance(current, target Stage, authenticated bool, session *Session, courierCity string) (Transition, error) {
	if !target.Valid() {
		return Transition{Next: current}, fmt.Errorf("unknown checkout stage %q", target)
	}

	// Backwards or in place: freely allowed
	if stageIndex(target) <= stageIndex(current) {
		return Transition{Next: target}, nil
	}

	if !authenticated {
		// Preserve the intended destination so the caller can resume after
		// authentication
		return Transition{Next: target, RedirectToAuth: true}, nil
	}

	if target == StageShipment {
		if err := ValidateSession(session, courierCity); err != nil {
			return Transition{Next: current}, err
		}
	}

	return Transition{Next: target}, nil
}

func stageIndex(s Stage) int {
	switch s {
	case StageProduct:
		return 0
	case StageInfo:
		return 1
	case StageShipment:
		return 2
	}
	return -1
}
