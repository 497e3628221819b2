package payment

import (
	"encoding/json"
	"fmt"
	"strings"

	errors "github.com/frahmantamala/payment-management/internal"
)

type Status string

const (
	StatusPending          Status = "PENDING"
	StatusProcessedFailure Status = "PROCESSED_FAILURE"
	StatusProcessedSuccess Status = "PROCESSED_SUCCESS"
)

var Statuses = []Status{StatusPending, StatusProcessedFailure, StatusProcessedSuccess}

// transitions lists, per current status, every status it may move to.
// A status missing from the table accepts no transition at all.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusPending:          true,
		StatusProcessedSuccess: true,
		StatusProcessedFailure: true,
	},
	StatusProcessedFailure: {
		StatusPending: true,
	},
	StatusProcessedSuccess: {},
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) IsTerminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// ParseStatus is case-insensitive. A blank value yields nil without error.
func ParseStatus(raw string) (*Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	s := Status(strings.ToUpper(raw))
	if !s.Valid() {
		return nil, errors.NewValidationFieldError("status",
			fmt.Sprintf("invalid status: %s. accepted values: %s", raw, joinStatuses()), errors.ErrCodeInvalidStatus)
	}
	return &s, nil
}

func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Transition returns the status a record moves to, or a validation error
// naming the rejected transition.
func Transition(current Status, requested *Status) (Status, error) {
	if requested == nil {
		return current, errors.NewValidationFieldError("status", "new status is required", errors.ErrCodeStatusRequired)
	}
	if CanTransition(current, *requested) {
		return *requested, nil
	}

	var reason string
	switch {
	case current.IsTerminal():
		reason = fmt.Sprintf("%s is final", current)
	case current == StatusProcessedFailure:
		reason = fmt.Sprintf("%s can only return to %s", current, StatusPending)
	case !requested.Valid():
		reason = fmt.Sprintf("unknown status %q", *requested)
	default:
		reason = "transition not allowed"
	}
	return current, errors.NewValidationError(
		fmt.Sprintf("invalid status transition from %s to %s: %s", current, *requested, reason),
		errors.ErrCodeInvalidStatusTransition)
}

func joinStatuses() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

type Method string

const (
	MethodBoleto     Method = "BOLETO"
	MethodPix        Method = "PIX"
	MethodDebitCard  Method = "CARTAO_DEBITO"
	MethodCreditCard Method = "CARTAO_CREDITO"
)

var Methods = []Method{MethodBoleto, MethodPix, MethodDebitCard, MethodCreditCard}

func (m Method) Valid() bool {
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}

func (m Method) IsCard() bool {
	return m == MethodDebitCard || m == MethodCreditCard
}

func ParseMethod(raw string) (Method, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	m := Method(strings.ToUpper(raw))
	if !m.Valid() {
		return "", errors.NewValidationFieldError("payment_method",
			fmt.Sprintf("invalid payment method: %s. accepted values: %s", raw, strings.Join(methodNames(), ", ")),
			errors.ErrCodeInvalidPaymentMethod)
	}
	return m, nil
}

func (m *Method) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = ""
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.NewValidationFieldError("payment_method", "payment method must be a string", errors.ErrCodeInvalidPaymentMethod)
	}
	parsed, err := ParseMethod(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func methodNames() []string {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	return names
}
