package merchant

import (
	"fmt"
	"strings"
)

// OrderState is the server-side lifecycle state of an order.
//
//	PENDING    → PROCESSING, AUTHORISED, COMPLETED, CANCELLED, FAILED
//	PROCESSING → AUTHORISED, COMPLETED, CANCELLED, FAILED
//	AUTHORISED → COMPLETED, CANCELLED, FAILED
//	COMPLETED, CANCELLED, FAILED are terminal.
//
// Refunds do not move a COMPLETED order; they are recorded against it.
type OrderState string

const (
	OrderStatePending    OrderState = "PENDING"
	OrderStateProcessing OrderState = "PROCESSING"
	OrderStateAuthorised OrderState = "AUTHORISED"
	OrderStateCompleted  OrderState = "COMPLETED"
	OrderStateCancelled  OrderState = "CANCELLED"
	OrderStateFailed     OrderState = "FAILED"
)

var orderTransitions = map[OrderState][]OrderState{
	OrderStatePending:    {OrderStateProcessing, OrderStateAuthorised, OrderStateCompleted, OrderStateCancelled, OrderStateFailed},
	OrderStateProcessing: {OrderStateAuthorised, OrderStateCompleted, OrderStateCancelled, OrderStateFailed},
	OrderStateAuthorised: {OrderStateCompleted, OrderStateCancelled, OrderStateFailed},
}

// ParseOrderState accepts a state name in any case.
func ParseOrderState(s string) (OrderState, error) {
	st := OrderState(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown order state %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known states.
func (s OrderState) Valid() bool {
	switch s {
	case OrderStatePending, OrderStateProcessing, OrderStateAuthorised,
		OrderStateCompleted, OrderStateCancelled, OrderStateFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s OrderState) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s OrderState) CanTransitionTo(next OrderState) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderState) String() string {
	return string(s)
}

// UnmarshalText normalizes the case of incoming states. Unknown names are
// kept as-is so that a newer server state does not break decoding.
func (s *OrderState) UnmarshalText(text []byte) error {
	*s = OrderState(strings.ToUpper(strings.TrimSpace(string(text))))
	return nil
}
