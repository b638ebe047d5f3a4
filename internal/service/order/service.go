package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"merchant-client/internal/domain"
	custrepo "merchant-client/internal/repository/customer"
	orderrepo "merchant-client/internal/repository/order"
	"merchant-client/pkg/merchant"
	"merchant-client/pkg/money"
)

// Service runs the order lifecycle: creation, confirmation, capture,
// cancellation and refunds.
type Service struct {
	repo      orderrepo.Repository
	customers custrepo.Repository
	logger    *log.Logger
	now       func() time.Time
}

// New creates a Service. customers may be nil, in which case customer ids
// on new orders are not checked.
func New(repo orderrepo.Repository, customers custrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:      repo,
		customers: customers,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput captures the fields accepted when creating an order.
type CreateInput struct {
	Amount              *money.Amount     `json:"amount"`
	Currency            string            `json:"currency"`
	SettlementCurrency  string            `json:"settlement_currency"`
	Email               *string           `json:"email"`
	Description         *string           `json:"description"`
	CaptureMode         string            `json:"capture_mode"`
	MerchantOrderExtRef *string           `json:"merchant_order_ext_ref"`
	CustomerID          *string           `json:"customer_id"`
	Metadata            map[string]string `json:"metadata"`
}

// Create validates in and stores a new PENDING order.
func (s *Service) Create(ctx context.Context, merchantID string, in CreateInput) (*domain.Order, error) {
	if in.Amount == nil || !in.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: order amount must be positive", domain.ErrInvalidAmount)
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	settlement := currency
	if in.SettlementCurrency != "" {
		if settlement, err = normalizeCurrency(in.SettlementCurrency); err != nil {
			return nil, err
		}
	}
	mode, err := parseCaptureMode(in.CaptureMode)
	if err != nil {
		return nil, err
	}
	if in.CustomerID != nil && s.customers != nil {
		if _, err := s.customers.GetByID(ctx, merchantID, *in.CustomerID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown customer %s", domain.ErrInvalidInput, *in.CustomerID)
			}
			return nil, err
		}
	}

	o, err := s.repo.Create(ctx, domain.Order{
		MerchantID:          merchantID,
		Type:                "PAYMENT",
		State:               merchant.OrderStatePending,
		Amount:              *in.Amount,
		Currency:            currency,
		SettlementCurrency:  settlement,
		Outstanding:         *in.Amount,
		Refunded:            money.Amount{},
		Email:               in.Email,
		Description:         in.Description,
		CaptureMode:         mode,
		MerchantOrderExtRef: in.MerchantOrderExtRef,
		CustomerID:          in.CustomerID,
		Metadata:            in.Metadata,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("order created id=%s amount=%s %s", o.ID, o.Amount, o.Currency)
	return o, nil
}

func (s *Service) Get(ctx context.Context, merchantID, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, merchantID, id)
}

func (s *Service) List(ctx context.Context, merchantID string, f domain.OrderFilter) ([]domain.Order, error) {
	return s.repo.List(ctx, merchantID, f)
}

// Confirm moves a PENDING order on. Manual-capture orders stop at
// AUTHORISED; automatic ones are captured in full. A payment method used on
// an order that names a customer is saved on that customer.
func (s *Service) Confirm(ctx context.Context, merchantID, id, paymentMethodID string) (*domain.Order, error) {
	o, err := s.repo.Mutate(ctx, merchantID, id, func(o *domain.Order) error {
		if o.State != merchant.OrderStatePending {
			return fmt.Errorf("%w: only a pending order can be confirmed, order is %s", domain.ErrInvalidState, o.State)
		}
		if o.CaptureMode == domain.CaptureManual {
			return s.transition(o, merchant.OrderStateAuthorised)
		}
		if err := s.transition(o, merchant.OrderStateCompleted); err != nil {
			return err
		}
		o.Outstanding = money.Amount{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if paymentMethodID != "" && o.CustomerID != nil && s.customers != nil {
		pm := domain.PaymentMethod{ID: paymentMethodID, Type: "CARD", SavedAt: s.now()}
		if _, err := s.customers.AddPaymentMethod(ctx, merchantID, *o.CustomerID, pm); err != nil {
			s.logger.Printf("order confirmed id=%s but saving payment method failed: %v", o.ID, err)
		}
	}
	return o, nil
}

// Capture collects amount from an AUTHORISED order. A nil amount captures
// everything outstanding. The order stays AUTHORISED until nothing is left
// to capture, then completes.
func (s *Service) Capture(ctx context.Context, merchantID, id string, amount *money.Amount) (*domain.Order, error) {
	return s.repo.Mutate(ctx, merchantID, id, func(o *domain.Order) error {
		if o.State != merchant.OrderStateAuthorised {
			return fmt.Errorf("%w: only an authorised order can be captured, order is %s", domain.ErrInvalidState, o.State)
		}
		take := o.Outstanding
		if amount != nil {
			take = *amount
		}
		if !take.IsPositive() || o.Outstanding.Less(take) {
			return fmt.Errorf("%w: capture amount must be positive and at most %s", domain.ErrInvalidAmount, o.Outstanding)
		}
		rest, err := o.Outstanding.Sub(take)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidAmount, err)
		}
		o.Outstanding = rest
		if !rest.IsZero() {
			s.logger.Printf("order partially captured id=%s amount=%s outstanding=%s", o.ID, take, rest)
			return nil
		}
		return s.transition(o, merchant.OrderStateCompleted)
	})
}

// Cancel voids an order that has not been completed yet.
func (s *Service) Cancel(ctx context.Context, merchantID, id string) (*domain.Order, error) {
	return s.repo.Mutate(ctx, merchantID, id, func(o *domain.Order) error {
		return s.transition(o, merchant.OrderStateCancelled)
	})
}

// Refund returns amount against a COMPLETED order. The running refunded
// total never exceeds the order amount.
func (s *Service) Refund(ctx context.Context, merchantID, id string, amount *money.Amount, description string) (*domain.Order, error) {
	return s.repo.Mutate(ctx, merchantID, id, func(o *domain.Order) error {
		if o.State != merchant.OrderStateCompleted {
			return fmt.Errorf("%w: only a completed order can be refunded, order is %s", domain.ErrInvalidState, o.State)
		}
		if amount == nil || !amount.IsPositive() {
			return fmt.Errorf("%w: refund amount must be positive", domain.ErrInvalidAmount)
		}
		total, err := o.Refunded.Add(*amount)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidAmount, err)
		}
		if o.Amount.Less(total) {
			return fmt.Errorf("%w: total refunded amount can be up to %s", domain.ErrInvalidAmount, o.Amount)
		}
		o.Refunded = total
		s.logger.Printf("order refunded id=%s amount=%s total=%s description=%q", o.ID, amount, total, description)
		return nil
	})
}

func (s *Service) transition(o *domain.Order, next merchant.OrderState) error {
	if !o.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: cannot move order from %s to %s", domain.ErrInvalidState, o.State, next)
	}
	o.State = next
	if next == merchant.OrderStateCompleted {
		now := s.now()
		o.CompletedAt = &now
	}
	return nil
}

func normalizeCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if len(c) != 3 {
		return "", fmt.Errorf("%w: currency must be a 3-letter code", domain.ErrInvalidInput)
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: currency must be a 3-letter code", domain.ErrInvalidInput)
		}
	}
	return c, nil
}

func parseCaptureMode(m string) (domain.CaptureMode, error) {
	switch domain.CaptureMode(strings.ToUpper(m)) {
	case "", domain.CaptureAutomatic:
		return domain.CaptureAutomatic, nil
	case domain.CaptureManual:
		return domain.CaptureManual, nil
	default:
		return "", fmt.Errorf("%w: unknown capture mode %q", domain.ErrInvalidInput, m)
	}
}
