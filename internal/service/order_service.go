package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maosdefada/cakeshop-backend/internal/auditlog"
	"github.com/maosdefada/cakeshop-backend/internal/domain"
	"github.com/maosdefada/cakeshop-backend/internal/events"
	"github.com/maosdefada/cakeshop-backend/internal/relay"
	pkglogger "github.com/maosdefada/cakeshop-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Order errors
var (
	ErrInvalidDeliveryType = errors.New("delivery type must be delivery or pickup")
	ErrDateRequired        = errors.New("order date is required")
	ErrInvalidDate         = errors.New("order date must be dd/mm/yyyy and no earlier than tomorrow")
	ErrTimeRequired        = errors.New("order time is required")
	ErrInvalidTime         = errors.New("order time is not offered for this delivery type")
	ErrAddressRequired     = errors.New("delivery address is required")
	ErrRelayNotConfigured  = errors.New("relay destination has no digits")
)

// OrderConfig checkout settings
type OrderConfig struct {
	DeliveryFee    decimal.Decimal
	WhatsAppNumber string
	DeliveryHours  []string
	PickupHours    []string
	Location       *time.Location
}

// DefaultOrderConfig storefront defaults
func DefaultOrderConfig() OrderConfig {
	return OrderConfig{
		DeliveryFee:    decimal.NewFromInt(20),
		WhatsAppNumber: "5567996184308",
		DeliveryHours:  []string{"13:30", "17:30", "18:00", "19:00"},
		PickupHours:    []string{"11:00", "12:00", "15:00", "18:00", "19:00"},
		Location:       time.Local,
	}
}

// CheckoutOptions what the checkout form may offer
type CheckoutOptions struct {
	DeliveryFee     decimal.Decimal `json:"delivery_fee"`
	HasFreeDelivery bool            `json:"has_free_delivery"`
	DeliveryHours   []string        `json:"delivery_hours"`
	PickupHours     []string        `json:"pickup_hours"`
	EarliestDate    string          `json:"earliest_date"`
	SavedAddress    *domain.Address `json:"saved_address,omitempty"`
}

// SubmitResult outcome of a submission. The order is final even when the
// relay fell back or the audit append failed.
type SubmitResult struct {
	Order       *domain.Order   `json:"order"`
	Message     string          `json:"message"`
	Delivery    *relay.Delivery `json:"delivery,omitempty"`
	Links       relay.Links     `json:"links"`
	FallbackURL string          `json:"fallback_url,omitempty"`
	AuditFailed bool            `json:"audit_failed"`
}

// OrderService checkout
type OrderService interface {
	Options(ctx context.Context, shopperID string) (*CheckoutOptions, error)
	Submit(ctx context.Context, shopperID string, req domain.OrderRequest) (*SubmitResult, error)
}

type orderService struct {
	cfg       OrderConfig
	carts     CartService
	addresses AddressService
	relay     *relay.Relay
	audit     auditlog.Sink
	bus       events.Publisher
	now       func() time.Time
}

// NewOrderService creates the service
func NewOrderService(
	cfg OrderConfig,
	carts CartService,
	addresses AddressService,
	r *relay.Relay,
	audit auditlog.Sink,
	bus events.Publisher,
) (OrderService, error) {
	if relay.Digits(cfg.WhatsAppNumber) == "" {
		return nil, ErrRelayNotConfigured
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if audit == nil {
		audit = auditlog.NopSink{}
	}
	if bus == nil {
		bus = events.NopPublisher{}
	}
	return &orderService{
		cfg:       cfg,
		carts:     carts,
		addresses: addresses,
		relay:     r,
		audit:     audit,
		bus:       bus,
		now:       time.Now,
	}, nil
}

// tomorrow first bookable day, midnight in the shop's location
func (s *orderService) tomorrow() time.Time {
	now := s.now().In(s.cfg.Location)
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, s.cfg.Location)
}

func (s *orderService) hours(t domain.DeliveryType) []string {
	if t == domain.DeliveryTypeDelivery {
		return s.cfg.DeliveryHours
	}
	return s.cfg.PickupHours
}

func (s *orderService) Options(ctx context.Context, shopperID string) (*CheckoutOptions, error) {
	summary, err := s.carts.Get(ctx, shopperID)
	if err != nil {
		return nil, err
	}

	opts := &CheckoutOptions{
		DeliveryFee:     s.cfg.DeliveryFee,
		HasFreeDelivery: summary.HasFreeDelivery,
		DeliveryHours:   append([]string{}, s.cfg.DeliveryHours...),
		PickupHours:     append([]string{}, s.cfg.PickupHours...),
		EarliestDate:    s.tomorrow().Format(domain.DateLayout),
	}
	if summary.HasFreeDelivery {
		opts.DeliveryFee = decimal.Zero
	}

	addr, err := s.addresses.Get(ctx, shopperID)
	switch {
	case err == nil:
		opts.SavedAddress = addr
	case !errors.Is(err, ErrAddressNotFound):
		return nil, err
	}
	return opts, nil
}

// validate checks the form and resolves the delivery address
func (s *orderService) validate(ctx context.Context, shopperID string, req *domain.OrderRequest) error {
	if !req.DeliveryType.Valid() {
		return ErrInvalidDeliveryType
	}

	req.Date = strings.TrimSpace(req.Date)
	if req.Date == "" {
		return ErrDateRequired
	}
	date, err := time.ParseInLocation(domain.DateLayout, req.Date, s.cfg.Location)
	if err != nil || date.Before(s.tomorrow()) {
		return ErrInvalidDate
	}

	req.Time = strings.TrimSpace(req.Time)
	if req.Time == "" {
		return ErrTimeRequired
	}
	offered := false
	for _, h := range s.hours(req.DeliveryType) {
		if h == req.Time {
			offered = true
			break
		}
	}
	if !offered {
		return ErrInvalidTime
	}

	if req.DeliveryType == domain.DeliveryTypePickup {
		req.Address = nil
		return nil
	}
	if req.Address == nil {
		saved, err := s.addresses.Get(ctx, shopperID)
		if errors.Is(err, ErrAddressNotFound) {
			return ErrAddressRequired
		}
		if err != nil {
			return err
		}
		req.Address = saved
	}
	if !req.Address.Complete() {
		return ErrAddressRequired
	}
	return nil
}

// Submit validates, takes the cart, then relays and audits concurrently.
// Neither side effect is retried; an audit failure only flags the result.
func (s *orderService) Submit(ctx context.Context, shopperID string, req domain.OrderRequest) (*SubmitResult, error) {
	if err := s.validate(ctx, shopperID, &req); err != nil {
		return nil, err
	}

	c, err := s.carts.Take(ctx, shopperID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := &domain.Order{
		ID:           auditlog.OrderID(now),
		CreatedAt:    now,
		DeliveryType: req.DeliveryType,
		Date:         req.Date,
		Time:         req.Time,
		Address:      req.Address,
		Items:        c.Items,
		TotalPrice:   c.TotalPrice(),
		DeliveryFee:  c.DeliveryFee(req.DeliveryType, s.cfg.DeliveryFee),
	}

	log := pkglogger.WithShopperID(shopperID)
	result := &SubmitResult{Order: order, Message: relay.FormatOrderMessage(order)}

	var (
		relayErr error
		auditErr error
		g        errgroup.Group
	)
	g.Go(func() error {
		result.Delivery, result.Links, relayErr = s.relay.Send(ctx, s.cfg.WhatsAppNumber, result.Message)
		return nil
	})
	g.Go(func() error {
		auditErr = s.audit.Append(ctx, auditlog.NewRecord(order))
		return nil
	})
	_ = g.Wait()

	if relayErr != nil {
		var tErr *relay.TransportError
		if errors.As(relayErr, &tErr) {
			result.FallbackURL = tErr.Fallback
		} else {
			result.FallbackURL = result.Links.WaMe
		}
		log.Warn().Err(relayErr).Str("order_id", order.ID).Msg("order relay fell back to direct link")
		s.bus.PublishAsync("order", events.TopicRelayFallback, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	if auditErr != nil {
		result.AuditFailed = true
		log.Error().Err(auditErr).Str("order_id", order.ID).Msg("order audit append failed")
		s.publishAuditFailures(order.ID, auditErr)
	}

	s.bus.PublishAsync("order", events.TopicOrderSubmitted, map[string]interface{}{
		"order_id":      order.ID,
		"shopper_id":    shopperID,
		"delivery_type": string(order.DeliveryType),
		"total":         order.GrandTotal().StringFixed(2),
		"items":         len(order.Items),
	})

	log.Info().
		Str("order_id", order.ID).
		Str("delivery_type", string(order.DeliveryType)).
		Str("total", order.GrandTotal().StringFixed(2)).
		Msg("order submitted")

	return result, nil
}

// publishAuditFailures one event per failed sink
func (s *orderService) publishAuditFailures(orderID string, err error) {
	var failed []*auditlog.AuditLogError
	collectAuditErrors(err, &failed)
	if len(failed) == 0 {
		s.bus.PublishAsync("order", events.TopicAuditFailed, map[string]interface{}{"order_id": orderID})
		return
	}
	for _, f := range failed {
		s.bus.PublishAsync("order", events.TopicAuditFailed, map[string]interface{}{
			"order_id": orderID,
			"sink":     f.Sink,
		})
	}
}

func collectAuditErrors(err error, out *[]*auditlog.AuditLogError) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			collectAuditErrors(e, out)
		}
		return
	}
	var aErr *auditlog.AuditLogError
	if errors.As(err, &aErr) {
		*out = append(*out, aErr)
	}
}
