// Package orders implements the order lifecycle: creation with inventory
// reservation, status transitions, cancellation, administrator edits, and the
// append-only audit log.
package orders

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront/internal/inventory"
	"storefront/internal/models"
	"storefront/internal/ordernum"
	"storefront/internal/pricing"
)

// maxWriteAttempts bounds the re-read/recompute/retry loop on concurrent
// order edits.
const maxWriteAttempts = 3

var phonePattern = regexp.MustCompile(`^[0-9]{10,11}$`)

// Service orchestrates the order lifecycle over its collaborators. All
// inventory movement goes through the ledger; all totals go through the
// pricing calculator; every mutation appends exactly one history entry.
type Service struct {
	store   Store
	catalog Catalog
	ledger  inventory.Ledger
	numbers ordernum.Allocator
	carts   Carts
	rates   pricing.Rates
	log     *zap.Logger
	now     func() time.Time
}

// NewService wires a Service. rates must contain every shipping method the
// service should accept.
func NewService(store Store, catalog Catalog, ledger inventory.Ledger, numbers ordernum.Allocator, carts Carts, rates pricing.Rates, log *zap.Logger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		ledger:  ledger,
		numbers: numbers,
		carts:   carts,
		rates:   rates,
		log:     log,
		now:     time.Now,
	}
}

// CreateItem is one requested line at checkout.
type CreateItem struct {
	ProductSlug string
	Quantity    int
}

// CreateInput is everything checkout needs to place an order.
type CreateInput struct {
	Owner          OwnerKey
	Items          []CreateItem
	ShippingInfo   models.ShippingInfo
	ShippingMethod string
	Notes          string
}

// Create places a new order: capture catalog prices, reserve stock item by
// item (rolling back on the first failure), price, allocate an order number,
// persist as pending, then clear the originating cart. From the caller's view
// the whole sequence either produced an order with matching reservations or
// changed nothing.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Order, error) {
	if in.Owner.Empty() {
		return nil, ValidationError("order must belong to a user or a session")
	}
	if len(in.Items) == 0 {
		return nil, ValidationError("order must contain at least one item")
	}
	for _, item := range in.Items {
		if item.ProductSlug == "" {
			return nil, ValidationError("productSlug is required")
		}
		if item.Quantity < 1 {
			return nil, ValidationError("quantity must be at least 1")
		}
	}
	if err := validateShippingInfo(in.ShippingInfo); err != nil {
		return nil, err
	}
	if _, ok := s.rates[in.ShippingMethod]; !ok {
		return nil, ValidationError("unknown shipping method " + in.ShippingMethod)
	}

	// Capture current catalog prices before touching inventory.
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		product, err := s.catalog.FindBySlug(ctx, item.ProductSlug)
		if err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductSlug: product.Slug,
			Title:       product.Title,
			Price:       product.Price,
			Quantity:    item.Quantity,
		})
	}

	if err := s.reserveItems(ctx, items); err != nil {
		return nil, err
	}

	totals, err := pricing.Quote(items, in.ShippingMethod, 0, s.rates)
	if err != nil {
		s.releaseItems(ctx, items)
		return nil, err
	}

	now := s.now()
	number, err := s.numbers.Next(ctx, now)
	if err != nil {
		s.releaseItems(ctx, items)
		return nil, err
	}

	order := &models.Order{
		OrderNumber:    number,
		UserID:         in.Owner.UserID,
		SessionID:      in.Owner.SessionID,
		Items:          items,
		Subtotal:       totals.Subtotal,
		ShippingCost:   totals.ShippingCost,
		ShippingMethod: in.ShippingMethod,
		Discount:       totals.Discount,
		Total:          totals.Total,
		ShippingInfo:   in.ShippingInfo,
		PaymentMethod:  models.PaymentMethodCOD,
		Status:         models.StatusPending,
		Notes:          in.Notes,
		History:        []models.HistoryEntry{models.NewOrderCreated(now, in.Owner.UserID)},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Insert(ctx, order); err != nil {
		s.releaseItems(ctx, items)
		return nil, err
	}

	// The order exists; a cart that failed to clear is an annoyance, not a
	// reason to fail the checkout.
	if err := s.carts.Clear(ctx, in.Owner); err != nil {
		s.log.Warn("cart clear failed after checkout",
			zap.String("order_number", number), zap.Error(err))
	}

	s.log.Info("order created",
		zap.String("order_number", number),
		zap.Float64("total", order.Total),
		zap.Int("items", len(order.Items)))
	return order, nil
}

// Get loads one order.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return s.store.FindByID(ctx, id)
}

// ListForOwner pages through the orders belonging to one owner key, newest
// first.
func (s *Service) ListForOwner(ctx context.Context, owner OwnerKey, page, limit int64) ([]models.Order, int64, error) {
	if owner.Empty() {
		return nil, 0, ValidationError("no user or session found")
	}
	return s.store.List(ctx, ListQuery{Owner: &owner, Page: page, Limit: limit})
}

// ListAdmin pages through all orders, optionally filtered by status.
func (s *Service) ListAdmin(ctx context.Context, status models.OrderStatus, page, limit int64) ([]models.Order, int64, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, ValidationError("unknown status " + string(status))
	}
	return s.store.List(ctx, ListQuery{Status: status, Page: page, Limit: limit})
}

// Transition moves an order to a new status, enforcing the state machine. A
// transition to cancelled is routed through Cancel so inventory is restored.
func (s *Service) Transition(ctx context.Context, id primitive.ObjectID, to models.OrderStatus, actor *primitive.ObjectID) (*models.Order, error) {
	if !to.IsValid() {
		return nil, ValidationError("unknown status " + string(to))
	}
	if to == models.StatusCancelled {
		return s.Cancel(ctx, id, actor)
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		order, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if !order.Status.CanTransitionTo(to) {
			return nil, InvalidTransitionError{From: order.Status, To: to}
		}

		now := s.now()
		from := order.Status
		order.History = append(order.History, models.NewStatusChanged(now, actor, from, to))
		order.Status = to
		order.UpdatedAt = now

		err = s.store.Replace(ctx, order)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		s.log.Info("order status changed",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
		return order, nil
	}
	return nil, ErrConflict
}

// Cancel cancels an order and releases every quantity it reserved. The
// conditional status flip is the once-only gate: whoever wins it performs the
// release, so a second cancel can never double-credit stock.
func (s *Service) Cancel(ctx context.Context, id primitive.ObjectID, actor *primitive.ObjectID) (*models.Order, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		order, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order.Status == models.StatusCancelled {
			return nil, ErrAlreadyCancelled
		}
		if !order.Status.CanTransitionTo(models.StatusCancelled) {
			return nil, InvalidTransitionError{From: order.Status, To: models.StatusCancelled}
		}

		now := s.now()
		from := order.Status
		order.History = append(order.History, models.NewStatusChanged(now, actor, from, models.StatusCancelled))
		order.Status = models.StatusCancelled
		order.UpdatedAt = now

		err = s.store.Replace(ctx, order)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, sq := range sortedQuantities(order.Quantities()) {
			if err := s.ledger.Release(ctx, sq.sku, sq.qty); err != nil {
				s.log.Error("stock release failed after cancellation",
					zap.String("order_number", order.OrderNumber),
					zap.String("sku", sq.sku),
					zap.Int("qty", sq.qty),
					zap.Error(err))
			}
		}

		s.log.Info("order cancelled",
			zap.String("order_number", order.OrderNumber),
			zap.String("from", string(from)))
		return order, nil
	}
	return nil, ErrConflict
}

// EditInput carries an administrator edit. Nil fields are left alone.
type EditInput struct {
	Items          *[]CreateItem
	ShippingInfo   *models.ShippingInfo
	ShippingMethod *string
	ShippingCost   *float64
	Discount       *float64
	Notes          *string
	CourierName    *string
	TrackingNumber *string
	CourierNotes   *string
}

// Edit applies an administrator edit. Totals are recomputed through the
// pricing calculator whenever items, shipping, or discount change. Item
// quantity increases go through the same reservation path as checkout and
// fail the edit on insufficient stock; decreases release the difference after
// the edit is persisted.
func (s *Service) Edit(ctx context.Context, id primitive.ObjectID, in EditInput, actor *primitive.ObjectID) (*models.Order, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		order, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order.Status == models.StatusCancelled {
			return nil, ValidationError("cancelled orders cannot be edited")
		}

		oldQuantities := order.Quantities()
		var changed []string
		reprice := false

		if in.Items != nil {
			if order.Status != models.StatusPending && order.Status != models.StatusConfirmed {
				return nil, ValidationError("items can only be edited before shipment")
			}
			newItems, err := s.resolveEditItems(ctx, order, *in.Items)
			if err != nil {
				return nil, err
			}
			if !itemsEqual(order.Items, newItems) {
				order.Items = newItems
				changed = append(changed, "items")
				reprice = true
			}
		}

		if in.ShippingInfo != nil {
			if err := validateShippingInfo(*in.ShippingInfo); err != nil {
				return nil, err
			}
			if *in.ShippingInfo != order.ShippingInfo {
				order.ShippingInfo = *in.ShippingInfo
				changed = append(changed, "shippingInfo")
			}
		}

		shippingCost := order.ShippingCost
		if in.ShippingMethod != nil && *in.ShippingMethod != order.ShippingMethod {
			rate, ok := s.rates[*in.ShippingMethod]
			if !ok {
				return nil, ValidationError("unknown shipping method " + *in.ShippingMethod)
			}
			order.ShippingMethod = *in.ShippingMethod
			shippingCost = rate
			changed = append(changed, "shippingMethod")
			reprice = true
		}
		if in.ShippingCost != nil {
			if *in.ShippingCost < 0 {
				return nil, ValidationError("shippingCost cannot be negative")
			}
			if *in.ShippingCost != shippingCost {
				shippingCost = *in.ShippingCost
				changed = append(changed, "shippingCost")
				reprice = true
			}
		}

		discount := order.Discount
		if in.Discount != nil {
			if *in.Discount < 0 {
				return nil, ValidationError("discount cannot be negative")
			}
			if *in.Discount != order.Discount {
				discount = *in.Discount
				changed = append(changed, "discount")
				reprice = true
			}
		}

		if in.Notes != nil && *in.Notes != order.Notes {
			order.Notes = *in.Notes
			changed = append(changed, "notes")
		}
		if in.CourierName != nil && *in.CourierName != order.CourierName {
			order.CourierName = *in.CourierName
			changed = append(changed, "courierName")
		}
		if in.TrackingNumber != nil && *in.TrackingNumber != order.TrackingNumber {
			order.TrackingNumber = *in.TrackingNumber
			changed = append(changed, "trackingNumber")
		}
		if in.CourierNotes != nil && *in.CourierNotes != order.CourierNotes {
			order.CourierNotes = *in.CourierNotes
			changed = append(changed, "courierNotes")
		}

		if len(changed) == 0 {
			// Nothing changed; no write, no history entry.
			return order, nil
		}

		if reprice {
			totals := pricing.QuoteFixed(order.Items, shippingCost, discount)
			if totals.Subtotal != order.Subtotal {
				changed = append(changed, "subtotal")
			}
			if totals.Total != order.Total {
				changed = append(changed, "total")
			}
			order.Subtotal = totals.Subtotal
			order.ShippingCost = totals.ShippingCost
			order.Discount = totals.Discount
			order.Total = totals.Total
		}

		// Quantity increases reserve before the write; decreases release only
		// after it sticks.
		newQuantities := order.Quantities()
		reserved, err := s.reserveDeltas(ctx, oldQuantities, newQuantities)
		if err != nil {
			return nil, err
		}

		now := s.now()
		notes := ""
		if in.Notes != nil {
			notes = *in.Notes
		}
		order.History = append(order.History, models.NewEdited(now, actor, changed, notes))
		order.UpdatedAt = now

		err = s.store.Replace(ctx, order)
		if errors.Is(err, ErrConflict) {
			s.undoReservations(ctx, reserved)
			continue
		}
		if err != nil {
			s.undoReservations(ctx, reserved)
			return nil, err
		}

		s.releaseDecreases(ctx, oldQuantities, newQuantities)

		s.log.Info("order edited",
			zap.String("order_number", order.OrderNumber),
			zap.Strings("changed", changed))
		return order, nil
	}
	return nil, ErrConflict
}

// AppendLog appends a free-form history entry without touching any other
// field.
func (s *Service) AppendLog(ctx context.Context, id primitive.ObjectID, action, notes string, actor *primitive.ObjectID) (*models.Order, error) {
	entry := models.NewManualLog(s.now(), actor, action, notes)
	if err := s.store.AppendHistory(ctx, id, entry); err != nil {
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// resolveEditItems builds the new line-item set for an edit. Slugs already on
// the order keep their captured price; new slugs are priced from the catalog
// at edit time.
func (s *Service) resolveEditItems(ctx context.Context, order *models.Order, items []CreateItem) ([]models.OrderItem, error) {
	if len(items) == 0 {
		return nil, ValidationError("order must contain at least one item")
	}

	existing := make(map[string]models.OrderItem, len(order.Items))
	for _, item := range order.Items {
		existing[item.ProductSlug] = item
	}

	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		if item.ProductSlug == "" {
			return nil, ValidationError("productSlug is required")
		}
		if item.Quantity < 1 {
			return nil, ValidationError("quantity must be at least 1")
		}
		if prev, ok := existing[item.ProductSlug]; ok {
			out = append(out, models.OrderItem{
				ProductSlug: prev.ProductSlug,
				Title:       prev.Title,
				Price:       prev.Price,
				Quantity:    item.Quantity,
			})
			continue
		}
		product, err := s.catalog.FindBySlug(ctx, item.ProductSlug)
		if err != nil {
			return nil, err
		}
		out = append(out, models.OrderItem{
			ProductSlug: product.Slug,
			Title:       product.Title,
			Price:       product.Price,
			Quantity:    item.Quantity,
		})
	}
	return out, nil
}

type skuQuantity struct {
	sku string
	qty int
}

// reserveItems reserves every line of a new order, releasing the lines
// already reserved if any one fails.
func (s *Service) reserveItems(ctx context.Context, items []models.OrderItem) error {
	for i, item := range items {
		if err := s.ledger.Reserve(ctx, item.ProductSlug, item.Quantity); err != nil {
			s.releaseItems(ctx, items[:i])
			var unknown inventory.UnknownSKUError
			if errors.As(err, &unknown) {
				return ProductNotFoundError{Slug: unknown.SKU}
			}
			return err
		}
	}
	return nil
}

func (s *Service) releaseItems(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		if err := s.ledger.Release(ctx, item.ProductSlug, item.Quantity); err != nil {
			s.log.Error("rollback release failed",
				zap.String("sku", item.ProductSlug),
				zap.Int("qty", item.Quantity),
				zap.Error(err))
		}
	}
}

// reserveDeltas reserves the per-SKU quantity increases between two item
// sets, rolling back on the first failure.
func (s *Service) reserveDeltas(ctx context.Context, prev, next map[string]int) ([]skuQuantity, error) {
	var reserved []skuQuantity
	for _, sq := range sortedQuantities(next) {
		delta := sq.qty - prev[sq.sku]
		if delta <= 0 {
			continue
		}
		if err := s.ledger.Reserve(ctx, sq.sku, delta); err != nil {
			s.undoReservations(ctx, reserved)
			var unknown inventory.UnknownSKUError
			if errors.As(err, &unknown) {
				return nil, ProductNotFoundError{Slug: unknown.SKU}
			}
			return nil, err
		}
		reserved = append(reserved, skuQuantity{sku: sq.sku, qty: delta})
	}
	return reserved, nil
}

func (s *Service) undoReservations(ctx context.Context, reserved []skuQuantity) {
	for _, sq := range reserved {
		if err := s.ledger.Release(ctx, sq.sku, sq.qty); err != nil {
			s.log.Error("rollback release failed",
				zap.String("sku", sq.sku),
				zap.Int("qty", sq.qty),
				zap.Error(err))
		}
	}
}

// releaseDecreases releases the per-SKU quantity decreases between two item
// sets, including SKUs removed entirely.
func (s *Service) releaseDecreases(ctx context.Context, prev, next map[string]int) {
	for _, sq := range sortedQuantities(prev) {
		delta := sq.qty - next[sq.sku]
		if delta <= 0 {
			continue
		}
		if err := s.ledger.Release(ctx, sq.sku, delta); err != nil {
			s.log.Error("stock release failed after edit",
				zap.String("sku", sq.sku),
				zap.Int("qty", delta),
				zap.Error(err))
		}
	}
}

// sortedQuantities flattens a quantity map in slug order so inventory calls
// happen in a stable sequence.
func sortedQuantities(m map[string]int) []skuQuantity {
	out := make([]skuQuantity, 0, len(m))
	for sku, qty := range m {
		out = append(out, skuQuantity{sku: sku, qty: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].sku < out[j].sku })
	return out
}

func validateShippingInfo(info models.ShippingInfo) error {
	if info.Name == "" {
		return ValidationError("shipping name is required")
	}
	if info.Address == "" {
		return ValidationError("shipping address is required")
	}
	if !phonePattern.MatchString(info.Phone) {
		return ValidationError("phone must be 10-11 digits")
	}
	if info.SecondaryPhone != "" && !phonePattern.MatchString(info.SecondaryPhone) {
		return ValidationError("secondary phone must be 10-11 digits")
	}
	return nil
}

func itemsEqual(a, b []models.OrderItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
