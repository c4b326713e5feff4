package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"decantifume-api/internal/apperr"
	"decantifume-api/internal/dto"
	"decantifume-api/internal/event"
	"decantifume-api/internal/model"
	"decantifume-api/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultTopProductsLimit = 10

type OrderService interface {
	Create(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*model.Order, error)
	GetByID(ctx context.Context, id string, caller Caller) (*model.Order, error)
	GetByNumber(ctx context.Context, orderNumber string, caller Caller) (*model.Order, error)
	ListMine(ctx context.Context, userID string, q *dto.OrderQuery) (*dto.Page[model.Order], error)
	ListAll(ctx context.Context, q *dto.OrderQuery) (*dto.Page[model.Order], error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error)
	Update(ctx context.Context, id string, req *dto.UpdateOrderRequest) (*model.Order, error)
	Stats(ctx context.Context, caller Caller) (*dto.OrderStats, error)
	TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error)
}

type orderServiceImpl struct {
	db          *gorm.DB
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	publisher   event.Publisher
}

func NewOrderService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	publisher event.Publisher,
) OrderService {
	return &orderServiceImpl{
		db:          db,
		userRepo:    userRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		publisher:   publisher,
	}
}

// Create checks every line against the catalog, then stores the order and
// takes the stock in one transaction.
func (s *orderServiceImpl) Create(ctx context.Context, userID string, req *dto.CreateOrderRequest) (*model.Order, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	products, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	items := make([]model.OrderItem, len(req.Items))
	for i, in := range req.Items {
		product := products[in.Product]
		if err := checkItem(product, in); err != nil {
			return nil, err
		}
		items[i] = model.OrderItem{
			ProductID:    in.Product,
			ProductName:  in.ProductName,
			ProductImage: in.ProductImage,
			DecantSize:   in.DecantSize,
			Price:        in.Price,
			Quantity:     in.Quantity,
			TotalPrice:   in.TotalPrice,
		}
	}

	order := &model.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: req.ShippingAddress.Model(),
		Subtotal:        req.Subtotal,
		ShippingCost:    req.ShippingCost,
		Tax:             req.Tax,
		Discount:        req.Discount,
		TotalAmount:     req.TotalAmount,
		PaymentMethod:   req.PaymentMethod,
		PromoCode:       req.PromoCode,
		Notes:           req.Notes,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			if errors.Is(err, model.ErrSubtotalMismatch) {
				return apperr.BadRequest("Subtotal does not match item totals")
			}
			if errors.Is(err, model.ErrTotalMismatch) {
				return apperr.BadRequest("Total amount calculation is incorrect")
			}
			return fmt.Errorf("store order: %w", err)
		}

		for _, item := range order.Items {
			err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.DecantSize, item.Quantity)
			if errors.Is(err, repository.ErrInsufficientStock) {
				return apperr.BadRequest("Insufficient stock for %s (%s)", products[item.ProductID].Name, item.DecantSize)
			}
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, event.OrderCreated, order, "")

	return s.find(ctx, order.ID)
}

func (s *orderServiceImpl) loadProducts(ctx context.Context, items []dto.OrderItemInput) (map[string]*model.Product, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if !seen[item.Product] {
			seen[item.Product] = true
			ids = append(ids, item.Product)
		}
	}

	found, err := s.productRepo.FindMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if len(found) != len(ids) {
		return nil, apperr.BadRequest("One or more products not found")
	}

	products := make(map[string]*model.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}
	return products, nil
}

func checkItem(product *model.Product, item dto.OrderItemInput) error {
	size := product.FindSize(item.DecantSize)
	if size == nil {
		return apperr.BadRequest("Decant size %s not available for %s", item.DecantSize, product.Name)
	}
	if !size.IsAvailable || size.Stock < item.Quantity {
		return apperr.BadRequest("Insufficient stock for %s (%s)", product.Name, item.DecantSize)
	}
	if !model.WithinTolerance(size.Price, item.Price) {
		return apperr.BadRequest("Price mismatch for %s", product.Name)
	}
	expected := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	if !model.WithinTolerance(expected, item.TotalPrice) {
		return apperr.BadRequest("Total price calculation error for %s", product.Name)
	}
	return nil
}

func (s *orderServiceImpl) GetByID(ctx context.Context, id string, caller Caller) (*model.Order, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("Access denied")
	}
	return order, nil
}

func (s *orderServiceImpl) GetByNumber(ctx context.Context, orderNumber string, caller Caller) (*model.Order, error) {
	order, err := s.orderRepo.FindByNumber(ctx, orderNumber)
	if isNotFound(err) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if !caller.CanAccess(order.UserID) {
		return nil, apperr.Forbidden("Access denied")
	}
	return order, nil
}

func (s *orderServiceImpl) ListMine(ctx context.Context, userID string, q *dto.OrderQuery) (*dto.Page[model.Order], error) {
	filter, err := orderFilter(q)
	if err != nil {
		return nil, err
	}
	filter.UserID = &userID
	filter.PaymentMethod = nil
	filter.OrderNumber = nil
	return s.list(ctx, filter)
}

func (s *orderServiceImpl) ListAll(ctx context.Context, q *dto.OrderQuery) (*dto.Page[model.Order], error) {
	filter, err := orderFilter(q)
	if err != nil {
		return nil, err
	}
	if q.User != "" {
		filter.UserID = &q.User
	}
	return s.list(ctx, filter)
}

func (s *orderServiceImpl) list(ctx context.Context, filter repository.OrderFilter) (*dto.Page[model.Order], error) {
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return newPage(orders, filter.Pagination, total), nil
}

func orderFilter(q *dto.OrderQuery) (repository.OrderFilter, error) {
	filter := repository.OrderFilter{
		OrderStatus:   optional[model.OrderStatus](q.OrderStatus),
		PaymentStatus: optional[model.PaymentStatus](q.PaymentStatus),
		PaymentMethod: optional[model.PaymentMethod](q.PaymentMethod),
		Pagination:    pagination(q.PageQuery),
		Sort:          sortFor(q.SortBy, q.SortOrder),
	}
	if q.OrderNumber != "" {
		filter.OrderNumber = &q.OrderNumber
	}

	var err error
	if filter.StartDate, err = parseDate("startDate", q.StartDate, false); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseDate("endDate", q.EndDate, true); err != nil {
		return filter, err
	}
	return filter, nil
}

// parseDate accepts RFC 3339 or a plain date. A plain end date covers the
// whole day.
func parseDate(field, raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperr.BadRequest("%s must be a valid date", field)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// UpdateStatus moves the order one step along its lifecycle, or cancels it.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := order.OrderStatus
	if !prev.CanTransitionTo(status) {
		return nil, apperr.BadRequest("Cannot change order status from %s to %s", prev, status)
	}

	err = s.orderRepo.UpdateStatus(ctx, nil, id, prev, status)
	if isNotFound(err) {
		return nil, apperr.Conflict("Order status was changed by another request")
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	order.OrderStatus = status
	s.publish(ctx, event.OrderStatusChanged, order, prev)

	return s.find(ctx, id)
}

// Update applies an admin patch. Status fields still follow the lifecycle
// rules.
func (s *orderServiceImpl) Update(ctx context.Context, id string, req *dto.UpdateOrderRequest) (*model.Order, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}

	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	prev := order.OrderStatus

	if req.OrderStatus != nil && *req.OrderStatus != order.OrderStatus {
		if !order.OrderStatus.CanTransitionTo(*req.OrderStatus) {
			return nil, apperr.BadRequest("Cannot change order status from %s to %s", order.OrderStatus, *req.OrderStatus)
		}
		fields["order_status"] = *req.OrderStatus
	}
	if req.PaymentStatus != nil && *req.PaymentStatus != order.PaymentStatus {
		if !order.PaymentStatus.CanTransitionTo(*req.PaymentStatus) {
			return nil, apperr.BadRequest("Cannot change payment status from %s to %s", order.PaymentStatus, *req.PaymentStatus)
		}
		fields["payment_status"] = *req.PaymentStatus
	}
	if req.TrackingNumber != nil {
		fields["tracking_number"] = *req.TrackingNumber
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if req.EstimatedDelivery != nil {
		t, err := parseDate("estimatedDelivery", *req.EstimatedDelivery, false)
		if err != nil {
			return nil, err
		}
		fields["estimated_delivery"] = t
	}
	if req.ActualDelivery != nil {
		t, err := parseDate("actualDelivery", *req.ActualDelivery, false)
		if err != nil {
			return nil, err
		}
		fields["actual_delivery"] = t
	}

	if len(fields) == 0 {
		return order, nil
	}

	if err := s.orderRepo.Update(ctx, id, fields); err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, fmt.Errorf("update order: %w", err)
	}

	updated, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated.OrderStatus != prev {
		s.publish(ctx, event.OrderStatusChanged, updated, prev)
	}
	return updated, nil
}

// Stats covers every order for admins and only the caller's own otherwise.
func (s *orderServiceImpl) Stats(ctx context.Context, caller Caller) (*dto.OrderStats, error) {
	var userID *string
	if !caller.IsAdmin() {
		userID = &caller.UserID
	}

	stats, err := s.orderRepo.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return stats, nil
}

func (s *orderServiceImpl) TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error) {
	if limit <= 0 {
		limit = defaultTopProductsLimit
	}

	top, err := s.orderRepo.TopProducts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	return top, nil
}

func (s *orderServiceImpl) find(ctx context.Context, id string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if isNotFound(err) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (s *orderServiceImpl) publish(ctx context.Context, routingKey string, order *model.Order, prev model.OrderStatus) {
	publishOrderEvent(ctx, s.publisher, routingKey, order, prev)
}

// publishOrderEvent never fails the caller; the order is already committed.
func publishOrderEvent(ctx context.Context, publisher event.Publisher, routingKey string, order *model.Order, prev model.OrderStatus) {
	payload := event.OrderEvent{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		UserID:         order.UserID,
		OrderStatus:    string(order.OrderStatus),
		PreviousStatus: string(prev),
		PaymentStatus:  string(order.PaymentStatus),
		TotalAmount:    order.TotalAmount,
	}
	if order.PaymentIntentID != nil {
		payload.PaymentIntentID = *order.PaymentIntentID
	}

	if err := publisher.Publish(ctx, routingKey, payload); err != nil {
		slog.WarnContext(ctx, "publish order event", "routing_key", routingKey, "order_id", order.ID, "error", err)
	}
}
