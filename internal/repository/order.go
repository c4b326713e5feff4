package repository

import (
	"context"
	"encoding/json"
	"time"

	"decantifume-api/internal/dto"
	"decantifume-api/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderFilter struct {
	UserID        *string
	OrderStatus   *model.OrderStatus
	PaymentStatus *model.PaymentStatus
	PaymentMethod *model.PaymentMethod
	StartDate     *time.Time
	EndDate       *time.Time
	OrderNumber   *string
	Pagination    Pagination
	Sort          Sort
}

var orderSortColumns = map[string]string{
	"createdAt":   "created_at",
	"totalAmount": "total_amount",
	"orderNumber": "order_number",
}

// salesStatuses are the order states counted as sales.
var salesStatuses = []model.OrderStatus{
	model.OrderStatusConfirmed,
	model.OrderStatusProcessing,
	model.OrderStatusShipped,
	model.OrderStatusDelivered,
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, from, to model.OrderStatus) error
	UpdatePayment(ctx context.Context, tx *gorm.DB, id string, status model.PaymentStatus, paymentIntentID string) error
	MarkPaid(ctx context.Context, tx *gorm.DB, id, reference string) (bool, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Stats(ctx context.Context, userID *string) (*dto.OrderStats, error)
	TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Items").Preload("User")
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *orderRepoImpl) FindByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return r.findOne(ctx, "order_number = ?", orderNumber)
}

func (r *orderRepoImpl) FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*model.Order, error) {
	return r.findOne(ctx, "payment_intent_id = ?", paymentIntentID)
}

func (r *orderRepoImpl) findOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Scopes(withDetails).
		Where(query, arg).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})

	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.OrderStatus != nil {
		q = q.Where("order_status = ?", *filter.OrderStatus)
	}
	if filter.PaymentStatus != nil {
		q = q.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.PaymentMethod != nil {
		q = q.Where("payment_method = ?", *filter.PaymentMethod)
	}
	if filter.OrderNumber != nil && *filter.OrderNumber != "" {
		q = q.Where("LOWER(order_number) LIKE ?", likePattern(*filter.OrderNumber))
	}
	if filter.StartDate != nil {
		q = q.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("created_at <= ?", *filter.EndDate)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := filter.Sort
	if sort.By == "" {
		sort = Sort{By: "createdAt", Desc: true}
	}

	var orders []model.Order
	err := q.Scopes(withDetails).
		Order(orderBy(sort, orderSortColumns, "created_at")).
		Scopes(paginate(filter.Pagination.Normalize())).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus moves the order from one status to another. The row is only
// touched while it is still in the expected state.
func (r *orderRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, from, to model.OrderStatus) error {
	result := r.conn(tx).WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND order_status = ?", id, from).
		Updates(map[string]any{
			"order_status": to,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) UpdatePayment(ctx context.Context, tx *gorm.DB, id string, status model.PaymentStatus, paymentIntentID string) error {
	fields := map[string]any{
		"payment_status": status,
		"updated_at":     time.Now(),
	}
	if paymentIntentID != "" {
		fields["payment_intent_id"] = paymentIntentID
	}

	result := r.conn(tx).WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkPaid moves a pending or failed payment to paid. It reports false when
// no row was in a payable state, so concurrent callers see exactly one true.
func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, id, reference string) (bool, error) {
	fields := map[string]any{
		"payment_status": model.PaymentStatusPaid,
		"updated_at":     time.Now(),
	}
	if reference != "" {
		fields["payment_intent_id"] = reference
	}

	result := r.conn(tx).WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND payment_status IN ?", id, []model.PaymentStatus{model.PaymentStatusPending, model.PaymentStatusFailed}).
		Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *orderRepoImpl) Update(ctx context.Context, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepoImpl) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

type orderStatsRow struct {
	TotalOrders       int64
	TotalRevenue      decimal.Decimal
	AverageOrderValue decimal.Decimal
	PendingOrders     int64
	ConfirmedOrders   int64
	ProcessingOrders  int64
	ShippedOrders     int64
	DeliveredOrders   int64
	CancelledOrders   int64
}

func (r *orderRepoImpl) Stats(ctx context.Context, userID *string) (*dto.OrderStats, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var row orderStatsRow
	err := q.Select(`COUNT(*) AS total_orders,
			COALESCE(SUM(total_amount), 0) AS total_revenue,
			COALESCE(AVG(total_amount), 0) AS average_order_value,
			COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS pending_orders,
			COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS confirmed_orders,
			COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS processing_orders,
			COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS shipped_orders,
			COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS delivered_orders,
			COALESCE(SUM(CASE WHEN order_status = ? THEN 1 ELSE 0 END), 0) AS cancelled_orders`,
		model.OrderStatusPending,
		model.OrderStatusConfirmed,
		model.OrderStatusProcessing,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
		model.OrderStatusCancelled,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &dto.OrderStats{
		TotalOrders:       row.TotalOrders,
		TotalRevenue:      row.TotalRevenue.Round(2),
		AverageOrderValue: row.AverageOrderValue.Round(2),
		PendingOrders:     row.PendingOrders,
		ConfirmedOrders:   row.ConfirmedOrders,
		ProcessingOrders:  row.ProcessingOrders,
		ShippedOrders:     row.ShippedOrders,
		DeliveredOrders:   row.DeliveredOrders,
		CancelledOrders:   row.CancelledOrders,
	}, nil
}

type topProductRow struct {
	ProductID            string
	Name                 string
	DecantSize           string
	Brand                *string
	Category             *string
	Images               *string
	TotalQuantity        int64
	TotalRevenue         decimal.Decimal
	TotalOrders          int64
	AverageOrderQuantity decimal.Decimal
	PricePerUnit         decimal.Decimal
}

func (r *orderRepoImpl) TopProducts(ctx context.Context, limit int) ([]dto.TopProduct, error) {
	var rows []topProductRow
	err := r.db.WithContext(ctx).
		Table("order_items AS oi").
		Select(`oi.product_id AS product_id,
			oi.product_name AS name,
			oi.decant_size AS decant_size,
			MAX(p.brand) AS brand,
			MAX(p.category) AS category,
			MAX(p.images) AS images,
			SUM(oi.quantity) AS total_quantity,
			SUM(oi.total_price) AS total_revenue,
			COUNT(*) AS total_orders,
			AVG(oi.quantity) AS average_order_quantity,
			MIN(oi.price) AS price_per_unit`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("LEFT JOIN products p ON p.id = oi.product_id").
		Where("o.order_status IN ?", salesStatuses).
		Group("oi.product_id, oi.product_name, oi.decant_size").
		Order("total_quantity DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]dto.TopProduct, len(rows))
	for i, row := range rows {
		out[i] = dto.TopProduct{
			ProductID:            row.ProductID,
			Name:                 row.Name,
			DecantSize:           row.DecantSize,
			Brand:                deref(row.Brand),
			Category:             deref(row.Category),
			Image:                firstImage(row.Images),
			TotalQuantity:        row.TotalQuantity,
			TotalRevenue:         row.TotalRevenue.Round(2),
			TotalOrders:          row.TotalOrders,
			AverageOrderQuantity: row.AverageOrderQuantity.Round(2),
			PricePerUnit:         row.PricePerUnit.Round(2),
		}
	}
	return out, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstImage(raw *string) string {
	if raw == nil {
		return ""
	}
	var images []string
	if err := json.Unmarshal([]byte(*raw), &images); err != nil || len(images) == 0 {
		return ""
	}
	return images[0]
}
