package model

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusBlocked
}

type ProductCategory string

const (
	CategoryMensFragrance     ProductCategory = "mens_fragrance"
	CategoryWomensFragrance   ProductCategory = "womens_fragrance"
	CategoryUnisexFragrance   ProductCategory = "unisex_fragrance"
	CategoryNicheFragrance    ProductCategory = "niche_fragrance"
	CategoryDesignerFragrance ProductCategory = "designer_fragrance"
	CategoryOriental          ProductCategory = "oriental"
	CategoryFresh             ProductCategory = "fresh"
	CategoryWoody             ProductCategory = "woody"
	CategoryFloral            ProductCategory = "floral"
	CategoryGourmand          ProductCategory = "gourmand"
)

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusOutOfStock   ProductStatus = "out_of_stock"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

type Size string

const (
	Size2ml  Size = "2ml"
	Size5ml  Size = "5ml"
	Size10ml Size = "10ml"
	Size15ml Size = "15ml"
	Size20ml Size = "20ml"
	Size30ml Size = "30ml"
)

type FragranceType string

const (
	EauDeParfum   FragranceType = "eau_de_parfum"
	EauDeToilette FragranceType = "eau_de_toilette"
	EauDeCologne  FragranceType = "eau_de_cologne"
	Parfum        FragranceType = "parfum"
	EauFraiche    FragranceType = "eau_fraiche"
)

type Gender string

const (
	GenderMen    Gender = "men"
	GenderWomen  Gender = "women"
	GenderUnisex Gender = "unisex"
)

type PaymentMethod string

const (
	PaymentMethodStripe         PaymentMethod = "stripe"
	PaymentMethodPaypal         PaymentMethod = "paypal"
	PaymentMethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderStatusNext = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusConfirmed,
	OrderStatusConfirmed:  OrderStatusProcessing,
	OrderStatusProcessing: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusDelivered,
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo allows a single forward step, or cancellation from any
// non-terminal state.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return true
	}
	return orderStatusNext[s] == next
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

var paymentStatusNext = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusFailed, PaymentStatusCancelled},
	PaymentStatusFailed:  {PaymentStatusPaid, PaymentStatusCancelled},
	PaymentStatusPaid:    {PaymentStatusRefunded},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentStatusNext[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
