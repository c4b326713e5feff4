package dto

type AddWishlistRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}
