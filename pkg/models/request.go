package models

// RefreshRequest represents the request payload for starting a catalog refresh
type RefreshRequest struct {
	MaxProducts int    `json:"max_products" validate:"omitempty,min=1,max=100"`
	CategoryURL string `json:"category_url" validate:"omitempty,url"`
}
