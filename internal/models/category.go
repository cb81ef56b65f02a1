package models

// Category groups inventory items. Items reference a category by Name.
type Category struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	ItemCount int    `json:"itemCount"`
}
