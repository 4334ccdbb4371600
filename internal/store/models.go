// internal/store/models.go
package store

import "time"

// Order – wiersz zapytania o zamówienia (orders + fallback nazwiska z users).
// Pola adresowe są wskaźnikami: NULL z bazy przechodzi dalej do kodeka,
// który sam decyduje o wartościach domyślnych.
type Order struct {
	OrderID             int64      `json:"order_id"`
	OrderNumber         int64      `json:"order_number"`
	TableNumber         *string    `json:"table_number"`
	Notes               *string    `json:"notes"`
	CreatedAt           *time.Time `json:"created_at"`
	PickupTime          *time.Time `json:"pickup_time"`
	CustomerName        *string    `json:"customer_name"`
	Email               *string    `json:"email"`
	PhoneNumber         *string    `json:"phone_number"`
	CEP                 *string    `json:"cep"`
	AddressStreet       *string    `json:"address_street"`
	AddressNumber       *string    `json:"address_number"`
	AddressComplement   *string    `json:"address_complement"`
	AddressNeighborhood *string    `json:"address_neighborhood"`
	AddressCity         *string    `json:"address_city"`
	AddressState        *string    `json:"address_state"`
	Exported            bool       `json:"exported"`
}

// OrderItem – pozycja zamówienia po złączeniu z menu_items/menu_groups.
type OrderItem struct {
	Quantity  int      `json:"quantity"`
	ItemPrice float64  `json:"item_price"`
	Notes     *string  `json:"notes"`
	Name      *string  `json:"name"`
	GroupName *string  `json:"group_name"`
	ItemPDV   *int64   `json:"item_pdv"`
	Subtotal  *float64 `json:"subtotal"` // quantity * item_price, liczone po stronie bazy
}

// OrderPayload – zamówienie wraz z pozycjami; format ładunku kolejki
// offline oraz komunikatu order_payload z kanału push.
type OrderPayload struct {
	Order
	Items []OrderItem `json:"items"`
}

// RecentOrder – skrócony wiersz do panelu historii.
type RecentOrder struct {
	ID          int64      `json:"id"`
	OrderNumber int64      `json:"order_number"`
	CreatedAt   *time.Time `json:"created_at"`
	Status      string     `json:"status"`
	Total       *float64   `json:"total"`
}
