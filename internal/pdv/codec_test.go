package pdv

import (
	"strings"
	"testing"
	"time"

	"github.com/bartek5186/www2pdv/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func sampleOrder() store.Order {
	created := time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)
	pickup := time.Date(2024, 5, 10, 13, 0, 0, 0, time.UTC)
	return store.Order{
		OrderID:             42,
		OrderNumber:         1007,
		Notes:               ptr("sem cebola"),
		CreatedAt:           &created,
		PickupTime:          &pickup,
		CustomerName:        ptr("Maria Silva"),
		PhoneNumber:         ptr("11 91234-5678"),
		CEP:                 ptr("04567-000"),
		AddressStreet:       ptr("Av. Paulista"),
		AddressNumber:       ptr("1000"),
		AddressComplement:   ptr("Ap 12"),
		AddressNeighborhood: ptr("Bela Vista"),
		AddressCity:         ptr("São Paulo"),
		AddressState:        ptr("SP"),
	}
}

func sampleItems() []store.OrderItem {
	return []store.OrderItem{
		{
			Quantity:  2,
			ItemPrice: 29.9,
			Notes:     ptr("bem passado"),
			Name:      ptr("X-Burger"),
			GroupName: ptr("Lanches"),
			ItemPDV:   ptr(int64(501)),
			Subtotal:  ptr(59.8),
		},
		{
			Quantity: 1,
		},
	}
}

func TestEncodeGolden(t *testing.T) {
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)
	got := Encode(sampleOrder(), sampleItems(), 3, now)

	want := "PEDIDO|Maria Silva|CPF|123.456.789-10|11 91234-5678|04567-000|" +
		"Av. Paulista|1000|Ap 12|Bela Vista|São Paulo|SP|AUTO-ATENDIMENTO|Moto-boy|" +
		"42|sem cebola|1007|3|2024-05-10T12:30:00Z|2024-05-10 13:00:00|CARDAPIO DIGITAL|" +
		" ITEM|501|89350031024|bem passado|0|59.8|2|UNID|99999999|88888888|cest|cfop|0|500|" +
		"cst_icms|icms|reducao_icms|cst_pis|pis|cst_cofins|cofins|imp_federal|imp_estadual|imp_municipal|GRUPO|" +
		" ITEM|!!!!|89350031024|!!!!|0|!!!!|1|UNID|99999999|88888888|cest|cfop|0|500|" +
		"cst_icms|icms|reducao_icms|cst_pis|pis|cst_cofins|cofins|imp_federal|imp_estadual|imp_municipal|GRUPO|"

	assert.Equal(t, want, got)
}

func TestEncodeDeterministic(t *testing.T) {
	now := time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)
	first := Encode(sampleOrder(), sampleItems(), 7, now)
	second := Encode(sampleOrder(), sampleItems(), 7, now)
	assert.Equal(t, first, second)
}

func TestEncodeDefaultCustomer(t *testing.T) {
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	got := Encode(store.Order{}, nil, 1, now)

	// brakujące pola klienta dostają szablon domyślny, nie sentinel
	assert.True(t, strings.HasPrefix(got,
		"PEDIDO|Cliente|CPF|123.456.789-10|11 98765-4321|123456-78|"+
			"R. dos Tolos|0|Casa 1|Tolos|Galinha|SP|AUTO-ATENDIMENTO|Moto-boy|0||0|1|"), got)
	// brak timestampów w zamówieniu -> podstawiony czas wywołania
	assert.Contains(t, got, "2024-01-02T10:00:00Z")
	assert.Contains(t, got, "2024-01-02 10:00:00")
	assert.NotContains(t, got, Sentinel)
}

func TestEncodeSentinelOnlyForItems(t *testing.T) {
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	got := Encode(store.Order{}, []store.OrderItem{{Quantity: 1}}, 1, now)

	require.Contains(t, got, " ITEM|!!!!|89350031024|!!!!|0|!!!!|1|")
}

func TestEncodeSubtotalFormatting(t *testing.T) {
	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	items := []store.OrderItem{{Quantity: 2, Subtotal: ptr(26.0)}}
	got := Encode(store.Order{}, items, 1, now)
	// bez ogona po przecinku dla wartości całkowitych
	assert.Contains(t, got, "|0|26|2|UNID|")
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "pedido_5_10_3.txt", Filename(5, 10, 3))
	assert.Equal(t, "pedido_12_1_250.txt", Filename(12, 1, 250))
}
