// internal/pdv/codec.go
package pdv

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bartek5186/www2pdv/internal/store"
)

// Sentinel zastępuje wartości NULL, których nie pokrywa szablon domyślnego
// klienta. Parser PDV po drugiej stronie wymaga niepustych pól.
const Sentinel = "!!!!"

// defaultCustomer – stały szablon danych klienta podstawiany za brakujące
// pola zamówienia. Wartości zgrane bajt w bajt z parserem legacy.
var defaultCustomer = map[string]string{
	"customer_name":        "Cliente",
	"phone_number":         "11 98765-4321",
	"cep":                  "123456-78",
	"address_street":       "R. dos Tolos",
	"address_number":       "0",
	"address_complement":   "Casa 1",
	"address_neighborhood": "Tolos",
	"address_city":         "Galinha",
	"address_state":        "SP",
}

// Encode buduje pojedynczy rekord PEDIDO/ITEM dla pliku integracji PDV.
// Funkcja jest czysta: ten sam input (łącznie z seq i now) daje zawsze
// identyczny string. Kolejność pól i separatory są kontraktem z systemem
// legacy – nie zmieniać.
func Encode(o store.Order, items []store.OrderItem, seq int64, now time.Time) string {
	createdAt := now.Format(time.RFC3339)
	if o.CreatedAt != nil {
		createdAt = o.CreatedAt.Format(time.RFC3339)
	}
	pickupTime := now.Format("2006-01-02 15:04:05")
	if o.PickupTime != nil {
		pickupTime = o.PickupTime.Format("2006-01-02 15:04:05")
	}

	var b strings.Builder
	b.WriteString(strings.Join([]string{
		"PEDIDO",
		orDefault(o.CustomerName, "customer_name"),
		"CPF",
		"123.456.789-10",
		orDefault(o.PhoneNumber, "phone_number"),
		orDefault(o.CEP, "cep"),
		orDefault(o.AddressStreet, "address_street"),
		orDefault(o.AddressNumber, "address_number"),
		orDefault(o.AddressComplement, "address_complement"),
		orDefault(o.AddressNeighborhood, "address_neighborhood"),
		orDefault(o.AddressCity, "address_city"),
		orDefault(o.AddressState, "address_state"),
		"AUTO-ATENDIMENTO",
		"Moto-boy",
		strconv.FormatInt(o.OrderID, 10),
		orEmpty(o.Notes),
		strconv.FormatInt(o.OrderNumber, 10),
		strconv.FormatInt(seq, 10),
		createdAt,
		pickupTime,
		"CARDAPIO DIGITAL",
	}, "|"))
	b.WriteString("|")

	for _, it := range items {
		b.WriteString(strings.Join([]string{
			" ITEM",
			orSentinelInt(it.ItemPDV),
			"89350031024",
			orSentinel(it.Notes),
			"0",
			orSentinelFloat(it.Subtotal),
			strconv.Itoa(it.Quantity),
			"UNID",
			"99999999",
			"88888888",
			"cest",
			"cfop",
			"0",
			"500",
			"cst_icms",
			"icms",
			"reducao_icms",
			"cst_pis",
			"pis",
			"cst_cofins",
			"cofins",
			"imp_federal",
			"imp_estadual",
			"imp_municipal",
			"GRUPO",
		}, "|"))
		b.WriteString("|")
	}

	return b.String()
}

// Filename – nazwa pliku zamówienia: miesiąc, dzień i licznik procesu.
func Filename(month, day int, seq int64) string {
	return fmt.Sprintf("pedido_%d_%d_%d.txt", month, day, seq)
}

func orDefault(v *string, key string) string {
	if v != nil {
		return *v
	}
	return defaultCustomer[key]
}

func orEmpty(v *string) string {
	if v != nil {
		return *v
	}
	return ""
}

func orSentinel(v *string) string {
	if v != nil {
		return *v
	}
	return Sentinel
}

func orSentinelInt(v *int64) string {
	if v != nil {
		return strconv.FormatInt(*v, 10)
	}
	return Sentinel
}

func orSentinelFloat(v *float64) string {
	if v != nil {
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	return Sentinel
}
