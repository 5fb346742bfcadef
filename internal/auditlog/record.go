// Package auditlog appends submitted orders to an order log, one row per cart line.
package auditlog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/maosdefada/cakeshop-backend/internal/domain"
)

// StatusNew status of a freshly submitted order
const StatusNew = "Novo"

// TimestampLayout ISO-8601 UTC with milliseconds
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Header column titles, same order as Row.Values
var Header = []string{
	"ID do Pedido",
	"Data/Hora",
	"Status",
	"Tipo de Entrega",
	"Data",
	"Horário",
	"Produto",
	"Quantidade",
	"Customizações",
	"Mensagem",
	"Valor Unitário",
	"Valor Total do Item",
	"Rua",
	"Número",
	"Bairro",
	"Complemento",
	"Total do Pedido",
}

var ErrEmptyRecord = errors.New("audit record has no lines")

// AuditLogError append failed; the order itself still went out
type AuditLogError struct {
	OrderID string
	Sink    string
	Err     error
}

func (e *AuditLogError) Error() string {
	return fmt.Sprintf("audit log %s: order %s: %v", e.Sink, e.OrderID, e.Err)
}

func (e *AuditLogError) Unwrap() error {
	return e.Err
}

// Record one submitted order
type Record struct {
	Order  *domain.Order
	Status string
}

// NewRecord record with status Novo
func NewRecord(o *domain.Order) Record {
	return Record{Order: o, Status: StatusNew}
}

// Row one cart line of an order
type Row struct {
	OrderID        string `json:"order_id"`
	Timestamp      string `json:"timestamp"`
	Status         string `json:"status"`
	DeliveryType   string `json:"delivery_type"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Product        string `json:"product"`
	Quantity       int    `json:"quantity"`
	Customizations string `json:"customizations"`
	Message        string `json:"message"`
	UnitPrice      string `json:"unit_price"`
	LineTotal      string `json:"line_total"`
	Street         string `json:"street"`
	Number         string `json:"number"`
	Neighborhood   string `json:"neighborhood"`
	Complement     string `json:"complement"`
	OrderTotal     string `json:"order_total"`
}

// Values cells in column order
func (r Row) Values() []interface{} {
	return []interface{}{
		r.OrderID,
		r.Timestamp,
		r.Status,
		r.DeliveryType,
		r.Date,
		r.Time,
		r.Product,
		r.Quantity,
		r.Customizations,
		r.Message,
		r.UnitPrice,
		r.LineTotal,
		r.Street,
		r.Number,
		r.Neighborhood,
		r.Complement,
		r.OrderTotal,
	}
}

// Rows flattens a record, every row carrying the same order id and order total
func Rows(rec Record) []Row {
	o := rec.Order
	if o == nil {
		return nil
	}

	status := rec.Status
	if status == "" {
		status = StatusNew
	}

	var street, number, neighborhood, complement string
	if o.DeliveryType == domain.DeliveryTypeDelivery && o.Address != nil {
		street = o.Address.Street
		number = o.Address.Number
		neighborhood = o.Address.Neighborhood
		complement = o.Address.Complement
	}

	ts := o.CreatedAt.UTC().Format(TimestampLayout)
	total := o.GrandTotal().StringFixed(2)

	rows := make([]Row, 0, len(o.Items))
	for _, item := range o.Items {
		rows = append(rows, Row{
			OrderID:        o.ID,
			Timestamp:      ts,
			Status:         status,
			DeliveryType:   o.DeliveryType.Label(),
			Date:           o.Date,
			Time:           o.Time,
			Product:        item.Product.Name,
			Quantity:       item.Quantity,
			Customizations: customizationText(item.Customizations),
			Message:        item.CustomMessage,
			UnitPrice:      item.UnitPrice.StringFixed(2),
			LineTotal:      item.LineTotal().StringFixed(2),
			Street:         street,
			Number:         number,
			Neighborhood:   neighborhood,
			Complement:     complement,
			OrderTotal:     total,
		})
	}
	return rows
}

// customizationText "label: value | label: value"
func customizationText(items []domain.LineCustomization) string {
	parts := make([]string, 0, len(items))
	for _, c := range items {
		parts = append(parts, c.Label+": "+c.Value)
	}
	return strings.Join(parts, " | ")
}

// OrderID PEDIDO-<unix millis>
func OrderID(now time.Time) string {
	return fmt.Sprintf("PEDIDO-%d", now.UnixMilli())
}
