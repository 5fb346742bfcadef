package auditlog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderLogRow persisted audit row
type OrderLogRow struct {
	ID             uint64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID        string          `gorm:"column:order_id;size:40;index;not null" json:"order_id"`
	LineNo         int             `gorm:"column:line_no;not null" json:"line_no"`
	Status         string          `gorm:"column:status;size:20" json:"status"`
	DeliveryType   string          `gorm:"column:delivery_type;size:20" json:"delivery_type"`
	Date           string          `gorm:"column:date;size:10" json:"date"`
	Time           string          `gorm:"column:time;size:5" json:"time"`
	Product        string          `gorm:"column:product;size:200" json:"product"`
	Quantity       int             `gorm:"column:quantity" json:"quantity"`
	Customizations datatypes.JSON  `gorm:"column:customizations" json:"customizations"`
	Summary        string          `gorm:"column:summary;type:text" json:"summary"`
	Message        string          `gorm:"column:message;size:200" json:"message"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:decimal(10,2)" json:"unit_price"`
	LineTotal      decimal.Decimal `gorm:"column:line_total;type:decimal(10,2)" json:"line_total"`
	Street         string          `gorm:"column:street;size:200" json:"street"`
	Number         string          `gorm:"column:number;size:20" json:"number"`
	Neighborhood   string          `gorm:"column:neighborhood;size:100" json:"neighborhood"`
	Complement     string          `gorm:"column:complement;size:200" json:"complement"`
	OrderTotal     decimal.Decimal `gorm:"column:order_total;type:decimal(10,2)" json:"order_total"`
	SubmittedAt    time.Time       `gorm:"column:submitted_at;index" json:"submitted_at"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
}

// TableName GORM table name
func (OrderLogRow) TableName() string {
	return "order_log_rows"
}

// DBSink writes the order log to the order_log_rows table
type DBSink struct {
	db *gorm.DB
}

// NewDBSink creates a gorm-backed sink
func NewDBSink(db *gorm.DB) *DBSink {
	return &DBSink{db: db}
}

func (s *DBSink) Name() string { return "db" }

func (s *DBSink) Append(ctx context.Context, rec Record) error {
	rows := Rows(rec)
	if len(rows) == 0 {
		return ErrEmptyRecord
	}

	o := rec.Order
	models := make([]OrderLogRow, 0, len(rows))
	for i, r := range rows {
		item := o.Items[i]
		custom, err := json.Marshal(item.Customizations)
		if err != nil {
			return &AuditLogError{OrderID: o.ID, Sink: s.Name(), Err: err}
		}
		models = append(models, OrderLogRow{
			OrderID:        r.OrderID,
			LineNo:         i + 1,
			Status:         r.Status,
			DeliveryType:   r.DeliveryType,
			Date:           r.Date,
			Time:           r.Time,
			Product:        r.Product,
			Quantity:       r.Quantity,
			Customizations: datatypes.JSON(custom),
			Summary:        r.Customizations,
			Message:        r.Message,
			UnitPrice:      item.UnitPrice,
			LineTotal:      item.LineTotal(),
			Street:         r.Street,
			Number:         r.Number,
			Neighborhood:   r.Neighborhood,
			Complement:     r.Complement,
			OrderTotal:     o.GrandTotal(),
			SubmittedAt:    o.CreatedAt,
		})
	}

	if err := s.db.WithContext(ctx).Create(&models).Error; err != nil {
		return &AuditLogError{OrderID: o.ID, Sink: s.Name(), Err: err}
	}
	return nil
}

// ListByOrder rows of one order in line order
func (s *DBSink) ListByOrder(ctx context.Context, orderID string) ([]OrderLogRow, error) {
	var rows []OrderLogRow
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("line_no ASC").
		Find(&rows).Error
	return rows, err
}
