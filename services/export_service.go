package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kendall-kelly/canteen-orders/models"
)

const csvContentType = "text/csv"

// ExportResult describes one uploaded export batch.
type ExportResult struct {
	Day         string `json:"day"`
	OrderCount  int    `json:"order_count"`
	OrdersKey   string `json:"orders_key,omitempty"`
	DetailsKey  string `json:"details_key,omitempty"`
	OrdersURL   string `json:"orders_url,omitempty"`
	DetailsURL  string `json:"details_url,omitempty"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// ExportService hands the day's closed orders over to the canteen's
// accounting system as two semicolon separated CSV files.
type ExportService struct {
	store   OrderStore
	storage S3Interface
	prefix  string
	logger  *slog.Logger
	now     func() time.Time
}

// NewExportService creates an exporter writing under prefix in storage
func NewExportService(store OrderStore, storage S3Interface, prefix string, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportService{store: store, storage: storage, prefix: prefix, logger: logger, now: time.Now}
}

// SetClock replaces the time source (used by tests)
func (s *ExportService) SetClock(now func() time.Time) {
	s.now = now
}

// ExportDay uploads every unexported order whose menu closes on day and
// marks them as sent. Nothing is uploaded when there are no such orders.
func (s *ExportService) ExportDay(ctx context.Context, day time.Time) (*ExportResult, error) {
	result := &ExportResult{Day: day.Format(time.DateOnly)}

	orders, err := s.store.ListOrdersForExport(ctx, day)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return result, nil
	}

	var ordersCSV, detailsCSV bytes.Buffer
	if err := WriteOrdersCSV(&ordersCSV, orders); err != nil {
		return nil, err
	}
	if err := WriteDetailsCSV(&detailsCSV, orders); err != nil {
		return nil, err
	}

	batch := uuid.NewString()
	result.OrdersKey = fmt.Sprintf("%s/%s/%s/orders.csv", s.prefix, result.Day, batch)
	result.DetailsKey = fmt.Sprintf("%s/%s/%s/details.csv", s.prefix, result.Day, batch)

	if err := s.storage.PutObject(ctx, result.OrdersKey, ordersCSV.Bytes(), csvContentType); err != nil {
		return nil, err
	}
	if err := s.storage.PutObject(ctx, result.DetailsKey, detailsCSV.Bytes(), csvContentType); err != nil {
		s.cleanup(ctx, result.OrdersKey)
		return nil, err
	}

	ids := make([]uint, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	if err := s.store.MarkExported(ctx, ids, s.now()); err != nil {
		s.cleanup(ctx, result.OrdersKey, result.DetailsKey)
		return nil, err
	}
	result.OrderCount = len(orders)

	if result.OrdersURL, err = s.storage.GetPresignedURL(ctx, result.OrdersKey); err != nil {
		return nil, err
	}
	if result.DetailsURL, err = s.storage.GetPresignedURL(ctx, result.DetailsKey); err != nil {
		return nil, err
	}

	s.logger.Info("orders exported", "day", result.Day, "orders", result.OrderCount, "batch", batch)
	return result, nil
}

func (s *ExportService) cleanup(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("failed to remove partial export", "key", key, "error", err)
		}
	}
}

func newCSVWriter(buf *bytes.Buffer) *csv.Writer {
	w := csv.NewWriter(buf)
	w.Comma = ';'
	return w
}

// WriteOrdersCSV writes one row per order.
func WriteOrdersCSV(buf *bytes.Buffer, orders []models.Order) error {
	w := newCSVWriter(buf)
	rows := [][]string{{"id", "canteen_id", "menu_id", "date", "customer_id", "place_id", "amt"}}
	for _, o := range orders {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(o.ID), 10),
			strconv.FormatUint(uint64(o.Menu.CanteenID), 10),
			strconv.FormatUint(uint64(o.MenuID), 10),
			o.Menu.Date.Format(time.DateOnly),
			strconv.FormatUint(uint64(o.CustomerID), 10),
			strconv.FormatUint(uint64(o.PlaceID), 10),
			o.Amount.StringFixed(2),
		})
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write orders csv: %w", err)
	}
	return nil
}

// WriteDetailsCSV writes one row per order line. num_of_menu numbers the
// lines of each order by menu position.
func WriteDetailsCSV(buf *bytes.Buffer, orders []models.Order) error {
	w := newCSVWriter(buf)
	rows := [][]string{{"id", "order_id", "num_of_menu", "qty", "amt"}}
	for _, o := range orders {
		details := append([]models.OrderDetail(nil), o.Details...)
		sort.SliceStable(details, func(i, j int) bool {
			if details[i].MenuPositionID == details[j].MenuPositionID {
				return details[i].ID < details[j].ID
			}
			return details[i].MenuPositionID < details[j].MenuPositionID
		})
		for n, d := range details {
			line := lineFromPosition(d.MenuPosition, d.Quantity)
			rows = append(rows, []string{
				strconv.FormatUint(uint64(d.ID), 10),
				strconv.FormatUint(uint64(o.ID), 10),
				strconv.Itoa(n + 1),
				strconv.Itoa(d.Quantity),
				line.Subtotal().StringFixed(2),
			})
		}
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write details csv: %w", err)
	}
	return nil
}
