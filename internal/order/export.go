package order

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

var csvHeader = []string{
	"Order ID", "Date", "Customer", "Email", "Items", "Total", "Status", "Payment Status", "Transaction ID",
}

// WriteCSV writes a header and one row per order. Quoting follows RFC 4180.
func WriteCSV(w io.Writer, orders []AdminOrder) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, o := range orders {
		if err := cw.Write(csvRow(o)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(o AdminOrder) []string {
	items := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	return []string{
		o.ID,
		o.CreatedAt.UTC().Format(time.RFC3339),
		o.CustomerName,
		o.CustomerEmail,
		strings.Join(items, "; "),
		o.Total.StringFixed(2),
		string(o.Status),
		string(o.Payment.PaymentStatus),
		o.Payment.TransactionID,
	}
}

// ExportCSV writes every order matching q to w.
func (s *Service) ExportCSV(ctx context.Context, q Query, w io.Writer) (int, error) {
	orders, err := s.AdminSearch(ctx, q)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(w, orders); err != nil {
		return 0, err
	}
	return len(orders), nil
}
