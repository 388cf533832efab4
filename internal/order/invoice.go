package order

import (
	"context"
	"html/template"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.ID}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ccc; padding: .4em; text-align: left; }
td.num, th.num { text-align: right; }
@media print { .no-print { display: none; } }
</style>
</head>
<body>
<h1>Invoice</h1>
<p>Order <strong>{{.ID}}</strong><br>Date {{date .CreatedAt}}<br>Status {{.Status}}<br>
Payment {{.Payment.PaymentStatus}} ({{.Payment.PaymentMethod}}, ref {{.Payment.TransactionID}})</p>
<h2>Ship to</h2>
<p>{{.ShippingInfo.Name}}<br>{{.ShippingInfo.Phone}}<br>{{.ShippingInfo.Address}}<br>
{{.ShippingInfo.City}} {{.ShippingInfo.PostalCode}}<br>{{.ShippingInfo.Country}}</p>
<table>
<thead><tr><th>Item</th><th class="num">Price</th><th class="num">Qty</th><th class="num">Line total</th></tr></thead>
<tbody>
{{range .Items}}<tr><td>{{.Name}}</td><td class="num">{{money .Price}}</td><td class="num">{{.Quantity}}</td><td class="num">{{money .LineTotal}}</td></tr>
{{end}}</tbody>
<tfoot><tr><th colspan="3" class="num">Total</th><th class="num">{{money .Total}}</th></tr></tfoot>
</table>
<p class="no-print"><button onclick="window.print()">Print</button></p>
<script>window.addEventListener("load", function () { window.print(); });</script>
</body>
</html>
`))

// RenderInvoice writes a printable HTML invoice for o.
func RenderInvoice(w io.Writer, o Order) error {
	return invoiceTemplate.Execute(w, o)
}

// Invoice looks up an order and renders its invoice.
func (s *Service) Invoice(ctx context.Context, orderID string, w io.Writer) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	return RenderInvoice(w, o)
}
