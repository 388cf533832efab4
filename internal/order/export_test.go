package order

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_HeaderPlusOneLinePerOrder(t *testing.T) {
	rows := []AdminOrder{
		{Order: seedOrder("o1", "b1", StatusPending, day(1, 9), line("p1", "s1", `Ball, "large"`, "100", 2)), CustomerName: "Lee, Ann", CustomerEmail: "ann@example.com"},
		{Order: seedOrder("o2", "b2", StatusShipped, day(2, 9), line("p2", "s2", "Rope", "25.50", 1), line("p3", "s1", "Kibble", "12.25", 3)), CustomerName: "Bo"},
		{Order: seedOrder("o3", "b2", StatusDelivered, day(3, 9), line("p2", "s2", "Rope", "1", 1))},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, len(rows)+1)
	assert.Equal(t, "Order ID,Date,Customer,Email,Items,Total,Status,Payment Status,Transaction ID", lines[0])
	assert.Equal(t, `o1,2024-03-01T09:00:00Z,"Lee, Ann",ann@example.com,"Ball, ""large"" x2",200.00,pending,pending,TX-o1-0000`, lines[1])

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, `Ball, "large" x2`, records[1][4])
	assert.Equal(t, "Rope x1; Kibble x3", records[2][4])
	assert.Equal(t, "62.25", records[2][5])
}

func TestWriteCSV_NoOrders(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestExportCSV_AppliesFilters(t *testing.T) {
	f := adminFixture(t)
	var buf bytes.Buffer
	n, err := f.svc.ExportCSV(context.Background(), Query{Status: "shipped", PageSize: 1}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

func TestRenderInvoice(t *testing.T) {
	o := seedOrder("o1", "b1", StatusPending, day(1, 9),
		line("p1", "s1", "<b>Ball</b>", "19.99", 3),
		line("p2", "s2", "Rope", "5", 1),
	)

	var buf bytes.Buffer
	require.NoError(t, RenderInvoice(&buf, o))
	html := buf.String()

	assert.Contains(t, html, "window.print()")
	assert.Contains(t, html, "Invoice o1")
	assert.Contains(t, html, "&lt;b&gt;Ball&lt;/b&gt;")
	assert.NotContains(t, html, "<b>Ball</b>")
	assert.Contains(t, html, "59.97")
	assert.Contains(t, html, "64.97")
	assert.Contains(t, html, "Ship b1")
}

func TestInvoice_NotFound(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	err := f.svc.Invoice(context.Background(), "missing", &buf)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Zero(t, buf.Len())
}
