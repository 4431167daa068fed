package kitchen

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"tablepay/internal/domain"
	"tablepay/internal/lifecycle"
)

// Display renders the active order list as a terminal table, the
// kitchen's equivalent of the dashboard cards.
type Display struct {
	out io.Writer
}

func NewDisplay(out io.Writer) *Display {
	return &Display{out: out}
}

// Render prints the per-status counts and one row per active order,
// newest first as delivered by the engine.
func (d *Display) Render(orders []domain.Order, now time.Time) error {
	counts := lifecycle.CountByStatus(orders)
	fmt.Fprintf(d.out, "\nActive orders: %d  (pending %d | cooking %d | ready %d)  %s\n",
		len(orders),
		counts[domain.StatusPending],
		counts[domain.StatusCooking],
		counts[domain.StatusReady],
		now.Format("15:04:05"),
	)

	if len(orders) == 0 {
		fmt.Fprintln(d.out, "No active orders.")
		return nil
	}

	table := tablewriter.NewTable(d.out)
	table.Header("Order", "Table", "Customer", "Status", "Items", "Waited", "Urgent")

	for _, o := range orders {
		urgent := ""
		if lifecycle.IsUrgent(o, now) {
			urgent = "YES"
		}
		row := []string{
			o.OrderNumber,
			o.TableNumber,
			o.CustomerName,
			string(o.Status),
			itemSummary(o.Items),
			strconv.Itoa(lifecycle.ElapsedMinutes(o, now)) + "m",
			urgent,
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func itemSummary(items []domain.OrderItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%dx %s", it.Quantity, it.ItemName)
	}
	return strings.Join(parts, ", ")
}
