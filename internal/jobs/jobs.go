package jobs

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Dhoini/CRM-service/internal/domain"
)

// Heartbeat проверяет доступность API и записывает отметку о состоянии CRM
func (r *Runner) Heartbeat(ctx context.Context) {
	now := time.Now()
	url := r.cfg.APIBaseURL + "/health"

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		r.log.Errorw("Failed to build heartbeat request", "error", err, "url", url)
		r.appendLine(r.cfg.HeartbeatLog, errorLine(now, "failed to build heartbeat request: %v", err))
		return
	}

	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warnw("Heartbeat probe failed", "error", err, "url", url)
		r.appendLine(r.cfg.HeartbeatLog,
			fmt.Sprintf("%s CRM is alive (API endpoint is unresponsive: %v)", jobTimestamp(now), err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		r.log.Warnw("Heartbeat probe returned unexpected status", "status", resp.StatusCode, "url", url)
		r.appendLine(r.cfg.HeartbeatLog,
			fmt.Sprintf("%s CRM is alive (API endpoint is unresponsive: status %d)", jobTimestamp(now), resp.StatusCode))
		return
	}

	r.appendLine(r.cfg.HeartbeatLog, fmt.Sprintf("%s CRM is alive (API endpoint is responsive)", jobTimestamp(now)))
	r.log.Debug("Heartbeat recorded")
}

// RestockLowStock пополняет товары с остатком ниже порога и записывает отчет
func (r *Runner) RestockLowStock(ctx context.Context) {
	now := time.Now()

	jobCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	updated, err := r.products.RestockBelow(jobCtx, r.cfg.RestockThreshold, r.cfg.RestockAmount)
	if err != nil {
		r.log.Errorw("Low stock restock failed", "error", err)
		r.appendLine(r.cfg.LowStockLog, errorLine(now, "restock failed: %v", err))
		return
	}

	if len(updated) == 0 {
		r.log.Debug("No products below stock threshold %d", r.cfg.RestockThreshold)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s Low Stock Update ---\n", jobTimestamp(now))
	for _, p := range updated {
		fmt.Fprintf(&b, "Restocked %s to new stock level of %d\n", p.Name, p.Stock)
	}
	fmt.Fprintf(&b, "Summary: Restocked %d products\n", len(updated))
	b.WriteString("-------------------------------------\n")

	r.appendToFile(r.cfg.LowStockLog, b.String())
	r.log.Info("Restocked %d products below threshold %d", len(updated), r.cfg.RestockThreshold)
}

// SendOrderReminders записывает напоминания по заказам за последние N дней
func (r *Runner) SendOrderReminders(ctx context.Context) {
	now := time.Now()
	since := now.AddDate(0, 0, -r.cfg.ReminderDays)

	jobCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	orders, err := r.orders.List(jobCtx, domain.OrderFilter{OrderedAfter: &since})
	if err != nil {
		r.log.Errorw("Failed to list orders for reminders", "error", err)
		r.appendLine(r.cfg.RemindersLog, errorLine(now, "failed to list orders: %v", err))
		return
	}

	sent := 0
	for _, order := range orders {
		customer, err := r.customers.GetByID(jobCtx, order.CustomerID.String())
		if err != nil {
			r.log.Warnw("Failed to resolve customer for reminder", "error", err, "orderID", order.ID)
			r.appendLine(r.cfg.RemindersLog, errorLine(now, "failed to resolve customer for order %s: %v", order.ID, err))
			continue
		}

		line := fmt.Sprintf("%s: Sending reminder for Order ID %s to customer %s.",
			now.Format(time.RFC3339), order.ID, customer.Email)
		r.appendLine(r.cfg.RemindersLog, line)
		sent++
	}

	r.log.Info("Order reminders sent: %d of %d recent orders", sent, len(orders))
}

// GenerateReport формирует сводный отчет по клиентам, заказам и выручке
func (r *Runner) GenerateReport(ctx context.Context) {
	now := time.Now()

	jobCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	customers, err := r.customers.Count(jobCtx)
	if err != nil {
		r.log.Errorw("Failed to count customers for report", "error", err)
		r.appendLine(r.cfg.ReportLog, errorLine(now, "failed to count customers: %v", err))
		return
	}

	orders, err := r.orders.Count(jobCtx)
	if err != nil {
		r.log.Errorw("Failed to count orders for report", "error", err)
		r.appendLine(r.cfg.ReportLog, errorLine(now, "failed to count orders: %v", err))
		return
	}

	revenue, err := r.orders.TotalRevenue(jobCtx)
	if err != nil {
		r.log.Errorw("Failed to calculate revenue for report", "error", err)
		r.appendLine(r.cfg.ReportLog, errorLine(now, "failed to calculate revenue: %v", err))
		return
	}

	line := fmt.Sprintf("%s - Report: %d customers, %d orders, $%s revenue",
		now.Format("2006-01-02 15:04:05"), customers, orders, revenue.StringFixed(2))
	r.appendLine(r.cfg.ReportLog, line)
	r.log.Info("Report generated: %d customers, %d orders", customers, orders)
}
