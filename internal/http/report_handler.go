package http

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/export"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/http/dto"
	"github.com/tuanvumaihuynh/inventory-tracker/internal/service"
	"github.com/tuanvumaihuynh/inventory-tracker/pkg/ptr"
)

type reportHandler struct {
	reportSvc      service.ReportService
	currencySymbol string
}

func newReportHandler(reportSvc service.ReportService, currencySymbol string) *reportHandler {
	return &reportHandler{
		reportSvc:      reportSvc,
		currencySymbol: currencySymbol,
	}
}

func (h *reportHandler) Dashboard(w http.ResponseWriter, r *http.Request) error {
	dashboard, err := h.reportSvc.Dashboard(r.Context())
	if err != nil {
		return fmt.Errorf("report service dashboard: %w", err)
	}

	return writeJSON(w, http.StatusOK, dto.DashboardResponse{
		TotalValue:         dashboard.TotalValue,
		CurrencySymbol:     h.currencySymbol,
		ProductCount:       dashboard.ProductCount,
		TodayInbound:       dashboard.TodayInbound,
		RecentTransactions: dto.NewTransactionResponses(dashboard.RecentTransactions),
		GeneratedAt:        dashboard.GeneratedAt,
	})
}

func (h *reportHandler) ExportInventory(w http.ResponseWriter, r *http.Request) error {
	var format *string
	if err := queryParam(r, "format", &format); err != nil {
		return err
	}

	file, err := h.reportSvc.ExportInventory(r.Context(), export.Format(ptr.Deref(format, string(export.FormatCSV))))
	if err != nil {
		return fmt.Errorf("report service export inventory: %w", err)
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(file.Body)
	return nil
}
