package rest

import (
	"net/http"

	"github.com/abgdnv/prodboard/pkg/web"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Products"

var exportHeaders = []string{"ID", "Name", "Price", "Category", "Stock", "Description", "Image"}

// Export streams the visible (filtered) product list as an XLSX workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	products := h.repo.Visible()

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			mLogger.ErrorContext(r.Context(), "Error closing workbook", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		mLogger.ErrorContext(r.Context(), "Error preparing workbook", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to export products")
		return
	}
	for col, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			mLogger.ErrorContext(r.Context(), "Error writing workbook header", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to export products")
			return
		}
	}
	for row, p := range products {
		values := []any{p.ID, p.Name, p.Price, string(p.Category), p.Stock, p.Description, p.Image}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				mLogger.ErrorContext(r.Context(), "Error writing workbook row", "row", row, "error", err)
				web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to export products")
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		mLogger.ErrorContext(r.Context(), "Error streaming workbook", "error", err)
	}
	mLogger.DebugContext(r.Context(), "Exported products", "count", len(products))
}
