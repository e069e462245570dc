// Package export renders the product list as a downloadable spreadsheet.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func (f Format) Validate() error {
	switch f {
	case FormatCSV, FormatXLSX:
		return nil
	default:
		return fmt.Errorf("unknown export format: %q", string(f))
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Header is the column row shared by every format.
var Header = []string{"SKU", "商品名称", "类别", "当前库存", "单价", "总价值", "安全库存", "创建时间"}

// FileName returns "<label>_<YYYY-MM-DD>.<ext>" for day's calendar date.
func FileName(label string, day time.Time, f Format) string {
	return fmt.Sprintf("%s_%s.%s", label, day.Format(time.DateOnly), f)
}

// Write renders products in the given format.
func Write(w io.Writer, f Format, products []model.Product) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, products)
	case FormatXLSX:
		return WriteXLSX(w, products)
	default:
		return f.Validate()
	}
}
