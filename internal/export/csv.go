package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tuanvumaihuynh/inventory-tracker/internal/model"
)

const bom = "\uFEFF"

// WriteCSV writes a UTF-8 CSV with a leading byte-order mark. Text columns
// are always quoted, numeric columns never are.
func WriteCSV(w io.Writer, products []model.Product) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(bom)
	bw.WriteString(strings.Join(Header, ","))
	bw.WriteByte('\n')

	for _, p := range products {
		fields := []string{
			quote(p.Sku),
			quote(p.Name),
			quote(p.Category),
			strconv.Itoa(p.CurrentStock),
			p.Price.StringFixed(2),
			p.StockValue().StringFixed(2),
			strconv.Itoa(p.MinStock),
			quote(p.CreatedAt.Format(time.RFC3339)),
		}
		bw.WriteString(strings.Join(fields, ","))
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
