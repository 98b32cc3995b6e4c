// Package export renders administrative data exports.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/alhussam/store-api/internal/domain/product"
)

// utf8BOM makes spreadsheet applications detect UTF-8, which Arabic product
// names need.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var productHeader = []string{"id", "name", "category", "brand", "price", "stock", "rating"}

// WriteProductsCSV streams the product catalog as CSV with a UTF-8 BOM.
func WriteProductsCSV(w io.Writer, products []product.Product) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return errors.Wrap(err, "write bom")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(productHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, p := range products {
		row := []string{
			p.ID,
			p.Name,
			p.Category,
			p.Brand,
			p.Price.StringFixed(2),
			strconv.Itoa(p.Stock),
			p.Rating.String(),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "write row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush")
}
