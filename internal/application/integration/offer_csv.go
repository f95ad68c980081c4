package integration

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/saladpride-png/shopify-mirakl-sync/internal/domain/integration"
)

const offerCSVSeparator = ";"

// OfferCSVHeader is the column order of the offer import file
var OfferCSVHeader = []string{
	"sku",
	"product-id",
	"product-id-type",
	"price",
	"quantity",
	"state",
	"description",
	"leadtime-to-ship",
}

// EncodeOfferCSV renders offer rows as a semicolon separated import file.
// The description is always quoted and must already have its quotes doubled
// (see SanitizeDescription). Other fields are written as is.
func EncodeOfferCSV(rows []integration.OfferRow) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.Join(OfferCSVHeader, offerCSVSeparator))
	buf.WriteByte('\n')

	for _, row := range rows {
		fields := []string{
			row.SKU,
			row.ProductID,
			row.ProductIDType,
			row.Price.StringFixed(2),
			strconv.FormatInt(row.Quantity, 10),
			row.State,
			`"` + row.Description + `"`,
			strconv.Itoa(row.LeadTimeToShip),
		}
		buf.WriteString(strings.Join(fields, offerCSVSeparator))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
