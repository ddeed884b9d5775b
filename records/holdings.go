package records

import (
	"fmt"

	"github.com/rism-digital/muscatplus-indexer/profile"
)

// NewHoldings builds the document builder for holding records (manuscript
// holdings live in their own table; print holdings additionally arrive as
// attachments on source rows, see NewSources).
func NewHoldings(svc Services) (*Builder, error) {
	reg := profile.Registry{
		"record_id":           recordID,
		"holding_institution": institutionLink(svc),
		"source_link":         sourceLink,
	}
	return newBuilder(svc, "holding", "holdings.yml", reg, nil)
}

// sourceLink points a holding at its source document.
func sourceLink(c *profile.Context) (any, error) {
	v, ok := c.Row["source_id"]
	if !ok || v == nil {
		return nil, nil
	}
	return fmt.Sprintf("source_%v", v), nil
}
