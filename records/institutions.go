package records

import (
	"github.com/rism-digital/muscatplus-indexer/profile"
)

// NewInstitutions builds the document builder for institution records. The
// siglum lives in its own source column rather than the record blob; it is
// also the key the cross-source link table is built from.
func NewInstitutions(svc Services) (*Builder, error) {
	reg := profile.Registry{
		"record_id": recordID,
		"siglum":    rowSiglum,
	}
	return newBuilder(svc, "institution", "institutions.yml", reg, nil)
}

func rowSiglum(c *profile.Context) (any, error) {
	siglum, _ := c.Row["siglum"].(string)
	if siglum == "" {
		return nil, nil
	}
	return siglum, nil
}
