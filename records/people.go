package records

import (
	"github.com/rism-digital/muscatplus-indexer/marc"
	"github.com/rism-digital/muscatplus-indexer/profile"
)

// NewPeople builds the document builder for person authority records.
func NewPeople(svc Services) (*Builder, error) {
	reg := profile.Registry{
		"record_id":  recordID,
		"life_dates": lifeDates(svc),
	}
	return newBuilder(svc, "person", "people.yml", reg, nil)
}

// lifeDates normalizes the 100$d lifespan statement into year bounds.
func lifeDates(svc Services) profile.Extractor {
	return func(c *profile.Context) (any, error) {
		stmt, ok := marc.First(c.Record, "100", 'd')
		if !ok {
			return nil, nil
		}
		return yearsOf(svc.Dates.Normalize(stmt)), nil
	}
}
