package model

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// normalizeNumbers replaces every json.Number in v, at any depth, with
// its float64 value so a loaded bag looks like a decoded request body.
func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeNumbers(e)
		}
		return x
	case datatypes.JSONMap:
		for k, e := range x {
			x[k] = normalizeNumbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalizeNumbers(e)
		}
		return x
	}
	return v
}

// NormalizeDetails rewrites json.Number values in bag in place.
func NormalizeDetails(bag datatypes.JSONMap) datatypes.JSONMap {
	if bag == nil {
		return nil
	}
	normalizeNumbers(bag)
	return bag
}

// AfterFind normalizes the detail bag scanned from the database.
func (o *Object) AfterFind(*gorm.DB) error {
	o.Details = NormalizeDetails(o.Details)
	return nil
}

// AfterFind normalizes the command attributes scanned from the database.
func (c *Command) AfterFind(*gorm.DB) error {
	c.Attributes = NormalizeDetails(c.Attributes)
	return nil
}
