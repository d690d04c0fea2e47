package power

import (
	"errors"
	"fmt"

	"quartz-india-api/internal/geo"
)

// AssetType classifies what a site generates.
type AssetType string

const (
	AssetSolar AssetType = "solar"
	AssetWind  AssetType = "wind"
)

// AssetTypes lists the supported asset types in serving order.
func AssetTypes() []AssetType {
	return []AssetType{AssetSolar, AssetWind}
}

// ParseAssetType validates a raw asset type string.
func ParseAssetType(raw string) (AssetType, error) {
	t := AssetType(raw)
	if !t.IsValid() {
		return "", fmt.Errorf("power: unknown asset type %q", raw)
	}
	return t, nil
}

// IsValid reports whether the asset type is a supported value.
func (t AssetType) IsValid() bool {
	return t == AssetSolar || t == AssetWind
}

// Site is a generating installation served by a source.
// Location is already canonical WGS84; sources normalize on read.
type Site struct {
	ID         string
	Name       string
	AssetType  AssetType
	CapacityMW float64
	Location   geo.Point
}

// Validate checks site invariants.
func (s Site) Validate() error {
	if s.ID == "" {
		return errors.New("power: empty site id")
	}
	if s.Name == "" {
		return errors.New("power: empty site name")
	}
	if !s.AssetType.IsValid() {
		return fmt.Errorf("power: unknown asset type %q", s.AssetType)
	}
	if s.CapacityMW <= 0 {
		return errors.New("power: non-positive capacity")
	}
	return s.Location.Validate()
}
