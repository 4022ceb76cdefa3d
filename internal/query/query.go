// Package query turns loosely-typed request parameters into typed query
// descriptors and the SQL fragments the listing store runs.
package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"licxo/internal/normalize"
)

// MetersPerMile converts the interface-boundary radius unit (miles) to the
// store's native distance unit (meters). The factor is fixed.
const MetersPerMile = 1609

// Filter is a fully-typed listing filter. Nil fields are absent; supplied
// fields combine with AND.
type Filter struct {
	Name      *string
	District  *string
	Bed       *string
	Room      *string
	Furnished *string
	Wifi      *string
	MinPrice  *float64
	MaxPrice  *float64
	Sort      string
}

var filterKeys = []string{"name", "district", "bed", "room", "furnished", "wifi", "minPrice", "maxPrice", "sort"}

// ParseFilter validates raw query parameters once at the boundary and yields
// a Filter. A repeated parameter, or a JSON blob where a plain scalar is
// expected, fails the whole request.
func ParseFilter(values url.Values) (Filter, error) {
	var f Filter

	for _, key := range filterKeys {
		raw, ok := values[key]
		if !ok {
			continue
		}
		if len(raw) != 1 {
			return Filter{}, fmt.Errorf("parameter %q supplied more than once", key)
		}
		value := strings.TrimSpace(raw[0])
		if value == "" {
			continue
		}
		if strings.HasPrefix(value, "{") || strings.HasPrefix(value, "[") {
			return Filter{}, fmt.Errorf("parameter %q must be a plain value", key)
		}

		switch key {
		case "name":
			f.Name = &value
		case "district":
			f.District = &value
		case "bed":
			f.Bed = &value
		case "room":
			f.Room = &value
		case "furnished":
			f.Furnished = &value
		case "wifi":
			f.Wifi = &value
		case "minPrice", "maxPrice":
			// Non-numeric bounds are treated as absent, not as zero.
			price, err := strconv.ParseFloat(value, 64)
			if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
				continue
			}
			if key == "minPrice" {
				f.MinPrice = &price
			} else {
				f.MaxPrice = &price
			}
		case "sort":
			f.Sort = value
		}
	}

	return f, nil
}

// Where renders the filter as a SQL predicate with numbered placeholders.
// An empty filter yields an empty clause and the full listing set.
func (f Filter) Where() (string, []interface{}) {
	var conditions []string
	var args []interface{}

	next := func(arg interface{}) string {
		args = append(args, arg)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Name != nil {
		pattern := "%" + *f.Name + "%"
		p := next(pattern)
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR address1 ILIKE %s)", p, next(pattern)))
	}
	if f.District != nil {
		conditions = append(conditions, fmt.Sprintf("district ILIKE %s", next("%"+*f.District+"%")))
	}
	if f.Bed != nil {
		conditions = append(conditions, fmt.Sprintf("bed = %s", next(*f.Bed)))
	}
	if f.Room != nil {
		conditions = append(conditions, fmt.Sprintf("room = %s", next(*f.Room)))
	}
	if f.Furnished != nil {
		conditions = append(conditions, fmt.Sprintf("LOWER(furnished) = %s", next(normalize.Filter(*f.Furnished))))
	}
	if f.Wifi != nil {
		conditions = append(conditions, fmt.Sprintf("LOWER(wifi) = %s", next(normalize.Filter(*f.Wifi))))
	}

	switch {
	case f.MinPrice != nil && f.MaxPrice != nil:
		// One combined range constraint, both bounds inclusive.
		lo := next(*f.MinPrice)
		conditions = append(conditions, fmt.Sprintf("price BETWEEN %s AND %s", lo, next(*f.MaxPrice)))
	case f.MinPrice != nil:
		conditions = append(conditions, fmt.Sprintf("price >= %s", next(*f.MinPrice)))
	case f.MaxPrice != nil:
		conditions = append(conditions, fmt.Sprintf("price <= %s", next(*f.MaxPrice)))
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// OrderBy renders the single supported sort dimension. "lowToHigh" sorts by
// ascending price, any other non-empty value by descending price, absent
// means natural store order. Ties break on id so repeated calls are stable.
func (f Filter) OrderBy() string {
	switch f.Sort {
	case "":
		return ""
	case "lowToHigh":
		return " ORDER BY price ASC, id ASC"
	default:
		return " ORDER BY price DESC, id ASC"
	}
}

// GeoQuery is a validated geo-radius search descriptor.
type GeoQuery struct {
	Latitude       float64
	Longitude      float64
	MaxRadiusMiles float64
}

// NewGeoQuery checks that the center point is finite and within valid
// coordinate ranges. The radius is not range-checked here; a non-positive
// radius legitimately describes an empty search.
func NewGeoQuery(latitude, longitude, maxRadiusMiles float64) (GeoQuery, error) {
	if !finite(latitude) || !finite(longitude) {
		return GeoQuery{}, fmt.Errorf("latitude and longitude must be finite numbers")
	}
	if latitude < -90 || latitude > 90 {
		return GeoQuery{}, fmt.Errorf("latitude %v out of range [-90,90]", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return GeoQuery{}, fmt.Errorf("longitude %v out of range [-180,180]", longitude)
	}
	if !finite(maxRadiusMiles) {
		return GeoQuery{}, fmt.Errorf("maxRadius must be a finite number")
	}
	return GeoQuery{Latitude: latitude, Longitude: longitude, MaxRadiusMiles: maxRadiusMiles}, nil
}

// MaxDistanceMeters is the radius in the store's native unit.
func (g GeoQuery) MaxDistanceMeters() float64 {
	return g.MaxRadiusMiles * MetersPerMile
}

// Empty reports whether the search cannot match anything. A zero radius is
// an empty search, not an unlimited one.
func (g GeoQuery) Empty() bool {
	return g.MaxRadiusMiles <= 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
