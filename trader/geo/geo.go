// Package geo holds the pure geospatial helpers the trade gate and the
// nearby-merchant queries share.
package geo

import (
	"math"
	"sort"
)

// earthRadiusKM is the mean Earth radius used by the haversine formula.
const earthRadiusKM = 6371.0

// degPerKM approximates one kilometer in degrees of latitude.
const degPerKM = 1.0 / 111.0

// Distance returns the great-circle distance in kilometers between two
// coordinates.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKM * c
}

// DistanceP is Distance over nullable coordinates. A missing coordinate
// yields +Inf: callers treat it as "too far", not as an error.
func DistanceP(lat1, lng1, lat2, lng2 *float64) float64 {
	if lat1 == nil || lng1 == nil || lat2 == nil || lng2 == nil {
		return math.Inf(1)
	}
	return Distance(*lat1, *lng1, *lat2, *lng2)
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Point is anything with a fixed coordinate.
type Point interface {
	Coordinates() (lat, lng float64)
}

// Nearby pairs a candidate with its exact distance from the center.
type Nearby[T Point] struct {
	Value      T
	DistanceKM float64
}

// FindNearby returns the candidates within radiusKM of the center,
// sorted ascending by distance. Candidates are first narrowed by a
// cheap bounding box so the exact haversine pass only runs on a small
// subset.
func FindNearby[T Point](centerLat, centerLng, radiusKM float64, candidates []T) []Nearby[T] {
	latDelta := radiusKM * degPerKM
	lngDelta := latDelta
	if cosLat := math.Cos(radians(centerLat)); cosLat > 0 {
		lngDelta = latDelta / cosLat
	}

	results := make([]Nearby[T], 0, len(candidates))
	for _, c := range candidates {
		lat, lng := c.Coordinates()
		if math.Abs(lat-centerLat) > latDelta || math.Abs(lng-centerLng) > lngDelta {
			continue
		}
		d := Distance(centerLat, centerLng, lat, lng)
		if d <= radiusKM {
			results = append(results, Nearby[T]{Value: c, DistanceKM: d})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].DistanceKM < results[j].DistanceKM
	})
	return results
}
