package geo

import (
	"math"
	"testing"
)

// Gangnam station and Yeoksam station are roughly 0.7 km apart.
const (
	gangnamLat = 37.4979
	gangnamLng = 127.0276
	yeoksamLat = 37.5006
	yeoksamLng = 127.0364
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKM                 float64
		tolerance              float64
	}{
		{"same point", gangnamLat, gangnamLng, gangnamLat, gangnamLng, 0, 0.0001},
		{"gangnam to yeoksam", gangnamLat, gangnamLng, yeoksamLat, yeoksamLng, 0.83, 0.05},
		{"seoul to busan", 37.5665, 126.9780, 35.1796, 129.0756, 325, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKM) > tt.tolerance {
				t.Errorf("Distance() = %v km, want %v ± %v", got, tt.wantKM, tt.tolerance)
			}
		})
	}
}

func TestDistancePMissingCoordinates(t *testing.T) {
	lat := gangnamLat
	lng := gangnamLng

	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 *float64
	}{
		{"all nil", nil, nil, nil, nil},
		{"first lat nil", nil, &lng, &lat, &lng},
		{"second lng nil", &lat, &lng, &lat, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DistanceP(tt.lat1, tt.lng1, tt.lat2, tt.lng2); !math.IsInf(got, 1) {
				t.Errorf("DistanceP() = %v, want +Inf", got)
			}
		})
	}

	if got := DistanceP(&lat, &lng, &lat, &lng); got != 0 {
		t.Errorf("DistanceP() with full coordinates = %v, want 0", got)
	}
}

type testPoint struct {
	name     string
	lat, lng float64
}

func (p testPoint) Coordinates() (float64, float64) { return p.lat, p.lng }

func TestFindNearby(t *testing.T) {
	candidates := []testPoint{
		{"yeoksam", yeoksamLat, yeoksamLng},
		{"gangnam", gangnamLat, gangnamLng},
		{"busan", 35.1796, 129.0756},
		{"hongdae", 37.5563, 126.9220},
	}

	got := FindNearby(gangnamLat, gangnamLng, 2.0, candidates)

	if len(got) != 2 {
		t.Fatalf("FindNearby() returned %d results, want 2", len(got))
	}
	// Sorted ascending: gangnam itself first, then yeoksam.
	if got[0].Value.name != "gangnam" || got[1].Value.name != "yeoksam" {
		t.Errorf("FindNearby() order = %s, %s; want gangnam, yeoksam",
			got[0].Value.name, got[1].Value.name)
	}
	if got[1].DistanceKM > 2.0 {
		t.Errorf("result outside radius: %v km", got[1].DistanceKM)
	}
}

func TestFindNearbyBoundingBoxExcludesFarCandidates(t *testing.T) {
	// A point just outside the box on the longitude axis must be skipped
	// before the exact pass.
	far := []testPoint{{"faraway", gangnamLat, gangnamLng + 1.0}}
	if got := FindNearby(gangnamLat, gangnamLng, 0.5, far); len(got) != 0 {
		t.Errorf("FindNearby() = %v, want empty", got)
	}
}
