package usecases

import (
	"math"
	"signetic_scheduler/internal/entities"
	"sort"
)

const earthRadiusKm = 6371

// HaversineKm returns the great-circle distance between two points in kilometers.
func HaversineKm(a, b entities.Coordinates) float64 {
	lat1 := a.Latitude * (math.Pi / 180)
	lat2 := b.Latitude * (math.Pi / 180)
	dLat := (b.Latitude - a.Latitude) * (math.Pi / 180)
	dLon := (b.Longitude - a.Longitude) * (math.Pi / 180)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// RankByDistance sorts ascending by distance, ties broken by clinic id.
func RankByDistance(results []entities.ClinicAvailability) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Clinic.ID < results[j].Clinic.ID
	})
}
