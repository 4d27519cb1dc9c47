// Package geo provides great-circle distance helpers for complaint coordinates.
package geo

import (
	"sort"

	"github.com/golang/geo/s2"
)

// EarthRadiusKM is the mean Earth radius used for distance conversion.
const EarthRadiusKM = 6371.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether the point lies within latitude/longitude bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p Point) latLng() s2.LatLng {
	return s2.LatLngFromDegrees(p.Lat, p.Lng)
}

// DistanceKM returns the haversine distance between a and b in kilometres.
func DistanceKM(a, b Point) float64 {
	return a.latLng().Distance(b.latLng()).Radians() * EarthRadiusKM
}

// Match is an item that fell inside a radius query together with its distance.
type Match[T any] struct {
	Item       T
	DistanceKM float64
}

// WithinRadius returns the items whose location lies at most radiusKM from origin,
// nearest first. Items at equal distance keep their input order.
func WithinRadius[T any](origin Point, radiusKM float64, items []T, locate func(T) Point) []Match[T] {
	matches := make([]Match[T], 0, len(items))
	for _, item := range items {
		d := DistanceKM(origin, locate(item))
		if d <= radiusKM {
			matches = append(matches, Match[T]{Item: item, DistanceKM: d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].DistanceKM < matches[j].DistanceKM
	})
	return matches
}
