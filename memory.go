// Package anikutusu holds the core types of the Anı Kutusu memory box:
// generated nostalgic memories, their portable shared form, and the closed
// category/style catalogs used to steer generation.
package anikutusu

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Category is a closed set of narrative genres.
type Category string

const (
	CategoryGeneral      Category = "general"
	CategoryChildhood    Category = "childhood"
	CategorySchool       Category = "school"
	CategoryHoliday      Category = "holiday"
	CategoryNeighborhood Category = "neighborhood"
)

// Categories lists every known category in display order.
func Categories() []Category {
	return []Category{
		CategoryGeneral,
		CategoryChildhood,
		CategorySchool,
		CategoryHoliday,
		CategoryNeighborhood,
	}
}

// ParseCategory maps external input to a known category. Unrecognized values
// fall back to CategoryGeneral since input may arrive from a share token.
func ParseCategory(s string) Category {
	for _, c := range Categories() {
		if string(c) == s {
			return c
		}
	}
	return CategoryGeneral
}

// ImageStyle is a closed set of image rendering styles.
type ImageStyle string

const (
	StyleFadedPhoto ImageStyle = "faded-photo"
	StylePolaroid   ImageStyle = "polaroid"
	StyleFilmGrain  ImageStyle = "film-grain"
	StyleWatercolor ImageStyle = "watercolor"
)

// ImageStyles lists every known image style in display order.
func ImageStyles() []ImageStyle {
	return []ImageStyle{
		StyleFadedPhoto,
		StylePolaroid,
		StyleFilmGrain,
		StyleWatercolor,
	}
}

// ParseImageStyle maps external input to a known style, falling back to
// StyleFadedPhoto for unrecognized values.
func ParseImageStyle(s string) ImageStyle {
	for _, st := range ImageStyles() {
		if string(st) == s {
			return st
		}
	}
	return StyleFadedPhoto
}

// Memory is a completed generation result kept in history.
// A memory is immutable once created.
type Memory struct {
	// ID is an opaque creation-time-derived identifier.
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Query      string     `json:"query"`
	Category   Category   `json:"category"`
	ImageStyle ImageStyle `json:"imageStyle"`
	ResultText string     `json:"resultText"`
	// ImageData is the representative generated image, base64-encoded.
	ImageData     string    `json:"imageData,omitempty"`
	ImageMimeType string    `json:"imageMimeType,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NewMemory mints a memory from a titled generation result.
func NewMemory(title string, shared SharedMemoryData, imageData, imageMimeType string) Memory {
	now := time.Now()
	return Memory{
		ID:            ulid.Make().String(),
		Title:         title,
		Query:         shared.Query,
		Category:      shared.Category,
		ImageStyle:    shared.ImageStyle,
		ResultText:    shared.ResultText,
		ImageData:     imageData,
		ImageMimeType: imageMimeType,
		CreatedAt:     now,
	}
}

// SharedMemoryData is the subset of a memory that travels inside a share
// link. Images are never embedded; they are regenerated on load.
type SharedMemoryData struct {
	Title      string     `json:"title"`
	Query      string     `json:"query"`
	Category   Category   `json:"category"`
	ImageStyle ImageStyle `json:"imageStyle"`
	ResultText string     `json:"resultText"`
}

// Shared returns the portable form of the memory.
func (m Memory) Shared() SharedMemoryData {
	return SharedMemoryData{
		Title:      m.Title,
		Query:      m.Query,
		Category:   m.Category,
		ImageStyle: m.ImageStyle,
		ResultText: m.ResultText,
	}
}
