package models

import "strings"

// Style is an entry of the predefined style menu. Any free-form string is an
// acceptable style for generation; the menu only offers suggestions.
type Style struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultStyles is the style menu offered to clients
var DefaultStyles = []Style{
	{ID: "3d", Name: "3D Render", Description: "Modern 3D rendered character style"},
	{ID: "anime", Name: "Anime", Description: "Japanese anime-inspired style"},
	{ID: "cartoon", Name: "Cartoon", Description: "Fun and colorful cartoon style"},
	{ID: "sketch", Name: "Sketch", Description: "Hand-drawn pencil sketch style"},
	{ID: "oil", Name: "Oil Painting", Description: "Classical oil painting style"},
	{ID: "watercolor", Name: "Watercolor", Description: "Soft watercolor painting style"},
	{ID: "pixel", Name: "Pixel Art", Description: "Retro pixel art style"},
	{ID: "cyberpunk", Name: "Cyberpunk", Description: "Futuristic cyberpunk style"},
	{ID: "lowpoly", Name: "Low Poly", Description: "Geometric low polygon style"},
}

// FindStyle looks up a menu entry by id, case-insensitively
func FindStyle(id string) (Style, bool) {
	id = strings.TrimSpace(id)
	for _, s := range DefaultStyles {
		if strings.EqualFold(s.ID, id) {
			return s, true
		}
	}
	return Style{}, false
}
