package catalog

import (
	"regexp"
	"strings"
	"time"
)

var colorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// IsValidColor reports whether s is a #rrggbb hex color.
func IsValidColor(s string) bool {
	return colorRe.MatchString(s)
}

// GymClass is a reusable class template. Concrete occurrences on the
// calendar live in the schedule package.
type GymClass struct {
	ID              string    `firestore:"id" json:"id"`
	BusinessID      string    `firestore:"businessId" json:"businessId"`
	Name            string    `firestore:"name" json:"name"`
	Description     string    `firestore:"description,omitempty" json:"description,omitempty"`
	Instructor      string    `firestore:"instructor,omitempty" json:"instructor,omitempty"`
	DurationMinutes int       `firestore:"durationMinutes" json:"durationMinutes"`
	Capacity        int       `firestore:"capacity" json:"capacity"`
	Category        string    `firestore:"category,omitempty" json:"category,omitempty"`
	Color           string    `firestore:"color,omitempty" json:"color,omitempty"`
	Requirements    string    `firestore:"requirements,omitempty" json:"requirements,omitempty"`
	Active          bool      `firestore:"active" json:"active"`
	CreatedBy       string    `firestore:"createdBy" json:"createdBy"`
	CreatedAt       time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt" json:"updatedAt"`
}

// Category groups classes for filtering on the timetable.
type Category struct {
	ID         string    `firestore:"id" json:"id"`
	BusinessID string    `firestore:"businessId" json:"businessId"`
	Name       string    `firestore:"name" json:"name"`
	Color      string    `firestore:"color,omitempty" json:"color,omitempty"`
	CreatedAt  time.Time `firestore:"createdAt" json:"createdAt"`
}

// CreateClassInput represents input for creating a class template
type CreateClassInput struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Instructor      string `json:"instructor,omitempty"`
	DurationMinutes int    `json:"durationMinutes"`
	Capacity        int    `json:"capacity"`
	Category        string `json:"category,omitempty"`
	Color           string `json:"color,omitempty"`
	Requirements    string `json:"requirements,omitempty"`
}

func (in *CreateClassInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Instructor = strings.TrimSpace(in.Instructor)
	in.Category = strings.TrimSpace(in.Category)
	in.Color = strings.ToLower(strings.TrimSpace(in.Color))
	in.Requirements = strings.TrimSpace(in.Requirements)
}

// UpdateClassInput represents input for updating a class template
type UpdateClassInput struct {
	Name            *string `json:"name,omitempty"`
	Description     *string `json:"description,omitempty"`
	Instructor      *string `json:"instructor,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	Capacity        *int    `json:"capacity,omitempty"`
	Category        *string `json:"category,omitempty"`
	Color           *string `json:"color,omitempty"`
	Requirements    *string `json:"requirements,omitempty"`
	Active          *bool   `json:"active,omitempty"`
}

func (in *UpdateClassInput) Trim() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(in.Name)
	trim(in.Description)
	trim(in.Instructor)
	trim(in.Category)
	trim(in.Requirements)
	if in.Color != nil {
		*in.Color = strings.ToLower(strings.TrimSpace(*in.Color))
	}
}

// CreateCategoryInput represents input for creating a category
type CreateCategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (in *CreateCategoryInput) Trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.Color = strings.ToLower(strings.TrimSpace(in.Color))
}
