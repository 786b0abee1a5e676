package models

import (
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength bounds offering and request titles.
const MaxTitleLength = 120

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// SkillOffering is a skill its owner can teach. Inactive offerings are
// hidden from discovery and cannot be used to start new swaps.
type SkillOffering struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CategoryID      uuid.UUID `json:"category_id"`
	ExperienceLevel string    `json:"experience_level"`
	TeachingMethod  string    `json:"teaching_method"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SkillRequest is a skill its owner wants to learn. Same shape as an
// offering but represents demand rather than supply.
type SkillRequest struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CategoryID      uuid.UUID `json:"category_id"`
	ExperienceLevel string    `json:"experience_level"`
	TeachingMethod  string    `json:"teaching_method"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
