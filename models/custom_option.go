package models

import (
	"time"

	"github.com/google/uuid"
)

// OptionCategory identifies one custom-option dictionary
type OptionCategory string

const (
	CategoryBrand           OptionCategory = "brand"
	CategoryChip            OptionCategory = "chip"
	CategoryRAMType         OptionCategory = "ram_type"
	CategoryStorageType     OptionCategory = "storage_type"
	CategoryDisplayType     OptionCategory = "display_type"
	CategoryCameraType      OptionCategory = "camera_type"
	CategoryFingerprintType OptionCategory = "fingerprint_type"
	CategoryFaceUnlockType  OptionCategory = "face_unlock_type"
	CategoryHaptics         OptionCategory = "haptics"
	CategoryUIVersion       OptionCategory = "ui_version"
)

// ValidCategories is the closed set of option categories
var ValidCategories = map[OptionCategory]bool{
	CategoryBrand:           true,
	CategoryChip:            true,
	CategoryRAMType:         true,
	CategoryStorageType:     true,
	CategoryDisplayType:     true,
	CategoryCameraType:      true,
	CategoryFingerprintType: true,
	CategoryFaceUnlockType:  true,
	CategoryHaptics:         true,
	CategoryUIVersion:       true,
}

// CustomOption represents one user-contributed value in a category dictionary
type CustomOption struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Category  OptionCategory `json:"category"`
	Value     string         `json:"value"`
	CreatedAt time.Time      `json:"created_at"`
}
