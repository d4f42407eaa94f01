package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"pairon-backend/models"

	"github.com/google/uuid"
)

// OptionStore is the persistence contract required by the option service
type OptionStore interface {
	Add(ctx context.Context, userID uuid.UUID, category models.OptionCategory, value string) error
	ListByCategory(ctx context.Context, userID uuid.UUID, category models.OptionCategory) ([]string, error)
}

// Predefined option service errors
var (
	ErrUnknownCategory = errors.New("unknown option category")
	ErrEmptyValue      = errors.New("option value must not be empty")
)

// defaultOptions are the built-in choices per category, merged at read
// time with each user's custom dictionary.
var defaultOptions = map[models.OptionCategory][]string{
	models.CategoryBrand: {
		"Apple", "Google", "Honor", "Huawei", "Motorola", "Nothing",
		"OnePlus", "Oppo", "Samsung", "Sony", "Vivo", "Xiaomi",
	},
	models.CategoryChip: {
		"Apple A18 Pro", "Dimensity 9400", "Exynos 2400",
		"Google Tensor G4", "Kirin 9010", "Snapdragon 8 Elite",
		"Snapdragon 8 Gen 3",
	},
	models.CategoryRAMType: {
		"LPDDR4X", "LPDDR5", "LPDDR5X",
	},
	models.CategoryStorageType: {
		"eMMC 5.1", "NVMe", "UFS 2.2", "UFS 3.1", "UFS 4.0",
	},
	models.CategoryDisplayType: {
		"AMOLED", "IPS LCD", "LTPO AMOLED", "OLED", "Super Retina XDR",
	},
	models.CategoryCameraType: {
		"Macro", "Periscope Telephoto", "Telephoto", "Ultra-wide", "Wide",
	},
	models.CategoryFingerprintType: {
		"Optical under-display", "Rear-mounted", "Side-mounted",
		"Ultrasonic under-display",
	},
	models.CategoryFaceUnlockType: {
		"2D camera", "3D structured light", "Infrared",
	},
	models.CategoryHaptics: {
		"Basic", "Good", "Excellent",
	},
	models.CategoryUIVersion: {
		"ColorOS", "HyperOS", "iOS", "Nothing OS", "One UI", "OxygenOS",
		"Pixel UI",
	},
}

// OptionService merges built-in option lists with per-user custom values
type OptionService struct {
	optionStore OptionStore
}

// OptionServiceOption is a functional option for OptionService
type OptionServiceOption func(*OptionService)

// WithOptionStore sets the option store
func WithOptionStore(store OptionStore) OptionServiceOption {
	return func(s *OptionService) {
		s.optionStore = store
	}
}

// NewOptionService creates a new option service
func NewOptionService(opts ...OptionServiceOption) *OptionService {
	s := &OptionService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MergedOptionsRequest represents a request for one category's option list
type MergedOptionsRequest struct {
	UserID   uuid.UUID
	Category models.OptionCategory
	Query    string
}

// MergedOptionsResult represents the merged option list
type MergedOptionsResult struct {
	Options []string
}

// MergedOptions returns the deduplicated, sorted union of the category's
// default list and the user's custom list, optionally filtered by a
// case-insensitive substring query.
func (s *OptionService) MergedOptions(ctx context.Context, req MergedOptionsRequest) (*MergedOptionsResult, error) {
	if !models.ValidCategories[req.Category] {
		return nil, ErrUnknownCategory
	}

	custom, err := s.optionStore.ListByCategory(ctx, req.UserID, req.Category)
	if err != nil {
		return nil, err
	}

	merged := mergeOptions(defaultOptions[req.Category], custom)

	if q := strings.ToLower(strings.TrimSpace(req.Query)); q != "" {
		filtered := merged[:0]
		for _, opt := range merged {
			if strings.Contains(strings.ToLower(opt), q) {
				filtered = append(filtered, opt)
			}
		}
		merged = filtered
	}

	return &MergedOptionsResult{Options: merged}, nil
}

// mergeOptions unions two lists, deduplicating case-insensitively (first
// spelling wins) and sorting case-insensitively.
func mergeOptions(defaults, custom []string) []string {
	seen := make(map[string]bool, len(defaults)+len(custom))
	merged := make([]string, 0, len(defaults)+len(custom))

	for _, list := range [][]string{defaults, custom} {
		for _, opt := range list {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				continue
			}
			key := strings.ToLower(opt)
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, opt)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		a, b := strings.ToLower(merged[i]), strings.ToLower(merged[j])
		if a == b {
			return merged[i] < merged[j]
		}
		return a < b
	})

	return merged
}

// AddOptionRequest represents a request to persist a new custom value
type AddOptionRequest struct {
	UserID   uuid.UUID
	Category models.OptionCategory
	Value    string
}

// AddOption appends a value to the user's dictionary for a category.
// Idempotent: re-adding an existing value is not an error.
func (s *OptionService) AddOption(ctx context.Context, req AddOptionRequest) error {
	if !models.ValidCategories[req.Category] {
		return ErrUnknownCategory
	}

	value := strings.TrimSpace(req.Value)
	if value == "" {
		return ErrEmptyValue
	}

	return s.optionStore.Add(ctx, req.UserID, req.Category, value)
}
