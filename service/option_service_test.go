package service_test

import (
	"context"
	"sort"
	"strings"
	"testing"

	"pairon-backend/models"
	"pairon-backend/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOptionStore is an in-memory OptionStore
type fakeOptionStore struct {
	values map[models.OptionCategory][]string
	err    error
}

func newFakeOptionStore() *fakeOptionStore {
	return &fakeOptionStore{values: make(map[models.OptionCategory][]string)}
}

func (f *fakeOptionStore) Add(ctx context.Context, userID uuid.UUID, category models.OptionCategory, value string) error {
	if f.err != nil {
		return f.err
	}
	for _, v := range f.values[category] {
		if v == value {
			return nil
		}
	}
	f.values[category] = append(f.values[category], value)
	return nil
}

func (f *fakeOptionStore) ListByCategory(ctx context.Context, userID uuid.UUID, category models.OptionCategory) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values[category], nil
}

func newOptionService(store *fakeOptionStore) *service.OptionService {
	return service.NewOptionService(service.WithOptionStore(store))
}

func TestMergedOptions_UnionDedupSorted(t *testing.T) {
	store := newFakeOptionStore()
	store.values[models.CategoryRAMType] = []string{"LPDDR6", "lpddr5x", "LPDDR6"}
	svc := newOptionService(store)

	result, err := svc.MergedOptions(context.Background(), service.MergedOptionsRequest{
		UserID:   uuid.New(),
		Category: models.CategoryRAMType,
	})
	require.NoError(t, err)

	// Defaults plus the genuinely new custom value; the case-insensitive
	// duplicate of LPDDR5X keeps the default spelling
	assert.Equal(t, []string{"LPDDR4X", "LPDDR5", "LPDDR5X", "LPDDR6"}, result.Options)

	sorted := sort.SliceIsSorted(result.Options, func(i, j int) bool {
		return strings.ToLower(result.Options[i]) < strings.ToLower(result.Options[j])
	})
	assert.True(t, sorted)
}

func TestMergedOptions_SearchCaseInsensitiveSubstring(t *testing.T) {
	store := newFakeOptionStore()
	store.values[models.CategoryBrand] = []string{"Fairphone"}
	svc := newOptionService(store)

	tests := []struct {
		query string
		want  []string
	}{
		{"phone", []string{"Fairphone"}},
		{"SAM", []string{"Samsung"}},
		{"on", []string{"Fairphone", "Honor", "OnePlus", "Sony"}},
		{"zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			result, err := svc.MergedOptions(context.Background(), service.MergedOptionsRequest{
				UserID:   uuid.New(),
				Category: models.CategoryBrand,
				Query:    tt.query,
			})
			require.NoError(t, err)
			if tt.want == nil {
				assert.Empty(t, result.Options)
			} else {
				assert.Equal(t, tt.want, result.Options)
			}
		})
	}
}

func TestMergedOptions_UnknownCategory(t *testing.T) {
	svc := newOptionService(newFakeOptionStore())

	_, err := svc.MergedOptions(context.Background(), service.MergedOptionsRequest{
		UserID:   uuid.New(),
		Category: "nonsense",
	})

	assert.ErrorIs(t, err, service.ErrUnknownCategory)
}

func TestAddOption(t *testing.T) {
	store := newFakeOptionStore()
	svc := newOptionService(store)
	userID := uuid.New()

	err := svc.AddOption(context.Background(), service.AddOptionRequest{
		UserID:   userID,
		Category: models.CategoryChip,
		Value:    "  Tensor G5  ",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Tensor G5"}, store.values[models.CategoryChip])

	// Idempotent re-add
	err = svc.AddOption(context.Background(), service.AddOptionRequest{
		UserID:   userID,
		Category: models.CategoryChip,
		Value:    "Tensor G5",
	})
	require.NoError(t, err)
	assert.Len(t, store.values[models.CategoryChip], 1)

	err = svc.AddOption(context.Background(), service.AddOptionRequest{
		UserID:   userID,
		Category: models.CategoryChip,
		Value:    "   ",
	})
	assert.ErrorIs(t, err, service.ErrEmptyValue)

	err = svc.AddOption(context.Background(), service.AddOptionRequest{
		UserID:   userID,
		Category: "nonsense",
		Value:    "x",
	})
	assert.ErrorIs(t, err, service.ErrUnknownCategory)
}
