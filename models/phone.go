package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RAMVariant represents one RAM configuration of a phone
type RAMVariant struct {
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

// StorageVariant represents one storage configuration of a phone
type StorageVariant struct {
	Amount string `json:"amount"`
	Type   string `json:"type"`
}

// Display represents one display panel; the first entry is the primary display
type Display struct {
	Type           string `json:"type"`
	Size           string `json:"size"`
	Resolution     string `json:"resolution"`
	RefreshRate    string `json:"refresh_rate"`
	PeakBrightness string `json:"peak_brightness"`
	HDR            bool   `json:"hdr"`
	DolbyVision    bool   `json:"dolby_vision"`
}

// Camera represents one camera module; the first entry is the primary camera
type Camera struct {
	Type       string `json:"type"`
	Megapixels string `json:"megapixels"`
	OIS        bool   `json:"ois"`
}

// Video represents video recording capability
type Video struct {
	MaxResolution string `json:"max_resolution"`
	MaxFrameRate  string `json:"max_frame_rate"`
	HDR           bool   `json:"hdr"`
	DolbyVision   bool   `json:"dolby_vision"`
}

// Battery represents battery and charging capability
type Battery struct {
	Capacity        string `json:"capacity"`
	SiliconCarbon   bool   `json:"silicon_carbon"`
	WiredSpec       string `json:"wired_spec"`
	Wireless        bool   `json:"wireless"`
	WirelessSpec    string `json:"wireless_spec"`
	ReverseCharging bool   `json:"reverse_charging"`
	ReverseSpec     string `json:"reverse_spec"`
}

// RAMVariants is a JSONB-backed list of RAM configurations
type RAMVariants []RAMVariant

// Value implements driver.Valuer for JSONB
func (v RAMVariants) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB
func (v *RAMVariants) Scan(value interface{}) error {
	return scanJSONSlice(value, v)
}

// StorageVariants is a JSONB-backed list of storage configurations
type StorageVariants []StorageVariant

// Value implements driver.Valuer for JSONB
func (v StorageVariants) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB
func (v *StorageVariants) Scan(value interface{}) error {
	return scanJSONSlice(value, v)
}

// Displays is a JSONB-backed list of display panels
type Displays []Display

// Value implements driver.Valuer for JSONB
func (v Displays) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB
func (v *Displays) Scan(value interface{}) error {
	return scanJSONSlice(value, v)
}

// Cameras is a JSONB-backed list of camera modules
type Cameras []Camera

// Value implements driver.Valuer for JSONB
func (v Cameras) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB
func (v *Cameras) Scan(value interface{}) error {
	return scanJSONSlice(value, v)
}

// Value implements driver.Valuer for JSONB
func (v Video) Value() (driver.Value, error) {
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB
func (v *Video) Scan(value interface{}) error {
	return scanJSONObject(value, v)
}

// Value implements driver.Valuer for JSONB
func (b Battery) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB
func (b *Battery) Scan(value interface{}) error {
	return scanJSONObject(value, b)
}

// scanJSONObject decodes a JSONB column into dest, tolerating the
// different types pgx might return and leaving dest zeroed on NULL.
func scanJSONObject(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, dest)
}

// scanJSONSlice is scanJSONObject for array-valued columns; NULL and
// unrecognized values decode to an empty slice via the caller's zero value.
func scanJSONSlice(value interface{}, dest interface{}) error {
	return scanJSONObject(value, dest)
}

// Phone represents a smartphone record owned by a user
type Phone struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`

	// Core identity
	Brand string `json:"brand"`
	Model string `json:"model"`
	Chip  string `json:"chip"`

	// Build & software
	IPRating      string `json:"ip_rating"`
	Haptics       string `json:"haptics"`
	OSName        string `json:"os_name"`
	OSVersion     string `json:"os_version"`
	HasCustomUI   bool   `json:"has_custom_ui"`
	CustomUIName  string `json:"custom_ui_name"`
	UpdateSupport string `json:"update_support"`
	PatchSupport  string `json:"patch_support"`

	// Market
	LaunchDate string `json:"launch_date"`
	Price      string `json:"price"`

	// Card appearance
	Gradient  string `json:"gradient"`
	ImagePath string `json:"image_path"`

	// Hardware configurations
	RAMVariants     RAMVariants     `json:"ram_variants"`
	StorageVariants StorageVariants `json:"storage_variants"`
	Displays        Displays        `json:"displays"`
	Cameras         Cameras         `json:"cameras"`
	Video           Video           `json:"video"`
	Battery         Battery         `json:"battery"`

	// Biometrics
	HasFingerprint  bool   `json:"has_fingerprint"`
	FingerprintType string `json:"fingerprint_type"`
	HasFaceUnlock   bool   `json:"has_face_unlock"`
	FaceUnlockType  string `json:"face_unlock_type"`

	// Feature flags
	StereoSpeakers bool `json:"stereo_speakers"`
	HeadphoneJack  bool `json:"headphone_jack"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrimaryDisplay returns the first display, or nil if none exist
func (p *Phone) PrimaryDisplay() *Display {
	if len(p.Displays) == 0 {
		return nil
	}
	return &p.Displays[0]
}

// PrimaryCamera returns the first camera, or nil if none exist
func (p *Phone) PrimaryCamera() *Camera {
	if len(p.Cameras) == 0 {
		return nil
	}
	return &p.Cameras[0]
}
