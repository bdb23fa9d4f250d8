package domain

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ForecastSlot is a single 3-hourly forecast sample.
type ForecastSlot struct {
	Time             time.Time `json:"time" validate:"required"`
	AirTemp          float64   `json:"air_temp_c" validate:"gte=-90,lte=60"`
	RelativeHumidity float64   `json:"relative_humidity_pct" validate:"gte=0,lte=100"`
	WindSpeed        float64   `json:"wind_speed_ms" validate:"gte=0"`
	CloudCover       float64   `json:"cloud_cover_pct" validate:"gte=0,lte=100"`

	// Optional fields carried through from the forecast provider.
	PressureHPa *float64 `json:"pressure_hpa,omitempty" validate:"omitempty,gt=0"`
	PrecipProb  *float64 `json:"precipitation_probability,omitempty" validate:"omitempty,gte=0,lte=1"`
	Description string   `json:"description,omitempty"`
}

// NewForecastSlot validates s and normalizes its timestamp to UTC.
func NewForecastSlot(s ForecastSlot) (ForecastSlot, error) {
	if err := validate.Struct(s); err != nil {
		return ForecastSlot{}, &Error{Kind: KindInvalidInput, Op: "domain.forecast_slot", Err: err}
	}
	s.Time = s.Time.UTC()
	return s, nil
}

// InterpolatedStep is one fine-grained weather sample in local time.
type InterpolatedStep struct {
	Time             time.Time `json:"time"`
	AirTemp          float64   `json:"air_temp_c"`
	RelativeHumidity float64   `json:"relative_humidity_pct"`
	WindSpeed        float64   `json:"wind_speed_ms"`
	CloudCover       float64   `json:"cloud_cover_pct"`
}

// Location is the point being assessed. TZ resolves local timestamps.
type Location struct {
	Lat float64        `validate:"gte=-90,lte=90"`
	Lon float64        `validate:"gte=-180,lte=180"`
	TZ  *time.Location `validate:"required"`
}

// NewLocation validates coordinates. A nil tz means UTC.
func NewLocation(lat, lon float64, tz *time.Location) (Location, error) {
	if tz == nil {
		tz = time.UTC
	}
	loc := Location{Lat: lat, Lon: lon, TZ: tz}
	if err := validate.Struct(loc); err != nil {
		return Location{}, &Error{Kind: KindInvalidInput, Op: "domain.location", Err: err}
	}
	return loc, nil
}

// SolarResult holds irradiance (W/m²) and solar geometry (degrees).
type SolarResult struct {
	GHI       float64 `json:"ghi"`
	DNI       float64 `json:"dni"`
	DHI       float64 `json:"dhi"`
	Zenith    float64 `json:"zenith_deg"`
	Azimuth   float64 `json:"azimuth_deg"`
	Elevation float64 `json:"elevation_deg"`
}

// SunUp reports whether the sun is above the horizon.
func (r SolarResult) SunUp() bool { return r.Elevation > 0 }

// Posture of the assessed person.
type Posture string

const (
	PostureStanding Posture = "standing"
	PostureSeated   Posture = "seated"
)

// Sex of the assessed person.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// Human holds biometrics used by the physiological simulator.
type Human struct {
	Age    float64 `json:"age_years" validate:"gt=0,lte=120"`
	Weight float64 `json:"weight_kg" validate:"gt=0,lte=300"`
	Height float64 `json:"height_m" validate:"gt=0,lte=2.5"`
	Sex    Sex     `json:"sex" validate:"oneof=male female"`
}

// NewHuman validates biometrics.
func NewHuman(h Human) (Human, error) {
	if err := validate.Struct(h); err != nil {
		return Human{}, &Error{Kind: KindInvalidInput, Op: "domain.human", Err: err}
	}
	return h, nil
}

// ThermalState is the environmental and personal state at one timestep.
type ThermalState struct {
	AirTemp          float64 `json:"tdb_c"`
	MeanRadiant      float64 `json:"tr_c"`
	WindSpeed        float64 `json:"v_ms"`
	RelativeHumidity float64 `json:"rh_pct"`
	MET              float64 `json:"met" validate:"gt=0,lte=10"`
	CLO              float64 `json:"clo" validate:"gte=0,lte=4"`
	Posture          Posture `json:"posture" validate:"oneof=standing seated"`
}

// Validate checks the personal fields of the state.
func (s ThermalState) Validate() error {
	if err := validate.Struct(s); err != nil {
		return &Error{Kind: KindInvalidInput, Op: "domain.thermal_state", Err: err}
	}
	return nil
}

// PhysioTimeSeries is the co-indexed output of one physiological run.
type PhysioTimeSeries struct {
	TimeMinutes []float64 `json:"time_minutes"`
	RectalTemp  []float64 `json:"rectal_temp_c"`
	WaterLossML []float64 `json:"water_loss_ml_cumulative"`
}

// Len returns the number of samples.
func (s PhysioTimeSeries) Len() int { return len(s.TimeMinutes) }

// Check verifies the three sequences are co-indexed.
func (s PhysioTimeSeries) Check() error {
	if len(s.RectalTemp) != len(s.TimeMinutes) || len(s.WaterLossML) != len(s.TimeMinutes) {
		return fmt.Errorf("series lengths differ: time=%d rectal=%d water=%d",
			len(s.TimeMinutes), len(s.RectalTemp), len(s.WaterLossML))
	}
	return nil
}
