// Package domain holds the records shared by every stage of a heat-risk
// assessment and the error kinds those stages return.
//
// # Units
//
//	Temperatures     °C (air, mean radiant, globe, rectal)
//	Humidity         relative, percent 0–100
//	Wind             m/s at body height
//	Cloud cover      percent 0–100
//	Irradiance       W/m² (GHI global horizontal, DNI direct normal, DHI diffuse horizontal)
//	Solar angles     degrees; azimuth clockwise from north
//	Metabolic rate   met (1 met = 58.2 W/m²)
//	Clothing         clo (1 clo = 0.155 m²K/W)
//	Body             age in years, weight in kg, height in m
//	Water loss       mL, cumulative from the start of a run
//
// # Time
//
// Forecast slots are 3-hourly and stored in UTC. Interpolated steps carry the
// location's zone so solar geometry and plots use local clock time.
// Physiological series use minutes elapsed since the selected slot.
//
// # Construction
//
// Records with invariants have constructors (NewForecastSlot, NewLocation,
// NewHuman) or a Validate method (ThermalState). Validation failures are
// *Error values with KindInvalidInput, so a missing or out-of-range field is
// caught before any model runs.
//
// # Errors
//
// Every stage reports failures as *Error with one of:
//
//	invalid_input           a record or configuration failed validation
//	insufficient_data       the forecast cannot cover the request
//	model_out_of_range      inputs fall outside a model's validated domain
//	physiology_divergence   the simulation left the physiological band
//	no_valid_samples        every Monte Carlo sample failed
//
// Match with errors.Is against the sentinels (ErrInvalidInput and so on) or
// read the kind with KindOf. Thermal indices signal "unavailable" with a
// boolean instead of an error; callers that need an error value use
// KindModelOutOfRange.
package domain
