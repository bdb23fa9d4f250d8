// Package thermal holds the deterministic thermal-index functions used by the
// assessment pipeline.
//
// Every function is total over its declared domain and reports "unavailable"
// through a boolean second return instead of an error or a substituted value.
// Callers decide fallback policy; the only documented fallback is
// [MeanRadiant], which uses the dry-bulb temperature when the sun is down.
//
// # Models
//
//	MRTFromSolar  ASHRAE 55 (SolarCal) effective radiant field, outdoor sky vault,
//	              ground reflectance 0.2, αSW 0.67 / αLW 0.95, hr 6 W/m²K.
//	MRTFromGlobe  ISO 7726 forced convection, 150 mm globe, ε 0.95.
//	UTCI          operational approximation of the UTCI offset from dry-bulb,
//	              valid for tdb -50..50 °C, tr-tdb -30..70 K, v 0.5..17 m/s.
//	WBGT          outdoor 0.7·Tw + 0.2·Tg + 0.1·Tdb with the Stull (2011)
//	              wet-bulb equation, valid for rh 5..99 %, tdb -20..50 °C.
package thermal
