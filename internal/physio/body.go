package physio

import (
	"math"

	"github.com/couchcryptid/heat-risk-engine/internal/domain"
)

// Set points and control constants of the two-node model (Gagge et al. 1986).
const (
	setSkin    = 33.7  // °C
	setCore    = 36.8  // °C
	setBody    = 36.49 // °C
	baseFlow   = 6.3   // L/(m²·h) skin blood flow at neutrality
	dilation   = 100.0 // L/(m²·h·K)
	constrict  = 0.5   // 1/K
	sweatGain  = 170.0 // g/(m²·h·K)
	maxSweat   = 500.0 // g/(m²·h)
	wettedMax  = 0.85
	lewis      = 16.5   // K/kPa
	permeation = 0.45   // clothing vapour permeation efficiency
	latentHeat = 2426.0 // J/g
	bodyHeatWh = 0.97   // Wh/(kg·K)
	metUnit    = 58.2   // W/m² per MET
	stefan     = 5.67e-8
)

type body struct {
	// constant inputs
	ta, tr, pa, met, weight, bsa float64
	hc, fcl, rcl, capacity       float64

	// state
	tcr, tsk, tcl, alpha, flow, esk float64
	waterLoss                       float64 // ml
}

func newBody(st domain.ThermalState, h domain.Human) *body {
	v := math.Max(st.WindSpeed, 0.1)
	b := &body{
		ta:       st.AirTemp,
		tr:       st.MeanRadiant,
		pa:       st.RelativeHumidity / 100 * satPressureKPa(st.AirTemp),
		met:      st.MET * metUnit,
		weight:   h.Weight,
		bsa:      0.202 * math.Pow(h.Weight, 0.425) * math.Pow(h.Height, 0.725),
		hc:       math.Max(3.0, 8.6*math.Pow(v, 0.53)),
		fcl:      1 + 0.15*st.CLO,
		rcl:      0.155 * st.CLO,
		capacity: sweatCapacity(h),

		tcr:   setCore,
		tsk:   setSkin,
		alpha: 0.1,
		flow:  baseFlow,
	}
	b.tcl = (b.tsk + b.ta) / 2
	b.esk = 0.1 * b.met
	return b
}

// sweatCapacity scales the sweat gain for sex and age.
func sweatCapacity(h domain.Human) float64 {
	c := sweatGain
	if h.Sex == domain.SexFemale {
		c *= 0.85
	}
	if h.Age > 60 {
		c *= math.Max(0.6, 1-0.01*(h.Age-60))
	}
	return c
}

// step advances the model by dt minutes.
func (b *body) step(dt float64) {
	// Clothing surface temperature by fixed-point iteration.
	var hr, to float64
	for i := 0; i < 20; i++ {
		hr = 4 * 0.95 * stefan * math.Pow((b.tcl+b.tr)/2+273.15, 3) * 0.72
		h := hr + b.hc
		ra := 1 / (b.fcl * h)
		to = (hr*b.tr + b.hc*b.ta) / h
		next := (ra*b.tsk + b.rcl*to) / (ra + b.rcl)
		if math.Abs(next-b.tcl) < 1e-3 {
			b.tcl = next
			break
		}
		b.tcl = next
	}
	ra := 1 / (b.fcl * (hr + b.hc))
	dry := (b.tsk - to) / (ra + b.rcl)

	coreToSkin := (b.tcr - b.tsk) * (5.28 + 1.163*b.flow)
	eres := 0.017251 * b.met * (5.8662 - b.pa)
	cres := 0.0014 * b.met * (34 - b.ta)

	coreStore := b.met - coreToSkin - eres - cres
	skinStore := coreToSkin - dry - b.esk

	capSkin := bodyHeatWh * b.alpha * b.weight
	capCore := bodyHeatWh * (1 - b.alpha) * b.weight
	b.tsk += skinStore * b.bsa / capSkin * dt / 60
	b.tcr += coreStore * b.bsa / capCore * dt / 60

	// Thermoregulatory control.
	skinSig := b.tsk - setSkin
	coreSig := b.tcr - setCore
	tb := b.alpha*b.tsk + (1-b.alpha)*b.tcr
	bodySig := tb - setBody

	warmS, coldS := math.Max(skinSig, 0), math.Max(-skinSig, 0)
	warmC := math.Max(coreSig, 0)
	warmB := math.Max(bodySig, 0)

	b.flow = (baseFlow + dilation*warmC) / (1 + constrict*coldS)
	b.flow = math.Max(0.5, math.Min(90, b.flow))
	b.alpha = 0.0417737 + 0.7451833/(b.flow+0.585417)

	regSweat := math.Min(maxSweat, b.capacity*warmB*math.Exp(warmS/10.7))
	eRegSweat := regSweat * latentHeat / 3600 // W/m²

	// Evaporative limit through air and clothing.
	rea := 1 / (lewis * b.fcl * b.hc)
	recl := b.rcl / (lewis * permeation)
	emax := (satPressureKPa(b.tsk) - b.pa) / (rea + recl)

	switch {
	case emax <= 0:
		b.esk = 0
	default:
		prsw := eRegSweat / emax
		pwet := 0.06 + 0.94*prsw
		b.esk = pwet * emax
		if pwet > wettedMax {
			prsw = wettedMax / 0.94
			b.esk = prsw*emax + 0.06*(1-prsw)*emax
		}
	}

	// Water lost through skin evaporation and breathing; never negative.
	lossW := math.Max(b.esk, 0) + math.Max(eres, 0)
	b.waterLoss += lossW * b.bsa / latentHeat * dt * 60
}

// satPressureKPa is the Magnus saturation vapour pressure over water.
func satPressureKPa(t float64) float64 {
	return 0.6112 * math.Exp(17.62*t/(243.12+t))
}
