// Package finance implements the invoice financial computation pipeline:
// GST, total, deduction aggregation, net payable and balance. All derived
// values are recomputed from scratch on every call so the stored record can
// never drift out of consistency with its inputs.
package finance

import "math"

// Deductions holds the ten deduction inputs. Absent fields are zero.
type Deductions struct {
	Retention         float64
	GSTWithheld       float64
	TDS               float64
	GSTTDS            float64
	BOCW              float64
	LowDepth          float64
	LiquidatedDamages float64
	SLAPenalty        float64
	Penalty           float64
	Other             float64
}

// Sum returns the 2-decimal-rounded sum of all deduction fields.
func (d Deductions) Sum() float64 {
	return Round2(d.Retention + d.GSTWithheld + d.TDS + d.GSTTDS + d.BOCW +
		d.LowDepth + d.LiquidatedDamages + d.SLAPenalty + d.Penalty + d.Other)
}

// Inputs are the raw amounts the derived fields are computed from.
type Inputs struct {
	BasicAmount float64
	GSTPercent  int
	Deductions  Deductions
	AmountPaid  float64
}

// Derived holds the five computed amounts. Net payable and balance are
// deliberately not clamped at zero: deductions exceeding the total, or an
// overpayment, produce negative values.
type Derived struct {
	GSTAmount            float64
	TotalAmount          float64
	TotalDeductionAmount float64
	NetPayableAmount     float64
	BalanceAmount        float64
}

// Compute derives all five output amounts from in. Rounding to 2 decimals
// (half away from zero) is applied after each arithmetic step.
func Compute(in Inputs) Derived {
	gst := Round2(in.BasicAmount * float64(in.GSTPercent) / 100)
	total := Round2(in.BasicAmount + gst)
	deductions := in.Deductions.Sum()
	net := Round2(total - deductions)
	balance := Round2(net - in.AmountPaid)

	return Derived{
		GSTAmount:            gst,
		TotalAmount:          total,
		TotalDeductionAmount: deductions,
		NetPayableAmount:     net,
		BalanceAmount:        balance,
	}
}

// Round2 rounds v to 2 decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
