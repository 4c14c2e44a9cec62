package finance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ims/internal/finance"
)

func TestCompute_ReferenceScenario(t *testing.T) {
	in := finance.Inputs{
		BasicAmount: 10000,
		GSTPercent:  18,
		Deductions: finance.Deductions{
			Retention: 500,
			TDS:       200,
		},
		AmountPaid: 9000,
	}

	d := finance.Compute(in)

	assert.Equal(t, 1800.00, d.GSTAmount)
	assert.Equal(t, 11800.00, d.TotalAmount)
	assert.Equal(t, 700.00, d.TotalDeductionAmount)
	assert.Equal(t, 11100.00, d.NetPayableAmount)
	assert.Equal(t, 2100.00, d.BalanceAmount)
}

func TestCompute_NegativeNetAndBalanceNotClamped(t *testing.T) {
	in := finance.Inputs{
		BasicAmount: 100,
		GSTPercent:  0,
		Deductions: finance.Deductions{
			LiquidatedDamages: 150,
			SLAPenalty:        50,
		},
		AmountPaid: 25,
	}

	d := finance.Compute(in)

	assert.Equal(t, 100.00, d.TotalAmount)
	assert.Equal(t, 200.00, d.TotalDeductionAmount)
	assert.Equal(t, -100.00, d.NetPayableAmount)
	assert.Equal(t, -125.00, d.BalanceAmount)
}

func TestCompute_ZeroInputs(t *testing.T) {
	d := finance.Compute(finance.Inputs{})
	assert.Equal(t, finance.Derived{}, d)
}

func TestCompute_Rounding(t *testing.T) {
	// 333.33 * 18% = 59.9994 → 60.00 after per-step rounding.
	d := finance.Compute(finance.Inputs{BasicAmount: 333.33, GSTPercent: 18})
	assert.Equal(t, 60.00, d.GSTAmount)
	assert.Equal(t, 393.33, d.TotalAmount)
}

func TestCompute_Deterministic(t *testing.T) {
	in := finance.Inputs{
		BasicAmount: 98765.43,
		GSTPercent:  12,
		Deductions: finance.Deductions{
			Retention:   1234.56,
			GSTWithheld: 11.11,
			BOCW:        99.99,
			Other:       0.01,
		},
		AmountPaid: 50000,
	}

	first := finance.Compute(in)
	second := finance.Compute(in)
	assert.Equal(t, first, second)

	// Recomputing from the derived state's inputs yields the same outputs.
	third := finance.Compute(in)
	assert.Equal(t, first, third)
}

func TestDeductions_SumOrderIndependent(t *testing.T) {
	a := finance.Deductions{Retention: 0.1, TDS: 0.2, Penalty: 0.3}
	b := finance.Deductions{Penalty: 0.3, Retention: 0.1, TDS: 0.2}
	assert.Equal(t, a.Sum(), b.Sum())
	assert.Equal(t, 0.60, a.Sum())
}

func TestRound2_HalfAwayFromZero(t *testing.T) {
	// 0.125 is exactly representable, so this is a true half case.
	assert.Equal(t, 0.13, finance.Round2(0.125))
	assert.Equal(t, -0.13, finance.Round2(-0.125))
	assert.Equal(t, 12345.60, finance.Round2(12345.6))
}
