// Command recompute rewrites the derived amount columns of every stored
// invoice from its stored inputs. Run it after changing the computation
// rules or repairing imported data.
// Usage: go run ./cmd/recompute
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"ims/internal/config"
	"ims/internal/domain"
	"ims/internal/finance"
	"ims/internal/repository/postgres"
)

const batchSize = 100

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	invoiceRepo := postgres.NewInvoiceRepo(db)

	ctx := context.Background()
	offset := 0
	total := 0

	for {
		invoices, _, err := invoiceRepo.List(ctx, domain.StatusAny, offset, batchSize)
		if err != nil {
			return fmt.Errorf("listing invoices: %w", err)
		}
		if len(invoices) == 0 {
			break
		}

		for i := range invoices {
			inv := &invoices[i]
			derived := finance.Compute(finance.Inputs{
				BasicAmount: inv.BasicAmount,
				GSTPercent:  inv.GSTPercent,
				Deductions: finance.Deductions{
					Retention:         inv.RetentionAmount,
					GSTWithheld:       inv.GSTWithheld,
					TDS:               inv.TDSAmount,
					GSTTDS:            inv.GSTTDSAmount,
					BOCW:              inv.BOCWAmount,
					LowDepth:          inv.LowDepthDeductionAmount,
					LiquidatedDamages: inv.LiquidatedDamagesAmount,
					SLAPenalty:        inv.SLAPenaltyAmount,
					Penalty:           inv.PenaltyAmount,
					Other:             inv.OtherDeductionAmount,
				},
				AmountPaid: inv.AmountPaid,
			})

			if derived.GSTAmount == inv.GSTAmount &&
				derived.TotalAmount == inv.TotalAmount &&
				derived.TotalDeductionAmount == inv.TotalDeductionAmount &&
				derived.NetPayableAmount == inv.NetPayableAmount &&
				derived.BalanceAmount == inv.BalanceAmount {
				continue
			}

			inv.GSTAmount = derived.GSTAmount
			inv.TotalAmount = derived.TotalAmount
			inv.TotalDeductionAmount = derived.TotalDeductionAmount
			inv.NetPayableAmount = derived.NetPayableAmount
			inv.BalanceAmount = derived.BalanceAmount

			if err := invoiceRepo.UpdateDerived(ctx, inv); err != nil {
				if err == domain.ErrInvoiceNotFound {
					continue
				}
				return fmt.Errorf("updating invoice %s: %w", inv.ID, err)
			}
			total++
		}

		offset += len(invoices)
	}

	log.Printf("recomputed %d invoices (%d scanned)", total, offset)
	return nil
}
