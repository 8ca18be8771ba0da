package loan_test

import (
	"LendAuction/internal/loan"
	"testing"

	"github.com/google/uuid"
)

func TestComputeInterest(t *testing.T) {
	cases := []struct {
		name         string
		amount       uint64
		elapsed      uint64
		rate         uint8
		duration     uint64
		wantInterest uint64
	}{
		{"full duration", 1000, 1000, 5, 1000, 50},
		{"half duration", 1000, 500, 5, 1000, 25},
		{"immediate repay", 1000, 0, 5, 1000, 0},
		{"late repay caps at full", 1000, 5000, 5, 1000, 50},
		{"zero rate", 1000, 1000, 0, 1000, 0},
		{"zero duration", 1000, 100, 5, 0, 0},
		{"rounds down", 999, 1, 5, 1000, 0}, // 999*5/100000 floors to 0
		{"high rate", 1_000_000, 1000, 99, 1000, 990_000},
		// durationSlots*100 exceeds uint64; the big-integer terms must not wrap
		{"huge duration", 1000, 1 << 62, 99, 1 << 62, 990},
		{"huge amount full term", 1 << 62, 500, 10, 500, (1 << 62) / 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := loan.ComputeInterest(tc.amount, tc.elapsed, tc.rate, tc.duration)
			if got != tc.wantInterest {
				t.Errorf("ComputeInterest(%d, %d, %d, %d) = %d, want %d",
					tc.amount, tc.elapsed, tc.rate, tc.duration, got, tc.wantInterest)
			}
		})
	}
}

func TestRepaymentDue(t *testing.T) {
	l := loan.Loan{
		Amount:        1000,
		Rate:          10,
		StartSlot:     100,
		DurationSlots: 1000,
	}

	total, interest := l.RepaymentDue(600)
	// 500 of 1000 slots elapsed at 10%: 1000 * 500 * 10 / (1000 * 100) = 50
	if interest != 50 {
		t.Errorf("interest = %d, want 50", interest)
	}
	if total != 1050 {
		t.Errorf("total = %d, want 1050", total)
	}
}

func TestRepaymentDue_BeforeStartSlot(t *testing.T) {
	l := loan.Loan{Amount: 1000, Rate: 10, StartSlot: 500, DurationSlots: 1000}

	total, interest := l.RepaymentDue(100)
	if interest != 0 {
		t.Errorf("interest = %d, want 0 for a slot before the loan started", interest)
	}
	if total != 1000 {
		t.Errorf("total = %d, want principal only", total)
	}
}

func TestLoanPool_AppendAndGet(t *testing.T) {
	p := loan.NewLoanPool(3)

	i0 := p.Append(loan.Loan{Amount: 100})
	i1 := p.Append(loan.Loan{Amount: 200})

	if i0 != 0 || i1 != 1 {
		t.Errorf("indices = (%d, %d), want (0, 1)", i0, i1)
	}
	if got := p.Get(1); got == nil || got.Amount != 200 {
		t.Errorf("Get(1) = %v, want the second loan", got)
	}
	if got := p.Get(2); got != nil {
		t.Errorf("Get out of range must return nil, got %v", got)
	}
}

func TestLoanPool_OutstandingCollateral(t *testing.T) {
	p := loan.NewLoanPool(0)
	lender := uuid.New()

	p.Append(loan.Loan{Lender: lender, Collateral: 100, CollateralAsset: "SOL"})
	p.Append(loan.Loan{Lender: lender, Collateral: 200, CollateralAsset: "SOL", Repaid: true})
	p.Append(loan.Loan{Lender: lender, Collateral: 400, CollateralAsset: "BONK"})

	if got := p.OutstandingCollateral("SOL"); got != 100 {
		t.Errorf("outstanding SOL collateral = %d, want 100 (repaid loans excluded)", got)
	}
	if got := p.OutstandingCollateral("BONK"); got != 400 {
		t.Errorf("outstanding BONK collateral = %d, want 400", got)
	}
}
