package prize

import "testing"

func payoutSum(payouts []Payout) int64 {
	var sum int64
	for _, p := range payouts {
		sum += p.AmountCents
	}
	return sum
}

func TestWeightedSumsExactly(t *testing.T) {
	pools := []int64{10000, 9999, 12345, 1, 100, 777777}
	rates := []float64{0, 0.03, 0.05, 0.25, 1}
	for _, pool := range pools {
		for _, rate := range rates {
			for count := 1; count <= 5; count++ {
				res, err := Distribute(pool, rate, count, ModeWeighted)
				if err != nil {
					t.Fatalf("distribute pool=%d rate=%v count=%d: %v", pool, rate, count, err)
				}
				if got := payoutSum(res.Payouts); got != res.NetCents {
					t.Fatalf("pool=%d rate=%v count=%d: payouts sum %d != net %d", pool, rate, count, got, res.NetCents)
				}
				if res.CommissionCents+res.NetCents != pool {
					t.Fatalf("pool=%d rate=%v count=%d: commission %d + net %d != pool", pool, rate, count, res.CommissionCents, res.NetCents)
				}
			}
		}
	}
}

func TestWeightedFallbackAboveFive(t *testing.T) {
	res, err := Distribute(100000, 0.05, 8, ModeWeighted)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(res.Payouts) != 8 {
		t.Fatalf("expected 8 payouts, got %d", len(res.Payouts))
	}
	if got := payoutSum(res.Payouts); got != res.NetCents {
		t.Fatalf("payouts sum %d != net %d", got, res.NetCents)
	}
	// Equal weights: every non-last payout identical.
	for i := 1; i < 7; i++ {
		if res.Payouts[i].AmountCents != res.Payouts[0].AmountCents {
			t.Fatalf("position %d payout %d differs from first %d", i+1, res.Payouts[i].AmountCents, res.Payouts[0].AmountCents)
		}
	}
}

func TestWeightedThreeWinnerShares(t *testing.T) {
	// Pool 100.00, net 75.00 after commission: shares follow .50/.30/.20.
	res, err := Distribute(10000, 0.25, 3, ModeWeighted)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if res.CommissionCents != 2500 {
		t.Fatalf("commission = %d, want 2500", res.CommissionCents)
	}
	want := []int64{3750, 2250, 1500}
	for i, w := range want {
		if res.Payouts[i].AmountCents != w {
			t.Fatalf("position %d = %d, want %d", i+1, res.Payouts[i].AmountCents, w)
		}
	}
	if payoutSum(res.Payouts) != res.NetCents {
		t.Fatalf("sum != net")
	}
}

func TestWeightedFiveWinnerShares(t *testing.T) {
	res, err := Distribute(10000, 0.05, 5, ModeWeighted)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if res.CommissionCents != 500 || res.NetCents != 9500 {
		t.Fatalf("commission=%d net=%d, want 500/9500", res.CommissionCents, res.NetCents)
	}
	want := []int64{3325, 2375, 1900, 1140, 760}
	for i, w := range want {
		if res.Payouts[i].AmountCents != w {
			t.Fatalf("position %d = %d, want %d", i+1, res.Payouts[i].AmountCents, w)
		}
	}
}

func TestWeightedLastTakesRemainder(t *testing.T) {
	// 101 cents net across 2 winners: .65 floors to 65, last gets 36.
	res, err := Distribute(101, 0, 2, ModeWeighted)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if res.Payouts[0].AmountCents != 65 || res.Payouts[1].AmountCents != 36 {
		t.Fatalf("payouts = %+v, want [65 36]", res.Payouts)
	}
}

func TestEqualRemainderGoesToCommission(t *testing.T) {
	// Net 100 cents across 3 winners: 33 each, 1 cent retained.
	res, err := Distribute(100, 0, 3, ModeEqual)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	for _, p := range res.Payouts {
		if p.AmountCents != 33 {
			t.Fatalf("payout %+v, want 33", p)
		}
	}
	if res.CommissionCents != 1 {
		t.Fatalf("commission = %d, want 1 (equal-mode remainder)", res.CommissionCents)
	}
	if payoutSum(res.Payouts)+res.CommissionCents != 100 {
		t.Fatalf("cents leaked")
	}
}

func TestEqualSingleWinnerTakesNet(t *testing.T) {
	res, err := Distribute(10000, 0.05, 1, ModeEqual)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if res.Payouts[0].AmountCents != 9500 {
		t.Fatalf("payout = %d, want 9500", res.Payouts[0].AmountCents)
	}
}

func TestDistributeValidation(t *testing.T) {
	if _, err := Distribute(-1, 0.1, 1, ModeEqual); err != ErrInvalidPool {
		t.Fatalf("expected ErrInvalidPool, got %v", err)
	}
	if _, err := Distribute(100, -0.1, 1, ModeEqual); err != ErrInvalidFeeRate {
		t.Fatalf("expected ErrInvalidFeeRate, got %v", err)
	}
	if _, err := Distribute(100, 1.1, 1, ModeEqual); err != ErrInvalidFeeRate {
		t.Fatalf("expected ErrInvalidFeeRate, got %v", err)
	}
	if _, err := Distribute(100, 0.1, 0, ModeEqual); err != ErrInvalidWinnerCount {
		t.Fatalf("expected ErrInvalidWinnerCount, got %v", err)
	}
	if _, err := Distribute(100, 0.1, 1, "raffle"); err != ErrUnknownMode {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}
