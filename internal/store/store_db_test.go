package store

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

func TestDeductStakeConditional(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	userID := mustUser(t, st, ctx, "alice", 1000)

	err := st.WithTx(ctx, func(tx pgx.Tx) error {
		ok, bal, err := st.DeductStakeTx(ctx, tx, userID, 600)
		if err != nil {
			return err
		}
		if !ok || bal != 400 {
			t.Fatalf("first deduct: ok=%v bal=%d, want true/400", ok, bal)
		}
		ok, _, err = st.DeductStakeTx(ctx, tx, userID, 600)
		if err != nil {
			return err
		}
		if ok {
			t.Fatalf("second deduct succeeded past the balance")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	mustUser(t, st, ctx, "bob", 100)
	if _, err := st.CreateUser(ctx, "bob", 100); !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestOneOpenRoundPerRoom(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	roomID := mustRoom(t, st, ctx, 100)
	err := st.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := st.CreateRoundTx(ctx, tx, roomID, "seed-a"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("first round: %v", err)
	}
	err = st.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := st.CreateRoundTx(ctx, tx, roomID, "seed-b")
		return err
	})
	if !errors.Is(err, ErrOpenRoundExists) {
		t.Fatalf("expected ErrOpenRoundExists, got %v", err)
	}
}

func TestServerSeedUniqueAcrossRooms(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	roomA := mustRoom(t, st, ctx, 100)
	roomB := mustRoom(t, st, ctx, 200)
	err := st.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := st.CreateRoundTx(ctx, tx, roomA, "shared-seed")
		return err
	})
	if err != nil {
		t.Fatalf("first round: %v", err)
	}
	err = st.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := st.CreateRoundTx(ctx, tx, roomB, "shared-seed")
		return err
	})
	if !errors.Is(err, ErrSeedTaken) {
		t.Fatalf("expected ErrSeedTaken, got %v", err)
	}
}

func TestArchiveFreesSeedAndRoomSlot(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	roomID := mustRoom(t, st, ctx, 100)
	var roundID string
	err := st.WithTx(ctx, func(tx pgx.Tx) error {
		r, err := st.CreateRoundTx(ctx, tx, roomID, "archived-seed")
		if err != nil {
			return err
		}
		roundID = r.ID
		return st.ArchiveRoundTx(ctx, tx, roundID)
	})
	if err != nil {
		t.Fatalf("create+archive: %v", err)
	}
	// Both partial indexes exclude archived rows, so the same seed and a new
	// open round for the room are accepted again.
	err = st.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := st.CreateRoundTx(ctx, tx, roomID, "archived-seed")
		return err
	})
	if err != nil {
		t.Fatalf("recreate after archive: %v", err)
	}
	if _, err := st.GetRound(ctx, roundID); err != nil {
		t.Fatalf("archived round still readable by id: %v", err)
	}
}

func TestJoinRequestLifecycle(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	userID := mustUser(t, st, ctx, "idem", 100)
	roomID := mustRoom(t, st, ctx, 100)

	inserted, err := st.InsertJoinRequest(ctx, "key-1", userID, roomID, "join")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !inserted {
		t.Fatalf("fresh key not inserted")
	}
	inserted, err = st.InsertJoinRequest(ctx, "key-1", userID, roomID, "join")
	if err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if inserted {
		t.Fatalf("duplicate key reported as inserted")
	}

	jr, err := st.GetJoinRequest(ctx, "key-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(jr.Outcome) != 0 {
		t.Fatalf("outcome set before save: %q", jr.Outcome)
	}
	if err := st.SaveJoinRequestOutcome(ctx, "key-1", []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("save outcome: %v", err)
	}
	jr, err = st.GetJoinRequest(ctx, "key-1")
	if err != nil {
		t.Fatalf("get after save: %v", err)
	}
	if string(jr.Outcome) != `{"ok":true}` {
		t.Fatalf("outcome = %q", jr.Outcome)
	}

	if err := st.DeleteJoinRequest(ctx, "key-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := st.GetJoinRequest(ctx, "key-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTopupRecordsTransaction(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	userID := mustUser(t, st, ctx, "richie", 100)
	bal, err := st.Topup(ctx, userID, 900)
	if err != nil {
		t.Fatalf("topup: %v", err)
	}
	if bal != 1000 {
		t.Fatalf("balance = %d, want 1000", bal)
	}
	txs, err := st.ListTransactionsByUser(ctx, userID, 10, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Kind != TxTopup || txs[0].AmountCents != 900 {
		t.Fatalf("unexpected transactions: %+v", txs)
	}
}

func TestEnsureDefaultRoomsIdempotent(t *testing.T) {
	st, ctx, cleanup := openStore(t)
	defer cleanup()

	if err := st.EnsureDefaultRooms(ctx); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	first, err := st.CountRooms(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if first == 0 {
		t.Fatalf("no default rooms created")
	}
	if err := st.EnsureDefaultRooms(ctx); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
	second, err := st.CountRooms(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if second != first {
		t.Fatalf("ensure is not idempotent: %d then %d", first, second)
	}
}
