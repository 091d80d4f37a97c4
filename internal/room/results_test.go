package room

import "testing"

func TestResultLedgerKeepsJoinOrder(t *testing.T) {
	l := NewResultLedger()
	l.Touch("u1", "alice")
	l.Touch("u2", "bob")
	l.Record("u2", 5, 1)
	l.Record("u1", 3, 2)

	got := l.Summary()
	if len(got) != 2 {
		t.Fatalf("expected two entries, got %d", len(got))
	}
	if got[0].UserID != "u1" || got[1].UserID != "u2" {
		t.Fatalf("expected join order preserved, got %+v", got)
	}
	if got[0].AttackCount != 3 || got[0].KillCount != 2 {
		t.Fatalf("expected u1 scores recorded, got %+v", got[0])
	}
}

func TestResultLedgerTouchIsIdempotent(t *testing.T) {
	l := NewResultLedger()
	l.Touch("u1", "alice")
	l.Record("u1", 9, 4)
	l.Touch("u1", "alice2")

	got := l.Summary()
	if len(got) != 1 {
		t.Fatalf("expected one entry, got %d", len(got))
	}
	if got[0].AttackCount != 9 || got[0].KillCount != 4 {
		t.Fatalf("expected scores kept across re-touch, got %+v", got[0])
	}
	if got[0].Username != "alice2" {
		t.Fatalf("expected username refreshed, got %s", got[0].Username)
	}
}

func TestResultLedgerRecordRequiresTouch(t *testing.T) {
	l := NewResultLedger()
	l.Record("ghost", 1, 1)
	if got := l.Summary(); len(got) != 0 {
		t.Fatalf("expected no entry without a touch, got %+v", got)
	}
}

func TestResultStoreDispose(t *testing.T) {
	s := NewResultStore()
	ledger := s.Create("r1")
	ledger.Touch("u1", "alice")

	got, ok := s.Summary("r1")
	if !ok || len(got) != 1 {
		t.Fatalf("expected live summary, got ok=%v %+v", ok, got)
	}

	s.Dispose("r1", 0)
	if _, ok := s.Summary("r1"); ok {
		t.Fatalf("expected ledger removed after immediate disposal")
	}
	if _, ok := s.Summary("unknown"); ok {
		t.Fatalf("expected no summary for an unknown room")
	}
}
