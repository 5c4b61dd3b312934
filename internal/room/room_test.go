package room

import (
	"errors"
	"strings"
	"testing"
)

func newTestRoom(t *testing.T, size int, mode Mode) *Room {
	t.Helper()
	r, err := New("Friday dinner", size, mode)
	if err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	return r
}

func TestNew_RejectsBadInput(t *testing.T) {
	if _, err := New("Dinner", 1, ModeVote); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize for size 1, got %v", err)
	}
	if _, err := New("Dinner", 51, ModeVote); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize for size 51, got %v", err)
	}
	if _, err := New("   ", 3, ModeVote); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
	if _, err := New("Dinner", 3, Mode("ranked")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown mode, got %v", err)
	}
}

func TestNew_DefaultsToVoteMode(t *testing.T) {
	r, err := New("Dinner", 3, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Mode != ModeVote {
		t.Fatalf("expected default mode %q, got %q", ModeVote, r.Mode)
	}
	if len(r.Code) != 6 {
		t.Fatalf("expected 6-char code, got %q", r.Code)
	}
	for _, ch := range r.Code {
		if !strings.ContainsRune(codeChars, ch) {
			t.Fatalf("code %q contains character outside alphabet", r.Code)
		}
	}
}

func TestJoin_FullRoom(t *testing.T) {
	r := newTestRoom(t, 2, ModeVote)

	for _, name := range []string{"alice", "bob"} {
		if _, err := r.Join(name); err != nil {
			t.Fatalf("join %s: %v", name, err)
		}
	}

	if _, err := r.Join("carol"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if len(r.Participants) != 2 {
		t.Fatalf("failed join must not add a participant, have %d", len(r.Participants))
	}
}

func TestJoin_DuplicateName(t *testing.T) {
	r := newTestRoom(t, 3, ModeVote)

	if _, err := r.Join("Alice"); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Case-insensitive after trimming
	if _, err := r.Join("  alice "); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if len(r.Participants) != 1 {
		t.Fatalf("duplicate join must not add a participant, have %d", len(r.Participants))
	}
}

func TestJoin_IssuesDistinctCredentials(t *testing.T) {
	r := newTestRoom(t, 3, ModeVote)

	a, _ := r.Join("alice")
	b, _ := r.Join("bob")

	if a.Token == b.Token || a.ID == b.ID {
		t.Fatal("participants must get distinct ids and tokens")
	}
	if r.FindByToken(a.Token).ID != a.ID {
		t.Fatal("token must resolve to its own participant")
	}
	if r.FindByToken("nope") != nil {
		t.Fatal("unknown token must not resolve")
	}
	if r.FindByToken("") != nil {
		t.Fatal("empty token must not resolve")
	}
}

func TestCastVote_BeforeRoomIsFull(t *testing.T) {
	r := newTestRoom(t, 3, ModeVote)
	p, _ := r.Join("alice")

	if _, err := r.CastVote(p.Token, VoteIn); !errors.Is(err, ErrVotingNotOpen) {
		t.Fatalf("expected ErrVotingNotOpen, got %v", err)
	}
	if r.VotedCount() != 0 {
		t.Fatal("rejected vote must not be recorded")
	}
}

func TestCastVote_DoubleVote(t *testing.T) {
	r := newTestRoom(t, 2, ModeVote)
	a, _ := r.Join("alice")
	r.Join("bob")

	if _, err := r.CastVote(a.Token, VoteOut); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := r.CastVote(a.Token, VoteIn); !errors.Is(err, ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if r.Votes[a.ID] != VoteOut {
		t.Fatal("second vote must not change the tally")
	}
}

func TestCastVote_BadChoiceAndBadToken(t *testing.T) {
	r := newTestRoom(t, 2, ModeVote)
	a, _ := r.Join("alice")
	r.Join("bob")

	if _, err := r.CastVote(a.Token, "maybe"); !errors.Is(err, ErrInvalidChoice) {
		t.Fatalf("expected ErrInvalidChoice, got %v", err)
	}
	if _, err := r.CastVote("bogus", VoteIn); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential, got %v", err)
	}
}

func TestAllVoted(t *testing.T) {
	r := newTestRoom(t, 2, ModeVote)
	a, _ := r.Join("alice")
	b, _ := r.Join("bob")

	if r.AllVoted() {
		t.Fatal("room with no votes must not be complete")
	}
	r.CastVote(a.Token, VoteIn)
	if r.AllVoted() {
		t.Fatal("room with one vote of two must not be complete")
	}
	r.CastVote(b.Token, VoteOut)
	if !r.AllVoted() {
		t.Fatal("room with every seat voted must be complete")
	}
}

func TestResize_Policy(t *testing.T) {
	r := newTestRoom(t, 4, ModeVote)
	r.Join("alice")
	r.Join("bob")
	r.Join("carol")

	// Permitted: shrink down to the current participant count
	if err := r.Resize(3); err != nil {
		t.Fatalf("resize to participant count must succeed: %v", err)
	}

	// Rejected: shrink below the current participant count
	if err := r.Resize(2); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize shrinking below members, got %v", err)
	}
	if r.GroupSize != 3 {
		t.Fatalf("rejected resize must not change the size, got %d", r.GroupSize)
	}

	// Rejected: out of bounds
	if err := r.Resize(51); !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize for 51, got %v", err)
	}

	// Permitted: grow
	if err := r.Resize(10); err != nil {
		t.Fatalf("grow must succeed: %v", err)
	}
}

func TestFlake_CombinedJoinAndVote(t *testing.T) {
	r := newTestRoom(t, 2, ModeFlake)

	p, err := r.Flake("alice")
	if err != nil {
		t.Fatalf("flake: %v", err)
	}
	if r.Votes[p.ID] != VoteOut {
		t.Fatal("flake must record an out vote for the new participant")
	}
	if r.FlakeCount() != 1 || r.AllFlaked() {
		t.Fatalf("expected 1 flake and not all flaked, got %d / %v", r.FlakeCount(), r.AllFlaked())
	}

	if _, err := r.Flake("Alice"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	if _, err := r.Flake("bob"); err != nil {
		t.Fatalf("flake: %v", err)
	}
	if !r.AllFlaked() {
		t.Fatal("expected all flaked after second flake of two")
	}

	if _, err := r.Flake("carol"); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
}

func TestFlake_WrongMode(t *testing.T) {
	r := newTestRoom(t, 2, ModeVote)
	if _, err := r.Flake("alice"); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("expected ErrWrongMode, got %v", err)
	}
}

func TestCheck_Invariants(t *testing.T) {
	r := newTestRoom(t, 2, ModeVote)
	r.Join("alice")
	r.Join("bob")

	if err := r.Check(); err != nil {
		t.Fatalf("healthy room must pass: %v", err)
	}

	r.Votes["ghost"] = VoteOut
	if err := r.Check(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("vote for non-member must fail the check, got %v", err)
	}
	delete(r.Votes, "ghost")

	r.GroupSize = 1
	if err := r.Check(); !errors.Is(err, ErrInvariant) {
		t.Fatalf("more participants than seats must fail the check, got %v", err)
	}
}
