package room

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mode selects which voting flow a room runs.
type Mode string

const (
	// ModeVote is the "everyone votes" flow: participants join first, then
	// each casts exactly one in/out vote; nothing is revealed until every
	// seat has joined and voted.
	ModeVote Mode = "vote"
	// ModeFlake is the flake-only flow: casting a flake vote is joining,
	// not voting means staying, and the tally is a running count.
	ModeFlake Mode = "flake"
)

// Vote values.
const (
	VoteIn  = "in"
	VoteOut = "out"
)

// Group size bounds.
const (
	MinGroupSize = 2
	MaxGroupSize = 50
)

// TTL is how long a room lives in the store, refreshed on every write.
const TTL = 24 * time.Hour

// Participant is one joined person. The token is the sole credential:
// whoever holds it acts as this participant. It is returned exactly once,
// at join time, and never again.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Token    string    `json:"token"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Room is the aggregate one vote runs over. It is persisted whole on every
// mutation; Version counts writes so the store can detect racing writers.
type Room struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Code         string            `json:"code"`
	Mode         Mode              `json:"mode"`
	GroupSize    int               `json:"groupSize"`
	CreatedAt    time.Time         `json:"createdAt"`
	Version      int               `json:"version"`
	Participants []Participant     `json:"participants"`
	Votes        map[string]string `json:"votes"`
}

func New(name string, groupSize int, mode Mode) (*Room, error) {
	if groupSize < MinGroupSize || groupSize > MaxGroupSize {
		return nil, ErrInvalidSize
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if mode == "" {
		mode = ModeVote
	}
	if mode != ModeVote && mode != ModeFlake {
		return nil, ErrInvalidInput
	}

	return &Room{
		ID:           uuid.New().String(),
		Name:         name,
		Code:         GenerateCode(),
		Mode:         mode,
		GroupSize:    groupSize,
		CreatedAt:    time.Now().UTC(),
		Participants: []Participant{},
		Votes:        map[string]string{},
	}, nil
}

// Join adds a participant with a fresh id and token. Fails when the room is
// full or the name matches an existing participant case-insensitively after
// trimming.
func (r *Room) Join(name string) (*Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	if len(r.Participants) >= r.GroupSize {
		return nil, ErrRoomFull
	}
	for _, p := range r.Participants {
		if strings.EqualFold(p.Name, name) {
			return nil, ErrDuplicateName
		}
	}

	p := Participant{
		ID:       uuid.New().String(),
		Name:     name,
		Token:    uuid.New().String(),
		JoinedAt: time.Now().UTC(),
	}
	r.Participants = append(r.Participants, p)
	return &p, nil
}

// FindByToken resolves a bearer credential to a participant, or nil.
func (r *Room) FindByToken(token string) *Participant {
	if token == "" {
		return nil
	}
	for i := range r.Participants {
		if r.Participants[i].Token == token {
			return &r.Participants[i]
		}
	}
	return nil
}

// CastVote records choice for the participant holding token. A vote is
// immutable once cast. In vote mode the room must be full before any vote
// is accepted.
func (r *Room) CastVote(token, choice string) (*Participant, error) {
	if choice != VoteIn && choice != VoteOut {
		return nil, ErrInvalidChoice
	}

	p := r.FindByToken(token)
	if p == nil {
		return nil, ErrInvalidCredential
	}
	if _, ok := r.Votes[p.ID]; ok {
		return nil, ErrAlreadyVoted
	}
	if r.Mode == ModeVote && len(r.Participants) < r.GroupSize {
		return nil, ErrVotingNotOpen
	}

	if r.Votes == nil {
		r.Votes = map[string]string{}
	}
	r.Votes[p.ID] = choice
	return p, nil
}

// Flake is the flake-only flow's single operation: join and vote "out" in
// one step. Admission checks are the same as Join's.
func (r *Room) Flake(name string) (*Participant, error) {
	if r.Mode != ModeFlake {
		return nil, ErrWrongMode
	}
	p, err := r.Join(name)
	if err != nil {
		return nil, err
	}
	if r.Votes == nil {
		r.Votes = map[string]string{}
	}
	r.Votes[p.ID] = VoteOut
	return p, nil
}

// Resize changes the target group size. Shrinking below the current
// participant count is rejected: it would leave the room permanently full
// and could flip completion predicates retroactively.
func (r *Room) Resize(newSize int) error {
	if newSize < MinGroupSize || newSize > MaxGroupSize {
		return ErrInvalidSize
	}
	if newSize < len(r.Participants) {
		return ErrInvalidSize
	}
	r.GroupSize = newSize
	return nil
}

func (r *Room) VotedCount() int {
	return len(r.Votes)
}

// AllVoted reports whether every seat has joined and voted.
func (r *Room) AllVoted() bool {
	return r.VotedCount() == r.GroupSize && len(r.Participants) == r.GroupSize
}

// FlakeCount is the number of "out" votes recorded so far.
func (r *Room) FlakeCount() int {
	n := 0
	for _, v := range r.Votes {
		if v == VoteOut {
			n++
		}
	}
	return n
}

// AllFlaked reports whether the whole expected group has flaked.
func (r *Room) AllFlaked() bool {
	return r.FlakeCount() >= r.GroupSize
}

// OutVoters returns the participants who voted "out", in join order so the
// result never depends on map iteration order.
func (r *Room) OutVoters() []Participant {
	var out []Participant
	for _, p := range r.Participants {
		if r.Votes[p.ID] == VoteOut {
			out = append(out, p)
		}
	}
	return out
}

// Check verifies the aggregate's invariants. It runs after every mutation
// before the record is written back.
func (r *Room) Check() error {
	if len(r.Participants) > r.GroupSize {
		return ErrInvariant
	}
	if r.GroupSize < MinGroupSize || r.GroupSize > MaxGroupSize {
		return ErrInvariant
	}
	ids := make(map[string]bool, len(r.Participants))
	for _, p := range r.Participants {
		ids[p.ID] = true
	}
	for id := range r.Votes {
		if !ids[id] {
			return ErrInvariant
		}
	}
	return nil
}
