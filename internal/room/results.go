package room

import (
	"fmt"
	"time"
)

// Everything in this file is a pure function of (room, viewer). Views are
// built fresh on every read and never cached, so nothing computed for one
// viewer can leak into another's response.

// Outcome values for completed vote-mode rooms.
const (
	OutcomeOn        = "on"
	OutcomeSafe      = "safe"
	OutcomePartial   = "partial"
	OutcomeCancelled = "cancelled"
)

// Result statuses.
const (
	StatusWaiting   = "waiting"
	StatusComplete  = "complete"
	StatusLive      = "live"
	StatusCancelled = "cancelled"
)

// Flaker identifies one "out" voter in a disclosure-filtered response.
type Flaker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Results is the disclosure-filtered outcome view for one viewer.
type Results struct {
	Status           string   `json:"status"`
	Outcome          string   `json:"outcome,omitempty"`
	Message          string   `json:"message,omitempty"`
	MyVote           string   `json:"myVote,omitempty"`
	VotedCount       int      `json:"votedCount,omitempty"`
	TotalExpected    int      `json:"totalExpected,omitempty"`
	ParticipantCount int      `json:"participantCount,omitempty"`
	FlakeCount       int      `json:"flakeCount,omitempty"`
	GroupSize        int      `json:"groupSize,omitempty"`
	Progress         float64  `json:"progress,omitempty"`
	Flakers          []Flaker `json:"flakers,omitempty"`
}

// BuildResults computes what viewer may see of the tally right now.
//
// Vote mode: nothing but progress until every seat has joined and voted;
// then "in" voters learn only that plans are on, while "out" voters learn
// which of the outcomes safe/partial/cancelled applies and, for partial and
// cancelled, who the other flakers are.
//
// Flake mode: flakers see the running count and each other; everyone else
// sees a zero count until the whole group has flaked, at which point the
// cancelled state and total count stop being a secret (names stay
// flaker-only).
func BuildResults(r *Room, viewer *Participant) *Results {
	if r.Mode == ModeFlake {
		return buildFlakeResults(r, viewer)
	}
	return buildVoteResults(r, viewer)
}

func buildVoteResults(r *Room, viewer *Participant) *Results {
	var myVote string
	if viewer != nil {
		myVote = r.Votes[viewer.ID]
	}

	if !r.AllVoted() {
		return &Results{
			Status:           StatusWaiting,
			VotedCount:       r.VotedCount(),
			TotalExpected:    r.GroupSize,
			ParticipantCount: len(r.Participants),
			MyVote:           myVote,
		}
	}

	outVoters := r.OutVoters()
	outCount := len(outVoters)
	totalVoters := r.VotedCount()

	if myVote != VoteOut {
		// Anyone who didn't vote "out" never learns who did, in any field
		return &Results{
			Status:  StatusComplete,
			Outcome: OutcomeOn,
			Message: "Plans are on!",
			MyVote:  myVote,
		}
	}

	switch {
	case outCount == totalVoters:
		return &Results{
			Status:  StatusComplete,
			Outcome: OutcomeCancelled,
			Message: "Everyone wanted to flake! Plans cancelled.",
			MyVote:  VoteOut,
			Flakers: flakerList(outVoters),
		}
	case outCount == 1:
		// Viewer is the lone flaker; nothing to reveal to anyone
		return &Results{
			Status:  StatusComplete,
			Outcome: OutcomeSafe,
			Message: "You wanted to flake, but plans are still on. Your secret is safe.",
			MyVote:  VoteOut,
		}
	default:
		return &Results{
			Status:  StatusComplete,
			Outcome: OutcomePartial,
			Message: fmt.Sprintf("%d out of %d want to cancel.", outCount, totalVoters),
			MyVote:  VoteOut,
			Flakers: flakerList(outVoters),
		}
	}
}

func buildFlakeResults(r *Room, viewer *Participant) *Results {
	flakeCount := r.FlakeCount()
	cancelled := r.AllFlaked()

	viewerFlaked := viewer != nil && r.Votes[viewer.ID] == VoteOut

	res := &Results{
		Status:    StatusLive,
		GroupSize: r.GroupSize,
	}
	if cancelled {
		res.Status = StatusCancelled
		res.Message = "Everyone wanted to flake! Plans cancelled."
		res.FlakeCount = flakeCount
		res.Progress = 1
	}
	if viewerFlaked {
		res.MyVote = VoteOut
		res.FlakeCount = flakeCount
		res.Progress = float64(flakeCount) / float64(r.GroupSize)
		res.Flakers = flakerList(r.OutVoters())
	}
	return res
}

// flakerList strips tokens and timestamps, keeping join order.
func flakerList(ps []Participant) []Flaker {
	fs := make([]Flaker, 0, len(ps))
	for _, p := range ps {
		fs = append(fs, Flaker{ID: p.ID, Name: p.Name})
	}
	return fs
}

// ParticipantStatus is the public membership view: who is here and whether
// they have voted, never how.
type ParticipantStatus struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HasVoted bool   `json:"hasVoted"`
}

// View is the disclosure-filtered room summary returned by get-room.
type View struct {
	Name             string              `json:"name"`
	Code             string              `json:"code"`
	Mode             Mode                `json:"mode"`
	GroupSize        int                 `json:"groupSize"`
	CreatedAt        string              `json:"createdAt"`
	ParticipantCount int                 `json:"participantCount,omitempty"`
	Participants     []ParticipantStatus `json:"participants,omitempty"`
	VotedCount       int                 `json:"votedCount,omitempty"`
	AllVoted         bool                `json:"allVoted,omitempty"`
	FlakeCount       int                 `json:"flakeCount,omitempty"`
	AllFlaked        bool                `json:"allFlaked,omitempty"`
	MyID             string              `json:"myId,omitempty"`
	MyVote           string              `json:"myVote,omitempty"`
}

// BuildView summarizes a room for one viewer (viewer may be nil). In vote
// mode membership and has-voted flags are public; vote values are not. In
// flake mode membership itself identifies "out" voters, so non-flakers see
// a zero count and no member list until the room is fully flaked.
func BuildView(r *Room, viewer *Participant) *View {
	v := &View{
		Name:      r.Name,
		Code:      r.Code,
		Mode:      r.Mode,
		GroupSize: r.GroupSize,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if viewer != nil {
		v.MyID = viewer.ID
		v.MyVote = r.Votes[viewer.ID]
	}

	if r.Mode == ModeFlake {
		viewerFlaked := viewer != nil && r.Votes[viewer.ID] == VoteOut
		if r.AllFlaked() {
			v.AllFlaked = true
			v.FlakeCount = r.FlakeCount()
		}
		if viewerFlaked {
			v.FlakeCount = r.FlakeCount()
			for _, p := range r.OutVoters() {
				v.Participants = append(v.Participants, ParticipantStatus{ID: p.ID, Name: p.Name, HasVoted: true})
			}
			v.ParticipantCount = len(v.Participants)
		}
		return v
	}

	v.ParticipantCount = len(r.Participants)
	v.VotedCount = r.VotedCount()
	v.AllVoted = r.AllVoted()
	for _, p := range r.Participants {
		_, voted := r.Votes[p.ID]
		v.Participants = append(v.Participants, ParticipantStatus{ID: p.ID, Name: p.Name, HasVoted: voted})
	}
	return v
}
