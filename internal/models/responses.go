package models

import "time"

// CreateRoomResponse is the response for creating a room. CreatorToken and
// ParticipantID are only set when the creator joined at creation; the token
// is never recoverable afterwards.
type CreateRoomResponse struct {
	Code          string `json:"code"`
	RoomName      string `json:"roomName"`
	CreatorToken  string `json:"creatorToken,omitempty"`
	ParticipantID string `json:"participantId,omitempty"`
}

// JoinRoomResponse carries the new participant's credential
type JoinRoomResponse struct {
	Token         string `json:"token"`
	ParticipantID string `json:"participantId"`
	RoomName      string `json:"roomName"`
	Code          string `json:"code"`
}

// VoteResponse reports tally progress after a successful vote
type VoteResponse struct {
	Success    bool `json:"success"`
	VotedCount int  `json:"votedCount"`
	AllVoted   bool `json:"allVoted"`
}

// FlakeResponse carries the flaker's credential and the running count
type FlakeResponse struct {
	Token         string `json:"token"`
	ParticipantID string `json:"participantId"`
	FlakeCount    int    `json:"flakeCount"`
	AllFlaked     bool   `json:"allFlaked"`
}

// ResizeResponse reports the room's new shape
type ResizeResponse struct {
	GroupSize  int  `json:"groupSize"`
	FlakeCount int  `json:"flakeCount"`
	AllFlaked  bool `json:"allFlaked"`
}

// LoginResponse carries an admin JWT
type LoginResponse struct {
	Token string `json:"token"`
}

// AdminParticipant is a participant as shown to admins: identity and vote
// status, never the bearer token.
type AdminParticipant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joinedAt"`
	HasVoted bool      `json:"hasVoted"`
}

// AdminRoomResponse is the admin inspection view of a room record
type AdminRoomResponse struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Code         string             `json:"code"`
	Mode         string             `json:"mode"`
	GroupSize    int                `json:"groupSize"`
	CreatedAt    time.Time          `json:"createdAt"`
	Version      int                `json:"version"`
	Participants []AdminParticipant `json:"participants"`
	VotedCount   int                `json:"votedCount"`
	FlakeCount   int                `json:"flakeCount"`
}
