package models

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	GroupSize   int    `json:"groupSize" binding:"required,min=2,max=50"`
	Mode        string `json:"mode" binding:"omitempty,oneof=vote flake"`
	CreatorName string `json:"creatorName"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

// VoteRequest is the request body for casting a vote
type VoteRequest struct {
	Token string `json:"token" binding:"required"`
	Vote  string `json:"vote" binding:"required,oneof=in out"`
}

// FlakeRequest is the request body for the flake-only combined join-and-vote
type FlakeRequest struct {
	Name string `json:"name" binding:"required"`
}

// ResizeRequest is the request body for changing the expected group size
type ResizeRequest struct {
	GroupSize int `json:"groupSize" binding:"required,min=2,max=50"`
}

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
