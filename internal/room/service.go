package room

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mossy-p/flake/internal/store"
)

// maxCodeAttempts bounds code generation retries on collision.
const maxCodeAttempts = 5

// Service orchestrates every operation as load -> validate -> apply one
// mutation -> check invariants -> persist whole record -> filtered view.
// The store's Update does the read-modify-write atomically, so two racing
// requests cannot overwrite each other's votes.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

func storeKey(code string) string {
	return "room:" + strings.ToUpper(code)
}

// Create allocates a room under a fresh code, retrying generation a bounded
// number of times when the code is already taken. When creatorName is given
// the creator joins immediately and their credential is part of the result.
func (s *Service) Create(ctx context.Context, name string, groupSize int, mode Mode, creatorName string) (*Room, *Participant, error) {
	r, err := New(name, groupSize, mode)
	if err != nil {
		return nil, nil, err
	}

	var creator *Participant
	if creatorName != "" {
		creator, err = r.Join(creatorName)
		if err != nil {
			return nil, nil, err
		}
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		if attempt > 0 {
			r.Code = GenerateCode()
		}
		_, err := s.store.Get(ctx, storeKey(r.Code))
		if errors.Is(err, store.ErrNotFound) {
			if err := s.put(ctx, r); err != nil {
				return nil, nil, err
			}
			return r, creator, nil
		}
		if err != nil {
			return nil, nil, err
		}
		// Code already belongs to a live room; try another
	}
	return nil, nil, ErrCodeExhausted
}

// Get returns the disclosure-filtered room summary for whoever holds token
// (token may be empty for an anonymous viewer).
func (s *Service) Get(ctx context.Context, code, token string) (*View, error) {
	r, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}
	return BuildView(r, r.FindByToken(token)), nil
}

// Join admits one participant and returns their freshly minted credential.
// This is the only time the token is ever disclosed.
func (s *Service) Join(ctx context.Context, code, name string) (*Room, *Participant, error) {
	var (
		joined  *Participant
		current *Room
	)
	err := s.update(ctx, code, func(r *Room) error {
		p, err := r.Join(name)
		if err != nil {
			return err
		}
		joined = p
		current = r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return current, joined, nil
}

// Vote records an immutable in/out choice for the credential holder and
// reports the new tally progress.
func (s *Service) Vote(ctx context.Context, code, token, choice string) (votedCount int, allVoted bool, err error) {
	err = s.update(ctx, code, func(r *Room) error {
		if _, err := r.CastVote(token, choice); err != nil {
			return err
		}
		votedCount = r.VotedCount()
		allVoted = r.AllVoted()
		return nil
	})
	return votedCount, allVoted, err
}

// Flake performs the flake-only flow's combined join-and-vote.
func (s *Service) Flake(ctx context.Context, code, name string) (*Room, *Participant, error) {
	var (
		flaked  *Participant
		current *Room
	)
	err := s.update(ctx, code, func(r *Room) error {
		p, err := r.Flake(name)
		if err != nil {
			return err
		}
		flaked = p
		current = r
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return current, flaked, nil
}

// Resize changes the expected group size, rejecting shrinks below the
// current participant count.
func (s *Service) Resize(ctx context.Context, code string, newSize int) (*Room, error) {
	var current *Room
	err := s.update(ctx, code, func(r *Room) error {
		if err := r.Resize(newSize); err != nil {
			return err
		}
		current = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return current, nil
}

// Results returns the disclosure-filtered outcome for the credential
// holder. Vote mode requires a resolvable token. Flake mode accepts an
// absent token and treats the viewer as a non-flaker, but still rejects a
// token that resolves to nothing.
func (s *Service) Results(ctx context.Context, code, token string) (*Results, error) {
	r, err := s.load(ctx, code)
	if err != nil {
		return nil, err
	}

	viewer := r.FindByToken(token)
	if viewer == nil {
		if r.Mode == ModeVote || token != "" {
			return nil, ErrInvalidCredential
		}
	}
	return BuildResults(r, viewer), nil
}

// Inspect loads the raw aggregate. Admin use only; callers must redact
// credentials before serializing anything out.
func (s *Service) Inspect(ctx context.Context, code string) (*Room, error) {
	return s.load(ctx, code)
}

// Delete removes a room before its TTL runs out. Admin use only.
func (s *Service) Delete(ctx context.Context, code string) error {
	if _, err := s.load(ctx, code); err != nil {
		return err
	}
	return s.store.Delete(ctx, storeKey(code))
}

func (s *Service) load(ctx context.Context, code string) (*Room, error) {
	data, err := s.store.Get(ctx, storeKey(code))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *Service) put(ctx context.Context, r *Room) error {
	if err := r.Check(); err != nil {
		return err
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling room %s: %w", r.Code, err)
	}
	return s.store.Put(ctx, storeKey(r.Code), data, TTL)
}

// update wraps a single-record mutation in the store's atomic
// read-modify-write, bumping the version and re-checking invariants before
// anything is written back.
func (s *Service) update(ctx context.Context, code string, mutate func(*Room) error) error {
	err := s.store.Update(ctx, storeKey(code), TTL, func(old []byte) ([]byte, error) {
		r, err := decode(old)
		if err != nil {
			return nil, err
		}
		if err := mutate(r); err != nil {
			return nil, err
		}
		if err := r.Check(); err != nil {
			return nil, err
		}
		r.Version++
		return json.Marshal(r)
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func decode(data []byte) (*Room, error) {
	var r Room
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshaling room record: %w", err)
	}
	if r.Votes == nil {
		r.Votes = map[string]string{}
	}
	return &r, nil
}
