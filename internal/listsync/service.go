package listsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anitrack/internal/library"
	"anitrack/internal/platform/mal"
	"anitrack/internal/syncrun"
	"anitrack/internal/worker"

	"github.com/google/uuid"
)

// tokenSkew refreshes tokens slightly ahead of their expiry.
const tokenSkew = time.Minute

type Service struct {
	lib       Library
	meta      MetadataSource
	mal       MALClient
	tokens    TokenRepository
	runs      syncrun.Repository
	runner    *worker.Runner
	verifiers *VerifierStore
	now       func() time.Time
}

func NewService(lib Library, meta MetadataSource, malClient MALClient, tokens TokenRepository, runs syncrun.Repository, runner *worker.Runner, verifiers *VerifierStore) *Service {
	return &Service{
		lib:       lib,
		meta:      meta,
		mal:       malClient,
		tokens:    tokens,
		runs:      runs,
		runner:    runner,
		verifiers: verifiers,
		now:       time.Now,
	}
}

// Repair fetches metadata for every entry with missing fields and merges it
// in. Entries that are already complete count as skipped.
func (s *Service) Repair(ctx context.Context, userID string) (*syncrun.Run, error) {
	return syncrun.Track(ctx, s.runs, syncrun.KindRepair, userID, func(ctx context.Context, run *syncrun.Run) error {
		entries, err := s.lib.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("list library: %w", err)
		}

		var todo []library.Entry
		for _, e := range entries {
			if e.NeedsMetadata() {
				todo = append(todo, e)
			} else {
				run.Skipped++
			}
		}
		run.Total = len(entries)

		rep, err := s.runner.Run(ctx, len(todo), func(ctx context.Context, i int) error {
			e := todo[i]
			a, err := s.meta.GetAnime(ctx, e.MalID)
			if err != nil {
				return fmt.Errorf("mal_id=%d: %w", e.MalID, err)
			}
			if _, err := s.lib.ApplyMetadata(ctx, userID, e.ID, library.MetadataFromAnime(a)); err != nil {
				return fmt.Errorf("mal_id=%d: %w", e.MalID, err)
			}
			return nil
		})
		run.Succeeded += rep.Succeeded
		run.Failed += rep.Failed
		return err
	})
}

// Push upserts every library entry into the linked MAL list.
func (s *Service) Push(ctx context.Context, userID string) (*syncrun.Run, error) {
	tok, err := s.accessToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	return syncrun.Track(ctx, s.runs, syncrun.KindMALPush, userID, func(ctx context.Context, run *syncrun.Run) error {
		entries, err := s.lib.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("list library: %w", err)
		}
		run.Total = len(entries)

		rep, err := s.runner.Run(ctx, len(entries), func(ctx context.Context, i int) error {
			e := entries[i]
			if _, err := s.mal.UpdateListStatus(ctx, tok.AccessToken, e.MalID, ToListStatus(e)); err != nil {
				return fmt.Errorf("mal_id=%d: %w", e.MalID, err)
			}
			return nil
		})
		run.Succeeded += rep.Succeeded
		run.Failed += rep.Failed
		if rep.Total > 0 && rep.Failed == rep.Total {
			run.Error = "every update was rejected"
		}
		return err
	})
}

// Import adds MAL list entries that are not yet in the library. A linked
// account is read through the API; otherwise the public export of username
// is used. Existing entries are never modified.
func (s *Service) Import(ctx context.Context, userID, username string) (*syncrun.Run, error) {
	tok, err := s.accessToken(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotLinked) {
		return nil, err
	}
	if errors.Is(err, ErrNotLinked) && username == "" {
		return nil, ErrNotLinked
	}
	linked := err == nil

	return syncrun.Track(ctx, s.runs, syncrun.KindMALImport, userID, func(ctx context.Context, run *syncrun.Run) error {
		var incoming []library.NewEntry
		if linked {
			items, err := s.mal.ListAnime(ctx, tok.AccessToken)
			if err != nil {
				return fmt.Errorf("read mal list: %w", err)
			}
			for _, it := range items {
				incoming = append(incoming, FromListItem(it))
			}
		} else {
			items, err := s.mal.ExportList(ctx, username)
			if err != nil {
				return fmt.Errorf("export mal list: %w", err)
			}
			for _, it := range items {
				incoming = append(incoming, FromExportItem(it))
			}
		}

		existing, err := s.lib.List(ctx, userID)
		if err != nil {
			return fmt.Errorf("list library: %w", err)
		}
		have := make(map[int]bool, len(existing))
		for _, e := range existing {
			have[e.MalID] = true
		}

		for _, in := range incoming {
			if err := ctx.Err(); err != nil {
				return err
			}
			run.Total++
			if have[in.MalID] {
				run.Skipped++
				continue
			}
			_, err := s.lib.Add(ctx, userID, in)
			switch {
			case errors.Is(err, library.ErrAlreadyExists):
				run.Skipped++
			case err != nil:
				run.Failed++
				log.Printf("[listsync] import item failed user_id=%s mal_id=%d err=%v", userID, in.MalID, err)
			default:
				run.Succeeded++
				have[in.MalID] = true
			}
		}
		return nil
	})
}

// LinkStart begins the OAuth flow and returns the consent URL.
func (s *Service) LinkStart(userID string) (string, error) {
	if !s.mal.Configured() {
		return "", ErrNotConfigured
	}
	verifier, err := NewVerifier()
	if err != nil {
		return "", err
	}
	state := uuid.NewString()
	s.verifiers.Put(state, userID, verifier)
	return s.mal.AuthorizeURL(state, verifier), nil
}

// LinkComplete trades the authorization code for a token and stores it for
// the user that started the flow.
func (s *Service) LinkComplete(ctx context.Context, state, code string) (string, error) {
	userID, verifier, ok := s.verifiers.Take(state)
	if !ok {
		return "", ErrInvalidState
	}
	tok, err := s.mal.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	if err := s.tokens.Upsert(ctx, userID, tok); err != nil {
		return "", err
	}
	log.Printf("[listsync] mal account linked user_id=%s", userID)
	return userID, nil
}

func (s *Service) Unlink(ctx context.Context, userID string) error {
	return s.tokens.Delete(ctx, userID)
}

func (s *Service) Runs(ctx context.Context, userID string, limit int) ([]syncrun.Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.runs.ListRuns(ctx, userID, limit)
}

// accessToken returns a usable token, refreshing and storing it when it is
// about to expire.
func (s *Service) accessToken(ctx context.Context, userID string) (mal.Token, error) {
	tok, err := s.tokens.Get(ctx, userID)
	if err != nil {
		return mal.Token{}, err
	}
	if !tok.Expired(s.now(), tokenSkew) {
		return tok, nil
	}
	if tok.RefreshToken == "" {
		return mal.Token{}, ErrNotLinked
	}

	fresh, err := s.mal.Refresh(ctx, tok.RefreshToken)
	if errors.Is(err, mal.ErrUnauthorized) {
		return mal.Token{}, ErrNotLinked
	}
	if err != nil {
		return mal.Token{}, fmt.Errorf("refresh mal token: %w", err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = tok.RefreshToken
	}
	if err := s.tokens.Upsert(ctx, userID, fresh); err != nil {
		return mal.Token{}, err
	}
	return fresh, nil
}
