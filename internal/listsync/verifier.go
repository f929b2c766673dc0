package listsync

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// DefaultVerifierTTL bounds how long a user may sit on the consent screen.
const DefaultVerifierTTL = 10 * time.Minute

type pendingLink struct {
	userID   string
	verifier string
	expires  time.Time
}

// VerifierStore keeps the PKCE verifier of every in-flight link keyed by the
// OAuth state. Entries are single use.
type VerifierStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	pending map[string]pendingLink
	now     func() time.Time
}

func NewVerifierStore(ttl time.Duration) *VerifierStore {
	if ttl <= 0 {
		ttl = DefaultVerifierTTL
	}
	return &VerifierStore{ttl: ttl, pending: make(map[string]pendingLink), now: time.Now}
}

func (s *VerifierStore) Put(state, userID, verifier string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, p := range s.pending {
		if now.After(p.expires) {
			delete(s.pending, k)
		}
	}
	s.pending[state] = pendingLink{userID: userID, verifier: verifier, expires: now.Add(s.ttl)}
}

// Take removes and returns the pending link for state.
func (s *VerifierStore) Take(state string) (userID, verifier string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, found := s.pending[state]
	if !found {
		return "", "", false
	}
	delete(s.pending, state)
	if s.now().After(p.expires) {
		return "", "", false
	}
	return p.userID, p.verifier, true
}

// NewVerifier returns a 64 character verifier drawn from the PKCE unreserved
// alphabet.
func NewVerifier() (string, error) {
	b := make([]byte, 48)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
