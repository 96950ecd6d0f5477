package domain

import (
	"cmp"
	"slices"
	"strings"
)

// Store is the in-memory participation state. Session data (posts, the link
// set, members, the sequence counter) is wiped by Reset at every open;
// warnings, streaks and the identity cache live for the process lifetime.
type Store struct {
	posts    []Post
	byPoster map[int64]int
	links    map[string]struct{}
	// withdrawn holds posts deleted by their owner; they still count when
	// the session is scored.
	withdrawn []Post
	members   []int64
	isMember  map[int64]struct{}
	nextSeq  int
	// generation changes on every Reset so callers can tell whether a result
	// computed outside the owner's lock still belongs to the same session.
	generation uint64

	Warnings *Warnings
	Streaks  *StreakTracker

	identities map[int64]Identity
	handles    map[string]int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{
		Warnings:   NewWarnings(),
		Streaks:    NewStreakTracker(),
		identities: make(map[int64]Identity),
		handles:    make(map[string]int64),
	}
	s.clearSession()
	return s
}

// Reset clears all session data and starts a new generation.
func (s *Store) Reset() {
	s.clearSession()
	s.generation++
}

func (s *Store) clearSession() {
	s.posts = nil
	s.byPoster = make(map[int64]int)
	s.links = make(map[string]struct{})
	s.withdrawn = nil
	s.members = nil
	s.isMember = make(map[int64]struct{})
	s.nextSeq = 1
}

// Generation identifies the current session data set.
func (s *Store) Generation() uint64 {
	return s.generation
}

// Submission is one candidate post.
type Submission struct {
	PosterID int64
	Text     string
	// Session and Total locate the current session in its cycle for
	// streak accounting.
	Session int
	Total   int
}

// Accept validates a submission against the session's uniqueness rules and
// records it. Rejections leave the store untouched.
func (s *Store) Accept(sub Submission) (Post, StreakRecord, error) {
	link := strings.TrimSpace(sub.Text)
	if !ContainsLink(link) {
		return Post{}, StreakRecord{}, ErrNotALink
	}
	if _, ok := s.byPoster[sub.PosterID]; ok {
		return Post{}, StreakRecord{}, ErrAlreadyPosted
	}
	if _, ok := s.links[link]; ok {
		return Post{}, StreakRecord{}, ErrDuplicateLink
	}
	if HasPlaceholderHandle(link) {
		return Post{}, StreakRecord{}, ErrPlaceholderHandle
	}

	s.links[link] = struct{}{}
	streak := s.Streaks.Record(sub.PosterID, sub.Session, sub.Total)
	if _, ok := s.isMember[sub.PosterID]; !ok {
		s.isMember[sub.PosterID] = struct{}{}
		s.members = append(s.members, sub.PosterID)
	}

	post := Post{
		Sequence: s.nextSeq,
		PosterID: sub.PosterID,
		Handle:   ExtractHandle(link),
		URL:      link,
	}
	s.nextSeq++
	s.byPoster[sub.PosterID] = len(s.posts)
	s.posts = append(s.posts, post)
	return post, streak, nil
}

// SetRendered records the bot's copy of a post. It reports false when the
// post no longer exists.
func (s *Store) SetRendered(posterID int64, sequence int, ref MessageRef) bool {
	idx, ok := s.byPoster[posterID]
	if !ok || s.posts[idx].Sequence != sequence {
		return false
	}
	s.posts[idx].Rendered = ref
	return true
}

// PostBy returns the member's post in the current session.
func (s *Store) PostBy(posterID int64) (Post, bool) {
	idx, ok := s.byPoster[posterID]
	if !ok {
		return Post{}, false
	}
	return s.posts[idx], true
}

// RemovePost frees the member's posting slot. The member stays in the
// session, the post is still scored, and the link stays reserved until the
// next Reset.
func (s *Store) RemovePost(posterID int64) (Post, bool) {
	idx, ok := s.byPoster[posterID]
	if !ok {
		return Post{}, false
	}
	removed := s.posts[idx]
	s.posts = append(s.posts[:idx:idx], s.posts[idx+1:]...)
	delete(s.byPoster, posterID)
	for i := idx; i < len(s.posts); i++ {
		s.byPoster[s.posts[i].PosterID] = i
	}
	s.withdrawn = append(s.withdrawn, removed)
	return removed, true
}

// ScoredPosts returns every post of the session in sequence order,
// including posts their owners deleted.
func (s *Store) ScoredPosts() []Post {
	out := make([]Post, 0, len(s.posts)+len(s.withdrawn))
	out = append(out, s.posts...)
	out = append(out, s.withdrawn...)
	slices.SortFunc(out, func(a, b Post) int {
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	return out
}

// Members returns the session's posters in the order they first posted.
func (s *Store) Members() []int64 {
	out := make([]int64, len(s.members))
	copy(out, s.members)
	return out
}

// PostCount returns the number of live posts in the session.
func (s *Store) PostCount() int {
	return len(s.posts)
}

// Remember caches a member's identity by id and, when present, by
// lower-cased username.
func (s *Store) Remember(identity Identity) {
	if identity.ID == 0 {
		return
	}
	s.identities[identity.ID] = identity
	if handle := normalizeHandle(identity.Username); handle != "" {
		s.handles[handle] = identity.ID
	}
}

// IdentityByID returns a cached identity.
func (s *Store) IdentityByID(userID int64) (Identity, bool) {
	identity, ok := s.identities[userID]
	return identity, ok
}

// IdentityByHandle looks up a cached identity by username, with or without
// the leading "@", case-insensitively.
func (s *Store) IdentityByHandle(handle string) (Identity, bool) {
	userID, ok := s.handles[normalizeHandle(handle)]
	if !ok {
		return Identity{}, false
	}
	return s.IdentityByID(userID)
}

// MentionFor renders a member's label, falling back to "User<id>".
func (s *Store) MentionFor(userID int64) string {
	if identity, ok := s.identities[userID]; ok {
		return identity.Mention()
	}
	return FallbackLabel(userID)
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
