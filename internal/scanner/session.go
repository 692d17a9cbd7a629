package scanner

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/handycook/foodscan/internal/domain"
)

// resolutionState tracks whether an item's food verdict is settled.
// Transitions are monotonic: resolved items never go back to pending.
type resolutionState int

const (
	statePending resolutionState = iota
	stateResolved
)

type sessionItem struct {
	item  domain.DetectedItem
	state resolutionState
}

// Session accumulates detections over a scan. Raw detections merge into
// items keyed by normalized label; pending items settle once their word
// gets classified.
type Session struct {
	mu        sync.Mutex
	items     map[string]*sessionItem
	scanning  bool
	startedAt time.Time
	inFlight  int
	err       error
}

// NewSession creates an empty scan session, ready to accept detections.
func NewSession() *Session {
	return &Session{items: make(map[string]*sessionItem), scanning: true, startedAt: time.Now()}
}

// Start resets the session for a fresh scan and clears any prior error.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*sessionItem)
	s.scanning = true
	s.startedAt = time.Now()
	s.err = nil
}

// Stop freezes capture. Accumulated items stay put for finalization;
// detections arriving after the stop are dropped.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanning = false
}

// Scanning reports whether the session is still accepting detections.
func (s *Session) Scanning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scanning
}

// StartedAt returns when the current scan began.
func (s *Session) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// SetError records a session-level error for the UI layer to surface.
func (s *Session) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Err returns the recorded session error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// BeginRequest and EndRequest track classification calls in flight.
// The count is advisory; callers use it to delay the summary while
// requests are still outstanding.
func (s *Session) BeginRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight++
}

func (s *Session) EndRequest() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight > 0 {
		s.inFlight--
	}
}

// InFlight returns the number of outstanding classification requests.
func (s *Session) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Add merges one raw detection into the session. Repeat sightings bump
// the count, keep the highest confidence and refresh the bounding box.
// A non-pending sighting settles a pending item; the reverse never
// happens.
func (s *Session) Add(d domain.RawDetection) {
	key := domain.NormalizeWord(d.Label)
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.scanning {
		return
	}

	now := time.Now()

	existing, ok := s.items[key]
	if !ok {
		state := stateResolved
		if d.IsPending {
			state = statePending
		}
		s.items[key] = &sessionItem{
			state: state,
			item: domain.DetectedItem{
				ID:          uuid.NewString(),
				Label:       key,
				Confidence:  d.Confidence,
				Source:      d.Source,
				Count:       1,
				FirstSeenAt: now,
				LastSeenAt:  now,
				BoundingBox: d.BoundingBox,
				IsPending:   d.IsPending,
				Category:    d.Category,
			},
		}
		return
	}

	existing.item.Count++
	existing.item.LastSeenAt = now
	if d.Confidence > existing.item.Confidence {
		existing.item.Confidence = d.Confidence
	}
	if d.BoundingBox != nil {
		existing.item.BoundingBox = d.BoundingBox
	}
	if d.Category != "" {
		existing.item.Category = d.Category
	}
	if !d.IsPending && existing.state == statePending {
		existing.state = stateResolved
		existing.item.IsPending = false
	}
}

// AddAll merges a batch of raw detections, typically one parsed frame.
func (s *Session) AddAll(detections []domain.RawDetection) {
	for _, d := range detections {
		s.Add(d)
	}
}

// ResolvePending applies classification results to pending items. Foods
// settle with their category; non-foods are removed outright. Items
// whose word has no result stay pending for a later pass.
func (s *Session) ResolvePending(results map[string]domain.WordClassification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, entry := range s.items {
		if entry.state != statePending {
			continue
		}
		c, ok := results[key]
		if !ok {
			continue
		}
		if !c.IsFood {
			delete(s.items, key)
			continue
		}
		entry.state = stateResolved
		entry.item.IsPending = false
		if c.Category != "" {
			entry.item.Category = c.Category
		} else if entry.item.Category == "" {
			entry.item.Category = domain.CategoryOther
		}
	}
}

// PendingWords returns the labels of items still awaiting a verdict.
func (s *Session) PendingWords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var words []string
	for key, entry := range s.items {
		if entry.state == statePending {
			words = append(words, key)
		}
	}
	sort.Strings(words)
	return words
}

// Finalize makes a last classification attempt for pending items and
// returns the final item list. The context bounds the attempt: on
// deadline the unresolved items are simply returned still pending.
func (s *Session) Finalize(ctx context.Context, service *Service) []domain.DetectedItem {
	pending := s.PendingWords()
	if len(pending) > 0 && service != nil {
		results := service.ClassifyUnknownWords(ctx, pending)
		s.ResolvePending(results)
	}
	return s.Items()
}

// PendingItems returns the items still awaiting a verdict.
func (s *Session) PendingItems() []domain.DetectedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []domain.DetectedItem
	for _, entry := range s.items {
		if entry.state == statePending {
			items = append(items, entry.item)
		}
	}
	sortItems(items)
	return items
}

// Items returns a snapshot of the session's items, most confident
// first, sighting count breaking ties.
func (s *Session) Items() []domain.DetectedItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.DetectedItem, 0, len(s.items))
	for _, entry := range s.items {
		items = append(items, entry.item)
	}
	sortItems(items)
	return items
}

func sortItems(items []domain.DetectedItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Confidence != items[j].Confidence {
			return items[i].Confidence > items[j].Confidence
		}
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Label < items[j].Label
	})
}

// Clear resets the session for a new scan. Detections still in flight
// from before the clear just start fresh items; they cannot corrupt
// the new session.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*sessionItem)
	s.err = nil
}
