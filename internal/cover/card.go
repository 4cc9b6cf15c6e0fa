package cover

import (
	"context"
	"sync"
)

// State is the per-card resolution state. It lives only as long as the
// Card and is rebuilt whenever the identity changes.
type State struct {
	Identity   Identity `json:"identity"`
	Candidates []string `json:"candidates"`
	Loading    bool     `json:"loading"`
	URL        string   `json:"url,omitempty"`
	Fallback   bool     `json:"fallback"`
}

// Ticket ties an asynchronous completion to the resolution cycle that
// started it.
type Ticket struct {
	generation uint64
	identity   Identity
}

// Identity returns the identity the ticket was issued for.
func (t Ticket) Identity() Identity { return t.identity }

// Card tracks cover resolution for one rendered book. Every Begin starts
// a new generation; completions carrying an older generation are
// ignored, so probes for a superseded identity can never overwrite the
// state of the current one.
type Card struct {
	resolver *Resolver

	mu         sync.Mutex
	generation uint64
	state      State
}

// NewCard creates a card that resolves through r.
func NewCard(r *Resolver) *Card {
	return &Card{resolver: r}
}

// Begin resets the card for id and returns the ticket for this cycle.
// An empty candidate list goes straight to fallback.
func (c *Card) Begin(id Identity) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	candidates := id.Candidates()
	c.state = State{
		Identity:   id,
		Candidates: candidates,
		Loading:    len(candidates) > 0,
		Fallback:   len(candidates) == 0,
	}
	return Ticket{generation: c.generation, identity: id}
}

// Complete applies an outcome if t is still the current cycle and the
// cycle has not already reached a terminal state. It reports whether
// the outcome was applied.
func (c *Card) Complete(t Ticket, o Outcome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.generation != c.generation || !c.state.Loading {
		return false
	}
	c.state.Loading = false
	if o.Fallback || o.URL == "" {
		c.state.Fallback = true
		return true
	}
	c.state.URL = o.URL
	return true
}

// RenderFailed is the second checkpoint: the render target could not
// load the URL the probe accepted. The card switches to fallback if t
// is still current.
func (c *Card) RenderFailed(t Ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.generation != c.generation || c.state.Fallback {
		return false
	}
	c.state.Loading = false
	c.state.URL = ""
	c.state.Fallback = true
	return true
}

// Snapshot returns a copy of the current state.
func (c *Card) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Candidates = append([]string(nil), c.state.Candidates...)
	return s
}

// Start begins a cycle for id and resolves it in the background. done,
// if non-nil, receives the state after the cycle's outcome is applied
// or discarded.
func (c *Card) Start(ctx context.Context, id Identity, done func(State, bool)) Ticket {
	t := c.Begin(id)
	candidates := id.Candidates()
	if len(candidates) == 0 {
		if done != nil {
			done(c.Snapshot(), true)
		}
		return t
	}
	go func() {
		applied := c.Complete(t, c.resolver.Resolve(ctx, candidates))
		if done != nil {
			done(c.Snapshot(), applied)
		}
	}()
	return t
}

// Load runs one full cycle for id synchronously and returns the ticket
// and resulting state.
func (c *Card) Load(ctx context.Context, id Identity) (Ticket, State) {
	t := c.Begin(id)
	candidates := id.Candidates()
	if len(candidates) > 0 {
		c.Complete(t, c.resolver.Resolve(ctx, candidates))
	}
	return t, c.Snapshot()
}
