package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/ryym/uni/engine"
	"github.com/ryym/uni/internal/store"
)

// Revealer resolves hand tokens to real card ids. store.Store satisfies
// this.
type Revealer interface {
	Reveal(ctx context.Context, roomID, playerID string, tokens []string) (map[string]string, error)
}

// CardStatus is the lifecycle of one hand card's identity lookup.
type CardStatus uint8

const (
	// CardFetching means a reveal request for the token is in flight.
	CardFetching CardStatus = iota
	// CardGot means the token has been resolved to a catalog card.
	CardGot
)

// HandCard is a hand token's resolution state.
type HandCard struct {
	Status CardStatus
	Card   engine.Card
}

// HandCardMap caches the player's own hand token resolutions across
// turns. Tokens are stable for the whole game, so a card drawn once stays
// known until the map is dropped with the game.
type HandCardMap struct {
	mu    sync.Mutex
	cards map[string]HandCard
}

func NewHandCardMap() *HandCardMap {
	return &HandCardMap{cards: make(map[string]HandCard)}
}

// Get returns the resolution state of token.
func (m *HandCardMap) Get(token string) (HandCard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	hc, ok := m.cards[token]
	return hc, ok
}

// Fetch resolves every token of hand that is not yet known. Lookups are
// chunked to the store's reveal batch cap and the chunks are issued in
// parallel. Tokens of a failed chunk are cleared so a later Fetch retries
// them.
func (m *HandCardMap) Fetch(ctx context.Context, r Revealer, roomID, playerID string, hand []string) error {
	m.mu.Lock()
	var missing []string
	for _, token := range hand {
		if _, ok := m.cards[token]; !ok {
			m.cards[token] = HandCard{Status: CardFetching}
			missing = append(missing, token)
		}
	}
	m.mu.Unlock()
	if len(missing) == 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for start := 0; start < len(missing); start += store.MaxRevealBatch {
		end := start + store.MaxRevealBatch
		if end > len(missing) {
			end = len(missing)
		}
		chunk := missing[start:end]

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := m.fetchChunk(ctx, r, roomID, playerID, chunk); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
			}
		}()
	}
	wg.Wait()
	return firstErr
}

func (m *HandCardMap) fetchChunk(ctx context.Context, r Revealer, roomID, playerID string, tokens []string) error {
	revealed, err := r.Reveal(ctx, roomID, playerID, tokens)
	if err != nil {
		m.mu.Lock()
		for _, token := range tokens {
			if hc, ok := m.cards[token]; ok && hc.Status == CardFetching {
				delete(m.cards, token)
			}
		}
		m.mu.Unlock()
		return fmt.Errorf("revealing %d cards: %w", len(tokens), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range tokens {
		id, ok := revealed[token]
		if !ok {
			delete(m.cards, token)
			continue
		}
		card, err := engine.CardByID(id)
		if err != nil {
			// The store answered with an id outside the catalog. Treat the
			// token as unresolved rather than caching garbage.
			delete(m.cards, token)
			return fmt.Errorf("revealed card for token %s: %w", token, err)
		}
		m.cards[token] = HandCard{Status: CardGot, Card: card}
	}
	return nil
}
