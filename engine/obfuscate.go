package engine

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"strconv"
)

// CardToken derives the opaque, stable token a card id is replaced with in
// broadcast state. The digest is deliberately non-cryptographic (FNV-1a);
// its only job is to keep unseen cards unreadable at a glance, and the
// per-deck bijection is verified empirically by NewObfuscator rather than
// guaranteed by construction.
func CardToken(id, salt string) string {
	h := fnv.New64a()
	h.Write([]byte(salt))
	h.Write([]byte{':'})
	h.Write([]byte(id))
	return strconv.FormatUint(h.Sum64(), 16)
}

// Obfuscator maps the 108 catalog card ids to their tokens for one game.
type Obfuscator struct {
	salt    string
	tokens  map[string]string // card id -> token
	byToken map[string]string // token -> card id
}

// NewObfuscator precomputes tokens for the whole catalog under salt and
// fails if any two cards collide. A collision means the salt itself is
// unusable, so game initialization must abort rather than continue with a
// corrupt deck.
func NewObfuscator(salt string) (*Obfuscator, error) {
	tokens := make(map[string]string, DeckSize)
	byToken := make(map[string]string, DeckSize)
	for _, c := range BuildDeck() {
		t := CardToken(c.ID, salt)
		if prev, ok := byToken[t]; ok {
			return nil, fmt.Errorf("card token collision between %q and %q (salt %q)", prev, c.ID, salt)
		}
		tokens[c.ID] = t
		byToken[t] = c.ID
	}
	return &Obfuscator{salt: salt, tokens: tokens, byToken: byToken}, nil
}

// Salt returns the salt this obfuscator was built with.
func (o *Obfuscator) Salt() string { return o.salt }

// Token returns the token for a catalog card id.
func (o *Obfuscator) Token(id string) (string, error) {
	t, ok := o.tokens[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCard, id)
	}
	return t, nil
}

// RevealTable returns the token -> card id mapping the store keeps for
// scoped hand reveals. The engine itself never resolves tokens back to
// cards; reveals go through the store so they can be restricted to the
// requesting player's own hand.
func (o *Obfuscator) RevealTable() map[string]string {
	table := make(map[string]string, len(o.byToken))
	for t, id := range o.byToken {
		table[t] = id
	}
	return table
}

// NewSalt returns a random per-game salt.
func NewSalt() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("engine: reading random salt: %v", err))
	}
	return hex.EncodeToString(b[:])
}
