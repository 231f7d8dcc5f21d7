package game

import (
	"encoding/json"
	"fmt"
)

type Suit int

type Rank int

// Suits in contract order: card / 13.
const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Ranks in contract order: card % 13, ace low.
const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

type Card struct {
	Rank Rank
	Suit Suit
}

// DecodeCard maps the contract's 0..51 card index to a Card.
func DecodeCard(v uint8) (Card, error) {
	if v > 51 {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidCard, v)
	}
	return Card{Rank: Rank(v%13) + Ace, Suit: Suit(v / 13)}, nil
}

func (c Card) String() string {
	r := map[Rank]string{
		Two: "2", Three: "3", Four: "4", Five: "5", Six: "6", Seven: "7", Eight: "8", Nine: "9", Ten: "T", Jack: "J", Queen: "Q", King: "K", Ace: "A",
	}[c.Rank]
	s := map[Suit]string{Spades: "s", Hearts: "h", Diamonds: "d", Clubs: "c"}[c.Suit]
	return r + s
}

func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func decodeCards(raw []uint8) ([]Card, error) {
	out := make([]Card, 0, len(raw))
	for _, v := range raw {
		c, err := DecodeCard(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
