// Package game holds the rules of the push-your-luck games the solver
// works on: Piglet, played with a coin, and Pig, played with a die.
package game

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownVariant = errors.New("unknown game variant")
)

type Variant int

const (
	// Piglet flips a coin: tails loses the turn total, heads adds one point.
	Piglet Variant = iota
	// Pig rolls a six-sided die: a 1 loses the turn total, anything else is
	// added to it.
	Pig
)

var piglet = outcomes{faces: 2, busts: 1, gains: []int{1}}
var pig = outcomes{faces: 6, busts: 1, gains: []int{2, 3, 4, 5, 6}}

type outcomes struct {
	faces int
	busts int
	gains []int
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v == Piglet || v == Pig
}

func (v Variant) outcomes() outcomes {
	switch v {
	case Pig:
		return pig
	default:
		return piglet
	}
}

// Faces is the number of equally likely outcomes of a single flip or roll.
func (v Variant) Faces() int {
	return v.outcomes().faces
}

// Busts is the number of outcomes that end the turn with nothing banked.
func (v Variant) Busts() int {
	return v.outcomes().busts
}

// Gains returns the point values of the non-busting outcomes. The returned
// slice must not be modified.
func (v Variant) Gains() []int {
	return v.outcomes().gains
}

func (v Variant) String() string {
	switch v {
	case Piglet:
		return "piglet"
	case Pig:
		return "pig"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "piglet", "coin":
		return Piglet, nil
	case "pig", "die":
		return Pig, nil
	}
	return Piglet, fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
