package entity

// Turn identifies one of the two players of a session.
type Turn uint8

const (
	TurnA Turn = iota
	TurnB
)

// Flip switches the turn in place.
func (that *Turn) Flip() {
	*that = that.Flipped()
}

// Flipped returns the other player.
func (that Turn) Flipped() Turn {
	if that == TurnA {
		return TurnB
	}
	return TurnA
}

func (that Turn) String() string {
	if that == TurnA {
		return "A"
	}
	return "B"
}
