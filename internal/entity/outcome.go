package entity

import "fmt"

type OutcomeKind uint8

const (
	OutcomeWin OutcomeKind = iota + 1
	OutcomeDraw
	OutcomeAbandoned
)

// Outcome is the terminal classification of a session.
// Player is the winner for OutcomeWin and the leaver for OutcomeAbandoned.
type Outcome struct {
	Kind   OutcomeKind
	Player Turn
}

func WinBy(turn Turn) Outcome {
	return Outcome{Kind: OutcomeWin, Player: turn}
}

func Draw() Outcome {
	return Outcome{Kind: OutcomeDraw}
}

func Abandoned(leaver Turn) Outcome {
	return Outcome{Kind: OutcomeAbandoned, Player: leaver}
}

func (that Outcome) String() string {
	switch that.Kind {
	case OutcomeWin:
		return fmt.Sprintf("win by %s", that.Player)
	case OutcomeDraw:
		return "draw"
	case OutcomeAbandoned:
		return fmt.Sprintf("abandoned by %s", that.Player)
	default:
		return "unknown"
	}
}
