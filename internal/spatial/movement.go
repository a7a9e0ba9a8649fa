package spatial

import (
	"strconv"

	"github.com/arquebus/battlegrid/internal/platform/errors"
)

// DefaultSpeedFeet is the movement speed assumed for participants that
// never declared one.
const DefaultSpeedFeet = 30.0

// StartTurn resets the participant's movement budget to its full speed and
// clears the dash flag. Participants without a declared speed get the
// default 30 ft.
func StartTurn(p *Participant) {
	if p.MovementSpeed <= 0 {
		p.MovementSpeed = DefaultSpeedFeet
	}
	p.MovementRemaining = p.MovementSpeed
	p.HasDashed = false
}

// Dash adds the participant's speed to its remaining movement. At most one
// dash per turn: a second call fails and leaves the budget untouched.
func Dash(p *Participant) error {
	if p.HasDashed {
		return errors.WithMetadata(errors.CodeDashAlreadyUsed,
			"participant "+p.ID+" has already dashed this turn",
			map[string]string{"id": p.ID})
	}
	speed := p.MovementSpeed
	if speed <= 0 {
		speed = DefaultSpeedFeet
	}
	p.MovementRemaining += speed
	p.HasDashed = true
	return nil
}

func formatFeet(feet float64) string {
	return strconv.FormatFloat(feet, 'f', -1, 64)
}
