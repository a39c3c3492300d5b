package attendance

import "math"

// Summary aggregates one player's attendance over the sessions of their teams.
type Summary struct {
	Sessions   int
	SignedUp   int
	Withdrawn  int
	NoResponse int
	// Percentage is SignedUp over Sessions, rounded to the nearest integer.
	Percentage int
}

// Summarize counts the player's status across sessions belonging to any of
// the player's teams. Sessions of other teams are ignored.
func Summarize(player Player, sessions []Session) Summary {
	var summary Summary
	for _, session := range sessions {
		if !player.OnTeam(session.Team) {
			continue
		}
		summary.Sessions++
		switch Resolve(session, player.ID).Kind {
		case KindSignedUp:
			summary.SignedUp++
		case KindWithdrawn:
			summary.Withdrawn++
		default:
			summary.NoResponse++
		}
	}
	if summary.Sessions > 0 {
		summary.Percentage = int(math.Round(float64(summary.SignedUp) * 100 / float64(summary.Sessions)))
	}
	return summary
}
