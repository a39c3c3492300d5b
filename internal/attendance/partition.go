package attendance

import "slices"

// Player is a roster entry. ID matches the user id used as the attendance key.
type Player struct {
	ID        string
	FirstName string
	LastName  string
	PhotoURL  string
	Teams     []Team
}

// OnTeam reports whether the player belongs to team.
func (p Player) OnTeam(team Team) bool {
	return slices.Contains(p.Teams, team)
}

// Groups is a three-way split of a roster against one session.
type Groups struct {
	SignedUp   []Player
	Withdrawn  []Player
	NoResponse []Player
}

// Len returns the number of players across all groups.
func (g Groups) Len() int {
	return len(g.SignedUp) + len(g.Withdrawn) + len(g.NoResponse)
}

// Partition splits the members of session's team into signed-up, withdrawn
// and no-response groups. Players outside the team are skipped. Each group
// keeps the roster's order.
func Partition(roster []Player, session Session) Groups {
	groups := Groups{
		SignedUp:   []Player{},
		Withdrawn:  []Player{},
		NoResponse: []Player{},
	}
	for _, player := range roster {
		if !player.OnTeam(session.Team) {
			continue
		}
		switch Resolve(session, player.ID).Kind {
		case KindSignedUp:
			groups.SignedUp = append(groups.SignedUp, player)
		case KindWithdrawn:
			groups.Withdrawn = append(groups.Withdrawn, player)
		default:
			groups.NoResponse = append(groups.NoResponse, player)
		}
	}
	return groups
}
