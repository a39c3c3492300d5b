package attendance

import "strings"

// Team identifies one of the club's squads.
type Team string

const (
	// TeamAscenso is the competitive squad.
	TeamAscenso Team = "ascenso"
	// TeamEscuela is the training school.
	TeamEscuela Team = "escuela"
)

// legacyTeamPrefix is how roster documents referenced teams before the API existed.
const legacyTeamPrefix = "jugadoras-"

// Teams lists every known team in display order.
func Teams() []Team {
	return []Team{TeamAscenso, TeamEscuela}
}

// Valid reports whether t is a known team.
func (t Team) Valid() bool {
	switch t {
	case TeamAscenso, TeamEscuela:
		return true
	}
	return false
}

func (t Team) String() string {
	return string(t)
}

// ParseTeam normalizes a team identifier, accepting the legacy "jugadoras-"
// prefix and any letter case.
func ParseTeam(value string) (Team, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.TrimPrefix(normalized, legacyTeamPrefix)
	team := Team(normalized)
	if !team.Valid() {
		return "", false
	}
	return team, true
}
