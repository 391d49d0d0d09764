package sleeper

// Player is the subset of the Sleeper player object we consume. The
// /v1/players/nfl response maps player ID to one of these.
type Player struct {
	PlayerID       string `json:"player_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Position       string `json:"position"`
	Team           string `json:"team"`
	InjuryStatus   string `json:"injury_status"`
	InjuryBodyPart string `json:"injury_body_part"`
	InjuryNotes    string `json:"injury_notes"`
	Active         bool   `json:"active"`
}
