package domain

// Role distinguishes proteins the user asked about from the proteins the
// interaction service returned around them
type Role string

const (
	RoleQueried  Role = "queried"
	RoleNeighbor Role = "neighbor"
)

// Color returns the display colour used when no analysis annotation applies
func (r Role) Color() string {
	if r == RoleQueried {
		return "green"
	}
	return "blue"
}

// MatchesQuery reports whether a node name denotes one of the queried
// identifiers. STRING names nodes by preferred name or by "9606."-prefixed
// protein id, so both spellings are accepted.
func MatchesQuery(node string, ids []Identifier) bool {
	bare := StripSpecies(node)
	for _, id := range ids {
		if node == id.Gene || bare == id.Gene {
			return true
		}
		if id.ProteinID == "" {
			continue
		}
		p := StripSpecies(id.ProteinID)
		if node == id.ProteinID || bare == p {
			return true
		}
	}
	return false
}
