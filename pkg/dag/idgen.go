package dag

import "github.com/google/uuid"

// chainLabel newline-joins members' labels and appends a short uuid-derived
// suffix, giving every chain unit a default rendered label that is unique
// even when its members are byte-identical to another chain unit's. Derived
// once at creation time and carried for the life of the unit, including
// through [ChainUnit.Dup].
func chainLabel(members []Unit) string {
	s := members[0].String()
	for _, m := range members[1:] {
		s += "\n" + m.String()
	}
	return s + " #" + uuid.New().String()[:8]
}
