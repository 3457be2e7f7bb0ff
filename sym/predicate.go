package sym

// Predicate is a property of a term that where-clauses can demand and the
// checker can test.
type Predicate int

const (
	// PredCopy holds for terms whose values may be freely duplicated.
	PredCopy Predicate = iota
	// PredMove holds for terms whose values transfer on use.
	PredMove
	// PredOwned holds for terms that do not borrow from any place.
	PredOwned
	// PredLent holds for terms that borrow from some place.
	PredLent

	NumPredicates = 4
)

func (p Predicate) String() string {
	switch p {
	case PredCopy:
		return "copy"
	case PredMove:
		return "move"
	case PredOwned:
		return "owned"
	case PredLent:
		return "lent"
	default:
		panic("unreachable")
	}
}

// Invert returns the predicate that is the dual of p: a term is copy
// exactly when it is not move, and owned exactly when it is not lent.
func (p Predicate) Invert() Predicate {
	switch p {
	case PredCopy:
		return PredMove
	case PredMove:
		return PredCopy
	case PredOwned:
		return PredLent
	case PredLent:
		return PredOwned
	default:
		panic("unreachable")
	}
}
