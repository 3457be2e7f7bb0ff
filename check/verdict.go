package check

// verdict is the outcome of a non-blocking predicate query: provable,
// refutable, or not yet decidable from current inference state. Unknown
// verdicts clear as bounds tighten, so callers may poll.
type verdict int

const (
	verdictUnknown verdict = iota
	verdictTrue
	verdictFalse
)

func (v verdict) String() string {
	switch v {
	case verdictUnknown:
		return "unknown"
	case verdictTrue:
		return "true"
	case verdictFalse:
		return "false"
	default:
		panic("unreachable")
	}
}

func boolVerdict(b bool) verdict {
	if b {
		return verdictTrue
	}
	return verdictFalse
}

type childVerdict func() (verdict, error)

// exists resolves true as soon as one child is true, false only once every
// child is false, unknown otherwise.
func exists(children ...childVerdict) (verdict, error) {
	allFalse := true
	for _, child := range children {
		v, err := child()
		if err != nil {
			return verdictUnknown, err
		}
		switch v {
		case verdictTrue:
			return verdictTrue, nil
		case verdictUnknown:
			allFalse = false
		}
	}
	if allFalse {
		return verdictFalse, nil
	}
	return verdictUnknown, nil
}

// forAll resolves false as soon as one child is false, true only once every
// child is true.
func forAll(children ...childVerdict) (verdict, error) {
	allTrue := true
	for _, child := range children {
		v, err := child()
		if err != nil {
			return verdictUnknown, err
		}
		switch v {
		case verdictFalse:
			return verdictFalse, nil
		case verdictUnknown:
			allTrue = false
		}
	}
	if allTrue {
		return verdictTrue, nil
	}
	return verdictUnknown, nil
}

func either(lhs, rhs childVerdict) (verdict, error) {
	return exists(lhs, rhs)
}

func both(lhs, rhs childVerdict) (verdict, error) {
	return forAll(lhs, rhs)
}
