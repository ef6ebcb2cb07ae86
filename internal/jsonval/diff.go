package jsonval

// Result is a pair of residual values describing only where two compared
// values disagree. Left holds the disagreeing substructure of the first
// input, Right of the second.
type Result struct {
	Left  Value
	Right Value
}

// Diff deeply compares a and b and returns the residual pair, or nil when
// they are equal by value. Values of different dynamic shapes are returned
// whole; no partial comparison happens across mismatched shapes. The walk is
// positional for arrays: an insert or delete degrades to per-index
// mismatches, and when lengths differ the trailing elements of the longer
// input land only in the longer side's residual.
func Diff(a, b Value) *Result {
	if Equal(a, b) {
		return nil
	}
	if a.Kind != b.Kind {
		return &Result{Left: a, Right: b}
	}
	switch a.Kind {
	case KindObject:
		return objectDiff(a, b)
	case KindArray:
		return arrayDiff(a, b)
	}
	return &Result{Left: a, Right: b}
}

func objectDiff(a, b Value) *Result {
	left := Value{Kind: KindObject}
	right := Value{Kind: KindObject}

	for _, m := range a.Members {
		other, ok := b.member(m.Key)
		if !ok {
			left.Members = append(left.Members, m)
			continue
		}
		if r := Diff(m.Value, other); r != nil {
			left.Members = append(left.Members, Member{Key: m.Key, Value: r.Left})
			right.Members = append(right.Members, Member{Key: m.Key, Value: r.Right})
		}
	}
	for _, m := range b.Members {
		if _, ok := a.member(m.Key); !ok {
			right.Members = append(right.Members, m)
		}
	}
	return &Result{Left: left, Right: right}
}

func arrayDiff(a, b Value) *Result {
	left := Value{Kind: KindArray}
	right := Value{Kind: KindArray}

	n := min(len(a.Items), len(b.Items))
	for i := 0; i < n; i++ {
		if r := Diff(a.Items[i], b.Items[i]); r != nil {
			left.Items = append(left.Items, r.Left)
			right.Items = append(right.Items, r.Right)
		}
	}

	// Extra trailing elements go only to the longer side's residual; the
	// shorter side gets no placeholder for them.
	if len(a.Items) > n {
		left.Items = append(left.Items, a.Items[n:]...)
	}
	if len(b.Items) > n {
		right.Items = append(right.Items, b.Items[n:]...)
	}
	return &Result{Left: left, Right: right}
}
