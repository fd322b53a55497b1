package core

// reconcile.go decides what each valid record does against existing storage.
//
// The snapshot of stored keys is taken once per upload. Rows are classified
// in file order and the set of ids seen in this upload is authoritative for
// later rows, so a repeated id inside one file is written at most once.

// Plan is the reconciled write set of one upload.
type Plan struct {
	Inserts    []Record
	Updates    []Record
	Duplicates []Record
}

// Empty reports whether the plan writes nothing.
func (p *Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0
}

// Reconcile classifies records against the existing id snapshot.
// With update set, ids already stored are merged instead of skipped.
func Reconcile(records []Record, existing map[int64]struct{}, update bool) *Plan {
	plan := &Plan{}
	seen := make(map[int64]struct{}, len(records))

	for _, rec := range records {
		if _, dup := seen[rec.ID]; dup {
			plan.Duplicates = append(plan.Duplicates, rec)
			continue
		}
		seen[rec.ID] = struct{}{}

		_, stored := existing[rec.ID]
		switch {
		case !stored:
			plan.Inserts = append(plan.Inserts, rec)
		case update:
			plan.Updates = append(plan.Updates, rec)
		default:
			plan.Duplicates = append(plan.Duplicates, rec)
		}
	}

	return plan
}
