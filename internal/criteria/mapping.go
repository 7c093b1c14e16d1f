package criteria

// OutcomeCriteria groups a unit's criterion codes under one learning outcome.
type OutcomeCriteria struct {
	Outcome string
	Codes   []Code
}

// InferMapping expands the codes detected in a brief into the full mapped set
// for grading. Detected codes are kept as-is. For each learning outcome where
// the detected set includes at least one Merit code of that outcome, the
// outcome's Distinction codes are pulled in too (a Merit-level task implies
// the Distinction stretch for the same outcome). Distinction codes are never
// pulled across outcome boundaries.
func InferMapping(unit []OutcomeCriteria, detected []Code) []Code {
	detectedSet := make(map[Code]struct{}, len(detected))
	for _, c := range detected {
		detectedSet[c] = struct{}{}
	}

	out := make([]Code, 0, len(detected))
	out = append(out, detected...)

	for _, oc := range unit {
		meritPresent := false
		for _, c := range oc.Codes {
			if c.Band != BandMerit {
				continue
			}
			if _, ok := detectedSet[c]; ok {
				meritPresent = true
				break
			}
		}
		if !meritPresent {
			continue
		}
		for _, c := range oc.Codes {
			if c.Band != BandDistinction {
				continue
			}
			if _, ok := detectedSet[c]; ok {
				continue
			}
			detectedSet[c] = struct{}{}
			out = append(out, c)
		}
	}

	Sort(out)
	return out
}
