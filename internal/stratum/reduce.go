package stratum

import "github.com/samply/prism/internal/prismerr"

// Reduce folds a measure report into Stratifiers. For each group, for each
// stratifier, the first code.text is the criterion key; for each stratum
// under it, value.text is the stratum key and the first population's
// count is the integer to harvest. Criterion keys recurring across groups
// are combined by summing matching stratum counts.
//
// A stratifier with no code entry, or a stratum with an empty population
// list, fails the whole reduction with a ParseError. A stratifier with no
// strata produces an empty Counts for that criterion.
func Reduce(report MeasureReport) (Stratifiers, error) {
	acc := make(Stratifiers)

	for _, group := range report.Group {
		for _, s := range group.Stratifier {
			if len(s.Code) == 0 {
				return nil, prismerr.NewParseError("stratifier has no code entry")
			}
			key := s.Code[0].Text

			counts := make(Counts, len(s.Stratum))
			for _, st := range s.Stratum {
				if len(st.Population) == 0 {
					return nil, prismerr.NewParseError("stratum has empty population list")
				}
				counts[st.Value.Text] = st.Population[0].Count
			}

			if existing, ok := acc[key]; ok {
				acc[key] = CombineCounts(existing, counts)
			} else {
				acc[key] = counts
			}
		}
	}

	return acc, nil
}
