package locality

// AttachZScores scores every record against the standardizer: BsStd takes
// the SD estimate at the record's fitted value and ZScore the residual
// divided by it. The table is left sorted by z-score descending. The return
// value is the number of non-finite z-scores produced, so callers can
// surface zero or undefined SD estimates instead of letting NaN flow into
// FDR counts silently.
func AttachZScores(t Table, s *Standardizer) int {
	nonFinite := 0
	for i := range t {
		t[i].BsStd = s.SD(t[i].Fitted)
		t[i].ZScore = t[i].Resid / t[i].BsStd
		if !isFinite(t[i].ZScore) {
			nonFinite++
		}
	}
	t.SortByZScoreDesc()
	return nonFinite
}
