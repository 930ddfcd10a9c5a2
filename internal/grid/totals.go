package grid

// Totals caches the per-person, per-week summed hours across visible
// assignments. It is maintained incrementally by the Dataset after every
// applied event or commit.
type Totals struct {
	byPerson map[string]map[string]float64
}

func NewTotals() *Totals {
	return &Totals{byPerson: make(map[string]map[string]float64)}
}

func (t *Totals) Get(personID, week string) float64 {
	return t.byPerson[personID][week]
}

func (t *Totals) Set(personID, week string, hours float64) {
	weeks := t.byPerson[personID]
	if weeks == nil {
		weeks = make(map[string]float64)
		t.byPerson[personID] = weeks
	}
	if hours == 0 {
		delete(weeks, week)
		return
	}
	weeks[week] = hours
}
