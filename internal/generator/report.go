package generator

import "fmt"

type FloorRecord struct {
	ID            string `json:"id"`
	Number        int    `json:"number"`
	TotalSubUnits int    `json:"total_sub_units"`
}

type UnitRecord struct {
	ID       string `json:"id"`
	FloorID  string `json:"floor_id"`
	Floor    int    `json:"floor"`
	PlotNo   string `json:"plot_no"`
	UnitType string `json:"unit_type"`
}

// Cursor points at the step that was executing when a run stopped.
// Entry is a 0-based index into the floor's mix, Instance is 1-based.
// FloorID is set once the cursor's floor exists remotely.
type Cursor struct {
	Floor    int    `json:"floor"`
	Entry    int    `json:"entry"`
	Instance int    `json:"instance"`
	FloorID  string `json:"floor_id,omitempty"`
}

// Report is the record of everything one batch created.
type Report struct {
	BuildingID         string        `json:"building_id"`
	Floors             []FloorRecord `json:"floors"`
	Units              []UnitRecord  `json:"units"`
	Cursor             Cursor        `json:"cursor"`
	Completed          bool          `json:"completed"`
	RolledBack         bool          `json:"rolled_back"`
	CompensationErrors []string      `json:"compensation_errors,omitempty"`
}

func (r *Report) FloorsCreated() int { return len(r.Floors) }

func (r *Report) UnitsCreated() int { return len(r.Units) }

// clone copies the report so a resumed run never mutates the caller's value.
func (r *Report) clone() *Report {
	out := *r
	out.Floors = append([]FloorRecord(nil), r.Floors...)
	out.Units = append([]UnitRecord(nil), r.Units...)
	out.CompensationErrors = append([]string(nil), r.CompensationErrors...)
	return &out
}

// Resumable reports whether a run for buildingID may continue from r. Every
// unit must hang off a recorded floor, and the cursor floor id, when set,
// must be the recorded floor of the cursor's index.
func (r *Report) Resumable(buildingID string) error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: no prior report", ErrNotResumable)
	case r.Completed:
		return fmt.Errorf("%w: run already completed", ErrNotResumable)
	case r.RolledBack:
		return fmt.Errorf("%w: run was rolled back", ErrNotResumable)
	case r.BuildingID != buildingID:
		return fmt.Errorf("%w: report belongs to building %q", ErrNotResumable, r.BuildingID)
	}

	floorByID := make(map[string]int, len(r.Floors))
	for _, f := range r.Floors {
		if f.ID == "" || f.Number < 1 {
			return fmt.Errorf("%w: floor %d has no id", ErrNotResumable, f.Number)
		}
		if _, dup := floorByID[f.ID]; dup {
			return fmt.Errorf("%w: floor id %q recorded twice", ErrNotResumable, f.ID)
		}
		if f.Number > r.Cursor.Floor || (f.Number == r.Cursor.Floor && f.ID != r.Cursor.FloorID) {
			return fmt.Errorf("%w: floor %d is past the cursor", ErrNotResumable, f.Number)
		}
		floorByID[f.ID] = f.Number
	}
	for _, u := range r.Units {
		number, ok := floorByID[u.FloorID]
		if !ok || number != u.Floor {
			return fmt.Errorf("%w: unit %q is not on a recorded floor", ErrNotResumable, u.PlotNo)
		}
	}
	if r.Cursor.FloorID != "" {
		if number, ok := floorByID[r.Cursor.FloorID]; !ok || number != r.Cursor.Floor {
			return fmt.Errorf("%w: cursor floor %q was not created by this run", ErrNotResumable, r.Cursor.FloorID)
		}
	}
	return nil
}

// PlotLabel is the deterministic plot number of one generated unit.
func PlotLabel(floor int, unitType string, instance int) string {
	return fmt.Sprintf("%d-%s-%d", floor, unitType, instance)
}
