package generator

type EventKind string

const (
	EventFloorCreated EventKind = "floor_created"
	EventUnitCreated  EventKind = "unit_created"
)

// Event is emitted after every successful remote create.
type Event struct {
	Kind          EventKind
	Floor         int
	ID            string
	PlotNo        string
	FloorsCreated int
	UnitsCreated  int
}
