package bus

// Event types published by an environment.
const (
	TypeEpisodeReset      = "episode_reset"
	TypeCheckpointReached = "checkpoint_reached"
	TypeLapCompleted      = "lap_completed"
	TypeCollision         = "collision"
	TypeTruncated         = "truncated"

	Wildcard = "*"
)

// Event is an immutable notification. Source names the publisher (an
// environment or session id), Step is the step counter when it was raised.
type Event struct {
	Type   string
	Source string
	Step   int
	Data   any
}

func NewEvent(typ, source string, step int, data any) Event {
	return Event{Type: typ, Source: source, Step: step, Data: data}
}
