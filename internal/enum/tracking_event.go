package enum

type TrackingEventType string

const (
	TrackingEventOpen  TrackingEventType = "open"
	TrackingEventClick TrackingEventType = "click"
)

func (t TrackingEventType) String() string {
	return string(t)
}
