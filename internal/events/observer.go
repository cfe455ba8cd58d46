package events

// Observer receives published events.
// Returning an error or panicking never affects the publisher or other observers.
type Observer interface {
	Update(event Event) error
}
