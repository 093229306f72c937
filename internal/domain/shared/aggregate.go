package shared

// BaseAggregateRoot adds the optimistic lock version and the events raised
// since the aggregate was loaded.
type BaseAggregateRoot struct {
	BaseEntity
	// Version is compared on update and bumped by storage on every write
	Version int
	events  []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// Raise queues an event
func (a *BaseAggregateRoot) Raise(evt DomainEvent) {
	a.events = append(a.events, evt)
}

// Events returns the queued events in the order they were raised
func (a *BaseAggregateRoot) Events() []DomainEvent {
	return a.events
}

// PullEvents returns the queued events and empties the queue
func (a *BaseAggregateRoot) PullEvents() []DomainEvent {
	evts := a.events
	a.events = nil
	return evts
}
