package bus

// EventBus is a thread-safe, in-process pub/sub bus that renderers and
// training harnesses use to observe an environment without touching its
// state.
//
// Delivery is synchronous, in the publisher's goroutine, in subscription
// order. Handler errors are joined and returned from Publish; they never
// affect the publisher's numeric outputs.
type EventBus interface {
	// Publish delivers the event to every active subscriber of event.Type.
	Publish(event Event) error
	// PublishWithFilters drops the event without error when any filter
	// rejects it.
	PublishWithFilters(event Event, filters ...EventFilter) error
	// PublishBatch publishes events in order and joins their errors.
	PublishBatch(events ...Event) error

	// Subscribe registers a handler for one event type. The wildcard "*"
	// receives every event.
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
	// Unsubscribe cancels the subscription. It is safe to call with nil.
	Unsubscribe(Subscription) error

	AddObserver(obs EventBusObserver)
	RemoveObserver(obs EventBusObserver)
	// GetMetrics is only updated while at least one observer is registered.
	GetMetrics() EventBusMetrics
}

type (
	EventHandler func(event Event) error
	EventFilter  func(event Event) bool
)

// Subscription is a registered handler. Cancel is idempotent.
type Subscription interface {
	ID() string
	EventType() string
	IsActive() bool
	Cancel() error
}

// EventBusObserver is notified about every publish and delivery.
type EventBusObserver interface {
	OnPublish(event Event)
	OnDelivered(event Event, handlers int, err error)
}

type EventBusMetrics struct {
	Published         uint64
	DeliveredHandlers uint64
	Errors            uint64
	DroppedByFilters  uint64
	SubscribersActive uint64
}
