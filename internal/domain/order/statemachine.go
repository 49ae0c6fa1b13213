package order

// Transition tables for orders and items. Every mutation path consults
// these via ValidateOrderTransition/ValidateItemTransition; there is no
// other place where a status change is decided.
//
// Requesting the state the entity is already in is rejected like any other
// illegal move: callers must be explicit, and a no-op "success" would mask
// races between stale clients.
var orderTransitions = map[Status][]Status{
	StatusPending:   {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusServed, StatusCancelled},
	StatusServed:    {StatusCompleted},
	StatusCompleted: {},
	StatusCancelled: {},
}

var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemPending:   {ItemPreparing},
	ItemPreparing: {ItemReady},
	ItemReady:     {ItemServed},
	ItemServed:    {},
}

// ValidateOrderTransition returns nil when requested is a legal next status
// for an order currently in current, and an *InvalidTransitionError
// otherwise. It is pure; applying the transition is the caller's job.
func ValidateOrderTransition(current, requested Status) error {
	for _, next := range orderTransitions[current] {
		if next == requested {
			return nil
		}
	}
	return &InvalidTransitionError{
		Entity:    "order",
		Current:   string(current),
		Requested: string(requested),
	}
}

// ValidateItemTransition is the line-item counterpart of
// ValidateOrderTransition.
func ValidateItemTransition(current, requested ItemStatus) error {
	for _, next := range itemTransitions[current] {
		if next == requested {
			return nil
		}
	}
	return &InvalidTransitionError{
		Entity:    "item",
		Current:   string(current),
		Requested: string(requested),
	}
}
