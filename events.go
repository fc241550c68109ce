package disect

const (
	CUT_SPRING_CREATED EventType = iota
	CUT_SPRING_RELEASED
	ELEMENT_DEGENERATE
	PARTICLE_UNSTABLE
	FRAME_COMPLETE
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// CutSpringCreatedEvent reports springs installed across freshly cut edges
type CutSpringCreatedEvent struct {
	Substep int
	Count   int
}

func (e CutSpringCreatedEvent) Type() EventType { return CUT_SPRING_CREATED }

// CutSpringReleasedEvent reports springs that fully relaxed or broke
type CutSpringReleasedEvent struct {
	Substep int
	Count   int
}

func (e CutSpringReleasedEvent) Type() EventType { return CUT_SPRING_RELEASED }

// ElementDegenerateEvent reports an element whose elastic force was clamped
// by the volume floor
type ElementDegenerateEvent struct {
	Substep int
	Element int
}

func (e ElementDegenerateEvent) Type() EventType { return ELEMENT_DEGENERATE }

// ParticleUnstableEvent reports a particle whose velocity went non-finite
// and was reset
type ParticleUnstableEvent struct {
	Substep  int
	Particle int
}

func (e ParticleUnstableEvent) Type() EventType { return PARTICLE_UNSTABLE }

// FrameCompleteEvent marks the end of one reported frame
type FrameCompleteEvent struct {
	Frame int
	Time  float64
}

func (e FrameCompleteEvent) Type() EventType { return FRAME_COMPLETE }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers simulation events during substeps and delivers them to
// subscribers at the end of each frame
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 256),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// emit buffers an event until the next flush
func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
