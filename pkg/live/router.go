package live

// Typed is implemented by decoded frames.
type Typed interface {
	FrameType() string
}

// Router dispatches frames to handlers keyed by frame type.
type Router[F Typed] struct {
	handlers map[string]func(F)
	fallback func(F)
}

func NewRouter[F Typed]() *Router[F] {
	return &Router[F]{handlers: make(map[string]func(F))}
}

// Handle registers fn for frames of type typ, replacing any previous one.
func (r *Router[F]) Handle(typ string, fn func(F)) *Router[F] {
	r.handlers[typ] = fn
	return r
}

// Handler returns the handler registered for typ, or nil.
func (r *Router[F]) Handler(typ string) func(F) {
	return r.handlers[typ]
}

// Fallback registers fn for frame types without a handler.
func (r *Router[F]) Fallback(fn func(F)) *Router[F] {
	r.fallback = fn
	return r
}

// Dispatch routes frame and reports whether a handler ran.
func (r *Router[F]) Dispatch(frame F) bool {
	if fn, ok := r.handlers[frame.FrameType()]; ok {
		fn(frame)
		return true
	}
	if r.fallback != nil {
		r.fallback(frame)
		return true
	}
	return false
}
