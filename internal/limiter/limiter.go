package limiter

// Slots caps the number of analyses running at once. Each analysis holds a
// slot from acquisition through composition.
type Slots struct {
    sem chan struct{}
}

func New(max int) *Slots {
    if max <= 0 { max = 2 }
    return &Slots{sem: make(chan struct{}, max)}
}

// Allow tries to reserve a slot. Returns a release function and true if
// allowed; otherwise a no-op and false.
func (s *Slots) Allow() (func(), bool) {
    select {
    case s.sem <- struct{}{}:
        return func() { <-s.sem }, true
    default:
        return func(){}, false
    }
}
