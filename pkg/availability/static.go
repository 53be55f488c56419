package availability

// Gate is the read side of a Monitor. The scan engine depends on this
// instead of the concrete Monitor so a terminal without credentials can be
// wired with a fixed verdict.
type Gate interface {
	Available() bool
}

// Static is a Gate with a fixed verdict.
type Static bool

// Available implements Gate.
func (s Static) Available() bool {
	return bool(s)
}
