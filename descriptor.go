package seb

// Endpoint is one side of the transport connection.
type Endpoint struct {
	Host string
	Port int
}

// Descriptor describes one incoming exchange. It is created once by the
// transport and is read-only for the lifetime of the exchange.
type Descriptor struct {
	Method   string        // request method, e.g. "GET"
	Path     string        // decoded request path
	RootPath string        // mount prefix, usually empty
	RawQuery []byte        // raw query string bytes
	Scheme   string        // "http" when empty
	Server   *Endpoint     // local endpoint, nil when unknown
	Client   *Endpoint     // remote endpoint, nil when unknown
	Headers  []HeaderField // ordered header list, names may repeat
}
