package framing

// state is one node of the frame state machine. step consumes at most one
// byte and returns the next state.
type state interface {
	name() string
	step(p *Parser) (state, error)
}

type awaitingMarker0 struct{}

func (awaitingMarker0) name() string { return "marker0" }

func (s awaitingMarker0) step(p *Parser) (state, error) {
	b, err := p.readByte()
	if err != nil {
		return s, err
	}
	if b == Marker0 {
		return awaitingMarker1{}, nil
	}
	p.resync(s, 1)
	return s, nil
}

type awaitingMarker1 struct{}

func (awaitingMarker1) name() string { return "marker1" }

// step does not retry a mismatching byte as a marker0 candidate: it is dropped
// together with the marker0 that preceded it.
func (s awaitingMarker1) step(p *Parser) (state, error) {
	b, err := p.readByte()
	if err != nil {
		return s, err
	}
	if b == Marker1 {
		return awaitingLength{}, nil
	}
	p.resync(s, 2)
	return awaitingMarker0{}, nil
}

type awaitingLength struct{}

func (awaitingLength) name() string { return "length" }

func (s awaitingLength) step(p *Parser) (state, error) {
	b, err := p.readByte()
	if err != nil {
		return s, err
	}
	p.length = int(b)
	if p.traceOn {
		p.logger.Tracef("packet len: %d", p.length)
	}
	return awaitingPayload{}, nil
}

type awaitingPayload struct {
	read int
}

func (awaitingPayload) name() string { return "payload" }

func (s awaitingPayload) step(p *Parser) (state, error) {
	if s.read == p.length {
		return packetComplete{}, nil
	}
	b, err := p.readByte()
	if err != nil {
		return s, err
	}
	p.buf[s.read] = b
	return awaitingPayload{read: s.read + 1}, nil
}

type packetComplete struct{}

func (packetComplete) name() string { return "complete" }

func (s packetComplete) step(p *Parser) (state, error) {
	if err := p.emit(); err != nil {
		return s, err
	}
	return awaitingMarker0{}, nil
}

// pending reports how many bytes of an unfinished frame st has consumed.
func pending(st state, length int) int {
	switch s := st.(type) {
	case awaitingMarker1:
		return 1
	case awaitingLength:
		return 2
	case awaitingPayload:
		return HeaderLen + s.read
	case packetComplete:
		return HeaderLen + length
	default:
		return 0
	}
}
