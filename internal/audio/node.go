package audio

// Node is a vertex of a Context's audio graph.
type Node interface {
	// Connect routes this node's output into dst.
	Connect(dst Node) error
	// Disconnect removes every outgoing connection of this node.
	Disconnect()

	base() *node
}

// filler renders one block of a node's output.
type filler interface {
	fill(buf []float64)
	params() []*Param
}

type node struct {
	ctx     *Context
	self    filler
	inputs  []Node
	outputs []Node
	sink    bool // accepts inputs

	buf   []float64
	block uint64
}

func (n *node) base() *node { return n }

// InputCount returns how many nodes feed this one.
func (n *node) InputCount() int { return len(n.inputs) }

// Connect routes this node's output into dst. Only gain nodes and the
// destination accept inputs, and both ends must share a context.
func (n *node) Connect(dst Node) error {
	d := dst.base()
	if !d.sink || d.ctx != n.ctx {
		return ErrInvalidState
	}
	if n.ctx.state == StateClosed {
		return ErrClosed
	}
	d.inputs = append(d.inputs, n.self.(Node))
	n.outputs = append(n.outputs, dst)
	return nil
}

// Disconnect removes every outgoing connection of this node.
func (n *node) Disconnect() {
	me := n.self.(Node)
	for _, out := range n.outputs {
		d := out.base()
		for i, in := range d.inputs {
			if in == me {
				d.inputs = append(d.inputs[:i], d.inputs[i+1:]...)
				break
			}
		}
	}
	n.outputs = nil
}

// pull renders the node for the context's current block at most once.
func (n *node) pull(count int) []float64 {
	if n.block == n.ctx.block && len(n.buf) == count {
		return n.buf
	}
	n.block = n.ctx.block
	if cap(n.buf) < count {
		n.buf = make([]float64, count)
	}
	n.buf = n.buf[:count]
	clear(n.buf)
	n.self.fill(n.buf)
	return n.buf
}

func (n *node) mixInputs(buf []float64) {
	for _, in := range n.inputs {
		for i, v := range in.base().pull(len(buf)) {
			buf[i] += v
		}
	}
}

// GainNode multiplies the sum of its inputs by its Gain parameter.
type GainNode struct {
	node
	Gain *Param
}

func (g *GainNode) fill(buf []float64) {
	g.mixInputs(buf)
	for i := range buf {
		buf[i] *= g.Gain.ValueAt(g.ctx.sampleTime(i))
	}
}

func (g *GainNode) params() []*Param { return []*Param{g.Gain} }

// DestinationNode is the output bus of a Context.
type DestinationNode struct {
	node
}

func (d *DestinationNode) fill(buf []float64) {
	d.mixInputs(buf)
}

func (d *DestinationNode) params() []*Param { return nil }
