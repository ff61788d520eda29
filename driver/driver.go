package driver

import (
	"net/netip"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/netsock/errors"
	"github.com/wippyai/netsock/listener"
	"github.com/wippyai/netsock/socket"
)

// Options configures a Driver.
type Options struct {
	// Logger receives driver and socket lifecycle logs. Nil uses socket.Logger().
	Logger *zap.Logger
	// Start is the initial simulated time.
	Start time.Time
	// Config is applied to every socket the driver creates.
	Config socket.Config
	// Sockets is the socket set capacity.
	Sockets int
	// Listeners is the number of bound server ports per protocol.
	Listeners int
	// Backlog is the pending queue length per bound port.
	Backlog int
}

// DefaultOptions returns options for a small modem: 8 sockets, 4 server
// ports per protocol with a backlog of 2.
func DefaultOptions() Options {
	return Options{
		Config:    socket.DefaultConfig(),
		Sockets:   8,
		Listeners: 4,
		Backlog:   2,
	}
}

// Driver plays the modem side of the socket core: it assigns handles,
// pushes arriving connections and bytes, and runs the periodic tick.
// Time only moves through Advance.
type Driver struct {
	log *zap.Logger
	set *socket.Set
	tcp *listener.TCPListener
	udp *listener.UDPListener
	now time.Time
	cfg socket.Config
}

// New creates a driver. The socket config is validated up front.
func New(opts Options) (*Driver, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = socket.Logger()
	}

	d := &Driver{
		log: log.Named("driver"),
		set: socket.NewSet(opts.Sockets),
		tcp: listener.NewTCPListener(opts.Listeners, opts.Backlog),
		udp: listener.NewUDPListener(opts.Listeners, opts.Backlog),
		now: opts.Start,
		cfg: opts.Config,
	}
	d.set.Subscribe(socket.NewLogObserver(log))
	return d, nil
}

func (d *Driver) Set() *socket.Set           { return d.set }
func (d *Driver) TCP() *listener.TCPListener { return d.tcp }
func (d *Driver) UDP() *listener.UDPListener { return d.udp }
func (d *Driver) Now() time.Time             { return d.now }
func (d *Driver) Snapshot() []socket.Status  { return d.set.Snapshot(nil) }

// Advance moves simulated time forward by dt.
func (d *Driver) Advance(dt time.Duration) {
	d.now = d.now.Add(dt)
}

func (d *Driver) has(h socket.Handle) bool {
	_, ok := d.set.SocketType(h)
	return ok
}

// allocate returns the lowest handle not in use, the way the modem
// numbers its sockets.
func (d *Driver) allocate() (socket.Handle, error) {
	// a freed handle may still be named by a queued connection
	d.sweep()
	if d.set.Len() >= d.set.Capacity() {
		return 0, errors.SocketSetFull(d.set.Capacity())
	}
	for h := 0; h <= 0xff; h++ {
		if !d.has(socket.Handle(h)) {
			return socket.Handle(h), nil
		}
	}
	return 0, errors.SocketSetFull(d.set.Capacity())
}

func (d *Driver) newTCP() (*socket.TCPSocket, error) {
	h, err := d.allocate()
	if err != nil {
		return nil, err
	}
	s, err := socket.NewTCPSocketWithConfig(h, d.cfg)
	if err != nil {
		return nil, err
	}
	if _, err := d.set.Add(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (d *Driver) newUDP(local netip.AddrPort) (*socket.UDPSocket, error) {
	h, err := d.allocate()
	if err != nil {
		return nil, err
	}
	s, err := socket.NewUDPSocketWithConfig(h, d.cfg)
	if err != nil {
		return nil, err
	}
	if err := s.Bind(local); err != nil {
		return nil, err
	}
	if _, err := d.set.Add(s); err != nil {
		return nil, err
	}
	return s, nil
}

// ListenTCP creates a TCP server socket bound to port.
func (d *Driver) ListenTCP(port uint16) (socket.Handle, error) {
	s, err := d.newTCP()
	if err != nil {
		return 0, err
	}
	if err := d.tcp.Bind(s.Handle(), port); err != nil {
		d.discard(s.Handle())
		return 0, err
	}
	d.log.Info("tcp listen", zap.Uint8("handle", uint8(s.Handle())), zap.Uint16("port", port))
	return s.Handle(), nil
}

// ListenUDP creates a UDP server socket bound to port on all addresses.
func (d *Driver) ListenUDP(port uint16) (socket.Handle, error) {
	s, err := d.newUDP(netip.AddrPortFrom(netip.IPv4Unspecified(), port))
	if err != nil {
		return 0, err
	}
	s.SetState(socket.UDPStateEstablished)
	if err := d.udp.Bind(s.Handle(), port); err != nil {
		d.discard(s.Handle())
		return 0, err
	}
	d.log.Info("udp listen", zap.Uint8("handle", uint8(s.Handle())), zap.Uint16("port", port))
	return s.Handle(), nil
}

// ConnectTCP reports an inbound TCP connection on port from remote.
// A connected socket is created and queued for Accept. If the port is
// not listening or its backlog is full the attempt is reset and the
// socket discarded.
func (d *Driver) ConnectTCP(port uint16, remote netip.AddrPort) (socket.Handle, error) {
	q, ok := d.tcp.Incoming(port)
	if !ok {
		return 0, errors.Listener("no tcp listener on port %d", port)
	}
	if q.IsFull() {
		d.log.Warn("tcp backlog full, resetting", zap.Uint16("port", port), zap.Stringer("remote", remote))
		return 0, errors.Exhausted(errors.PhaseListener, "tcp backlog")
	}
	s, err := d.newTCP()
	if err != nil {
		return 0, err
	}
	s.SetState(socket.TCPConnected(remote))
	if err := q.Enqueue(s.Handle(), remote); err != nil {
		d.discard(s.Handle())
		return 0, err
	}
	return s.Handle(), nil
}

// PeerUDP reports the first datagram from a new remote on port. A UDP
// socket is created for the peer and queued for GetRemote.
func (d *Driver) PeerUDP(port uint16, remote netip.AddrPort) (socket.Handle, error) {
	q, ok := d.udp.Incoming(port)
	if !ok {
		return 0, errors.Listener("no udp listener on port %d", port)
	}
	if q.IsFull() {
		return 0, errors.Exhausted(errors.PhaseListener, "udp backlog")
	}
	s, err := d.newUDP(netip.AddrPortFrom(netip.IPv4Unspecified(), port))
	if err != nil {
		return 0, err
	}
	s.SetState(socket.UDPStateEstablished)
	if err := q.Enqueue(s.Handle(), remote); err != nil {
		d.discard(s.Handle())
		return 0, err
	}
	return s.Handle(), nil
}

// Deliver pushes bytes read off the modem into handle's receive buffer
// and returns how many fit.
func (d *Driver) Deliver(handle socket.Handle, data []byte) (int, error) {
	ref, err := d.set.GetSocket(handle)
	if err != nil {
		return 0, err
	}
	defer ref.Release()

	s := ref.Value()
	n := s.RxEnqueueSlice(data)
	if n < len(data) {
		d.log.Debug("receive buffer full",
			zap.Uint8("handle", uint8(handle)),
			zap.Int("accepted", n),
			zap.Int("dropped", len(data)-n))
	}
	s.SetAvailableData(max(s.AvailableData()-n, 0))
	return n, nil
}

// Announce records that the modem holds n unread bytes for handle.
func (d *Driver) Announce(handle socket.Handle, n int) error {
	ref, err := d.set.GetSocket(handle)
	if err != nil {
		return err
	}
	defer ref.Release()
	ref.Value().SetAvailableData(n)
	return nil
}

// RemoteClose records that the peer closed handle at the current time.
func (d *Driver) RemoteClose(handle socket.Handle) error {
	ref, err := d.set.GetSocket(handle)
	if err != nil {
		return err
	}
	defer ref.Release()
	ref.Value().ClosedByRemote(d.now)
	return nil
}

// Read drains up to len(buf) received bytes from handle into buf, the
// way the application side would.
func (d *Driver) Read(handle socket.Handle, buf []byte) (int, error) {
	typ, ok := d.set.SocketType(handle)
	if !ok {
		return 0, errors.InvalidSocket(handle)
	}

	var n int
	var err error
	switch typ {
	case socket.TypeTCP:
		err = socket.With(d.set, handle, func(s *socket.TCPSocket) error {
			n, err = s.RecvSlice(buf)
			return err
		})
	default:
		err = socket.With(d.set, handle, func(s *socket.UDPSocket) error {
			n, err = s.RecvSlice(buf)
			return err
		})
	}
	return n, err
}

// TickResult reports what one Tick did.
type TickResult struct {
	// Polled lists sockets whose available data should be re-read.
	Polled []socket.Handle
	// Recycled counts sockets evicted after their read timeout.
	Recycled int
	// Stale counts queued connections dropped because their socket is gone.
	Stale int
}

// Tick runs the periodic driver pass at the current time: it collects
// sockets due an available-data poll, recycles every expired socket and
// then forgets listener state that names a socket no longer in the set.
func (d *Driver) Tick() TickResult {
	var res TickResult
	d.set.EachRef(func(h socket.Handle, ref *socket.Ref[socket.Socket]) bool {
		if ref.Value().ShouldUpdateAvailableData(d.now) {
			res.Polled = append(res.Polled, h)
		}
		return true
	})
	for d.set.Recycle(d.now) {
		res.Recycled++
	}
	res.Stale = d.sweep()
	return res
}

// sweep drops queued connections and listener bindings whose socket has
// left the set, and returns the number of queued connections dropped.
func (d *Driver) sweep() int {
	live := func(p listener.Pending) bool { return d.has(p.Handle) }
	stale := d.tcp.Retain(live) + d.udp.Retain(live)
	if stale > 0 {
		d.log.Debug("dropped stale pending connections", zap.Int("count", stale))
	}

	for _, h := range d.tcp.Handles() {
		if !d.has(h) {
			if err := d.tcp.Unbind(h); err != nil {
				d.log.Error("unbind tcp listener", zap.Uint8("handle", uint8(h)), zap.Error(err))
			}
		}
	}
	for _, h := range d.udp.Handles() {
		if !d.has(h) {
			if err := d.udp.Unbind(h); err != nil {
				d.log.Error("unbind udp listener", zap.Uint8("handle", uint8(h)), zap.Error(err))
			}
		}
	}
	return stale
}

func (d *Driver) discard(handle socket.Handle) {
	if _, err := d.set.Remove(handle); err != nil {
		d.log.Error("discard socket", zap.Uint8("handle", uint8(handle)), zap.Error(err))
	}
}
