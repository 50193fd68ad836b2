package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"runtime"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jthorne/dnsauthd/internal/dns"
	"github.com/jthorne/dnsauthd/internal/edns"
	"github.com/jthorne/dnsauthd/internal/pool"
)

// Socket buffer sizes for high throughput (4MB each).
const (
	socketRecvBufferSize = 4 * 1024 * 1024
	socketSendBufferSize = 4 * 1024 * 1024
)

// DefaultWorkersPerSocket is the default number of worker goroutines per UDP socket.
const DefaultWorkersPerSocket = 1024

// bufferPool reduces allocations for incoming UDP packets. Each buffer
// is sized for the maximum incoming DNS message.
var bufferPool = pool.New(func() *[]byte {
	buf := make([]byte, dns.MaxIncomingMessageSize)
	return &buf
})

// UDPServer handles DNS queries over UDP.
//
// Features:
//   - Multiple sockets with SO_REUSEPORT for kernel-level load balancing
//   - Fixed worker pool per socket (no goroutine spawn per packet)
//   - Buffer pooling to reduce GC pressure under load
//   - Non-blocking receive path (drops packets if workers are busy)
//   - EDNS-aware response truncation, clamped to MaxUDPPayload
//
// Goroutine Lifecycle:
//
// For each CPU core, Run() spawns:
//   - 1 receiver goroutine: reads incoming UDP packets from the socket
//   - N worker goroutines: resolve and write responses (N = WorkersPerSocket)
//
// All goroutines share the same context and exit when it is cancelled.
// Graceful shutdown waits up to 5 seconds for in-flight queries.
type UDPServer struct {
	Logger           *slog.Logger
	Handler          *QueryHandler
	MaxUDPPayload    uint16 // server's advertised/enforced UDP response ceiling
	WorkersPerSocket int    // default DefaultWorkersPerSocket

	conns []*net.UDPConn
	wg    sync.WaitGroup
}

// packet is a received UDP datagram pending processing.
type packet struct {
	bufPtr *[]byte
	n      int
	peer   *net.UDPAddr
}

// Run starts the UDP server with multiple sockets using SO_REUSEPORT.
// Each socket has its own fixed pool of worker goroutines. Returns an
// error only if socket creation fails; otherwise blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *UDPServer) Run(ctx context.Context, addr string) error {
	if s.WorkersPerSocket <= 0 {
		s.WorkersPerSocket = DefaultWorkersPerSocket
	}
	if s.MaxUDPPayload == 0 {
		s.MaxUDPPayload = dns.EDNSDefaultUDPPayloadSize
	}

	socketCount := runtime.NumCPU()
	s.conns = make([]*net.UDPConn, 0, socketCount)

	for range socketCount {
		conn, err := listenReusePort(addr)
		if err != nil {
			for _, c := range s.conns {
				_ = c.Close()
			}
			return err
		}
		_ = conn.SetReadBuffer(socketRecvBufferSize)
		_ = conn.SetWriteBuffer(socketSendBufferSize)
		s.conns = append(s.conns, conn)

		packetCh := make(chan packet, s.WorkersPerSocket*2)
		c := conn
		ch := packetCh

		s.wg.Go(func() { s.recvLoop(ctx, c, ch) })
		for range s.WorkersPerSocket {
			s.wg.Go(func() { s.workerLoop(ctx, c, ch) })
		}
	}

	<-ctx.Done()
	return s.Stop(5 * time.Second)
}

// RunOnConn runs the server on an already-open UDP connection, with a
// single receiver/worker-pool set. Useful for tests and for callers
// that manage their own socket instead of SO_REUSEPORT fan-out.
func (s *UDPServer) RunOnConn(ctx context.Context, conn *net.UDPConn) {
	if s.WorkersPerSocket <= 0 {
		s.WorkersPerSocket = DefaultWorkersPerSocket
	}
	if s.MaxUDPPayload == 0 {
		s.MaxUDPPayload = dns.EDNSDefaultUDPPayloadSize
	}

	s.conns = []*net.UDPConn{conn}
	packetCh := make(chan packet, s.WorkersPerSocket)

	s.wg.Go(func() { s.recvLoop(ctx, conn, packetCh) })
	for range s.WorkersPerSocket {
		s.wg.Go(func() { s.workerLoop(ctx, conn, packetCh) })
	}
}

// recvLoop reads packets from the socket and dispatches to workers.
// Never blocks on worker availability; drops packets if all workers
// are busy, to keep the receive path fast.
func (s *UDPServer) recvLoop(ctx context.Context, conn *net.UDPConn, out chan<- packet) {
	for {
		bufPtr := bufferPool.Get()
		buf := *bufPtr

		n, peer, err := conn.ReadFromUDP(buf)
		if err != nil {
			bufferPool.Put(bufPtr)
			return
		}

		select {
		case out <- packet{bufPtr, n, peer}:
		default:
			bufferPool.Put(bufPtr)
		}
	}
}

func (s *UDPServer) workerLoop(ctx context.Context, conn *net.UDPConn, in <-chan packet) {
	for {
		select {
		case <-ctx.Done():
			return
		case pkt, ok := <-in:
			if !ok {
				return
			}
			s.handlePacket(ctx, conn, pkt)
		}
	}
}

// handlePacket resolves one datagram and writes the (possibly
// truncated) response back to the peer. A fresh ConnState is used per
// packet: UDP is connectionless, so there is no keepalive to persist.
func (s *UDPServer) handlePacket(ctx context.Context, conn *net.UDPConn, p packet) {
	defer bufferPool.Put(p.bufPtr)

	if s.Handler == nil {
		return
	}

	payload := (*p.bufPtr)[:p.n]
	connState := edns.NewConnState(p.peer.IP)
	res := s.Handler.Handle(ctx, "udp", p.peer.IP, connState, payload)

	if res.Response == nil {
		if len(res.RawFallback) > 0 {
			_, _ = conn.WriteToUDP(res.RawFallback, p.peer)
		}
		return
	}

	// The response's EDNS state advertises the server's own payload size;
	// the client's advertised size is on the request.
	limitMsg := res.Response
	if req, err := dns.DecodeMessage(payload); err == nil {
		limitMsg = req
	}
	maxSize := clientUDPLimit(limitMsg, s.MaxUDPPayload)
	res.Response.Truncate(int(maxSize))
	b, err := res.Response.Marshal()
	if err != nil {
		return
	}
	_, _ = conn.WriteToUDP(b, p.peer)
}

// clientUDPLimit is the smaller of the client's advertised EDNS
// payload size and the server's configured ceiling, or the classic
// 512-byte limit for clients that didn't send EDNS at all.
func clientUDPLimit(resp *dns.Message, serverMax uint16) uint16 {
	if resp.EDNS == nil {
		return dns.DefaultUDPPayloadSize
	}
	limit := resp.EDNS.UDPSize
	if limit == 0 || limit > serverMax {
		limit = serverMax
	}
	if limit < dns.EDNSMinUDPPayloadSize {
		limit = dns.EDNSMinUDPPayloadSize
	}
	return limit
}

// Stop gracefully shuts down the UDP server: closes all sockets and
// waits up to timeout for in-flight goroutines to exit.
func (s *UDPServer) Stop(timeout time.Duration) error {
	for _, c := range s.conns {
		_ = c.Close()
	}

	if timeout <= 0 {
		s.wg.Wait()
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return errors.New("udp server: timeout waiting for goroutines to exit")
	}
}

// listenReusePort creates a UDP socket with SO_REUSEPORT enabled, so
// the kernel load-balances incoming packets across one socket per CPU
// core without userspace coordination.
func listenReusePort(addr string) (*net.UDPConn, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
		},
	}

	pc, err := lc.ListenPacket(context.Background(), "udp", udpAddr.String())
	if err != nil {
		return nil, err
	}

	return pc.(*net.UDPConn), nil
}
