// Package transport hosts the UDP and TCP listeners that feed the
// resolver, grounded on
// _examples/straticus1-dnsscienced/internal/transport/fast_udp.go's
// read-loop-plus-worker-dispatch shape and
// _examples/original_source/src/servers/tcp.rs/udp.rs's one-shot
// per-datagram/per-connection handling.
package transport

import (
	"context"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"github.com/dnsscience/authdnsd/internal/pool"
	"github.com/dnsscience/authdnsd/internal/ratelimit"
	"github.com/dnsscience/authdnsd/internal/worker"
)

// maxUDPDatagram is the fixed UDP read buffer size per spec.md §4.8:
// sufficient for non-EDNS queries, with anything larger dropped at the
// socket boundary rather than grown to accommodate it.
const maxUDPDatagram = 1024

// UDPServerConfig configures a UDPServer.
type UDPServerConfig struct {
	Addr    string
	Handler worker.Handler
	Pool    *worker.Pool
	Limiter *ratelimit.Limiter
}

// UDPServer is a connectionless datagram listener: every packet is
// handed to the worker pool as a QueryJob rather than processed inline,
// so a flood of queries backs up in the pool's bounded queue instead of
// spawning unbounded goroutines.
type UDPServer struct {
	cfg  UDPServerConfig
	conn *net.UDPConn

	mu      sync.Mutex
	running bool
	done    chan struct{}

	packetsRecv atomic.Uint64
	packetsSent atomic.Uint64
	rateBlocked atomic.Uint64
}

// NewUDPServer builds a UDPServer from cfg.
func NewUDPServer(cfg UDPServerConfig) *UDPServer {
	return &UDPServer{cfg: cfg, done: make(chan struct{})}
}

// Start binds the UDP socket and begins reading. It returns once the
// socket is bound; the read loop runs in its own goroutine.
func (s *UDPServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	addr, err := net.ResolveUDPAddr("udp", s.cfg.Addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}

	s.conn = conn
	s.running = true
	go s.readLoop()
	return nil
}

// Stop closes the socket, unblocking the read loop.
func (s *UDPServer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	close(s.done)
	err := s.conn.Close()
	s.running = false
	return err
}

func (s *UDPServer) readLoop() {
	buf := make([]byte, maxUDPDatagram)
	for {
		select {
		case <-s.done:
			return
		default:
		}

		n, addr, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				continue
			}
		}
		s.packetsRecv.Add(1)

		if s.cfg.Limiter != nil && !s.cfg.Limiter.Allow(addr.IP, false) {
			s.rateBlocked.Add(1)
			continue
		}

		raw := pool.GetMediumBuffer()[:n]
		copy(raw, buf[:n])

		job := worker.QueryJob{
			Raw: raw,
			TCP: false,
			Handle: func(raw []byte, tcp bool) []byte {
				defer pool.PutMediumBuffer(raw[:cap(raw)])
				return s.cfg.Handler(raw, tcp)
			},
			Deliver: func(resp []byte) error {
				_, err := s.conn.WriteToUDP(resp, addr)
				if err == nil {
					s.packetsSent.Add(1)
				}
				return err
			},
		}

		if err := s.cfg.Pool.SubmitAsync(context.Background(), job); err != nil {
			log.Printf("transport: udp query dropped: %v", err)
		}
	}
}

// Stats is a snapshot of UDP listener activity.
type Stats struct {
	PacketsRecv uint64
	PacketsSent uint64
	RateBlocked uint64
}

// Stats returns the current UDP listener counters.
func (s *UDPServer) Stats() Stats {
	return Stats{
		PacketsRecv: s.packetsRecv.Load(),
		PacketsSent: s.packetsSent.Load(),
		RateBlocked: s.rateBlocked.Load(),
	}
}
