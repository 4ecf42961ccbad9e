package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mouse-relay/internal/commands"
	"github.com/mouse-relay/internal/config"
)

// Handler processes one command datagram
type Handler interface {
	Handle(ctx context.Context, raw string) commands.Outcome
}

// Server receives command datagrams and hands them to the dispatcher one at a time
type Server struct {
	addr        string
	maxDatagram int
	allowed     []*net.IPNet
	handler     Handler
	logger      *zap.Logger

	mu       sync.Mutex
	conn     net.PacketConn
	stopChan chan struct{}
	stopOnce sync.Once

	stats counters
}

type counters struct {
	received atomic.Uint64
	rejected atomic.Uint64
	failed   atomic.Uint64
}

// Stats is a snapshot of the receive loop counters
type Stats struct {
	Received uint64
	Rejected uint64
	Failed   uint64
}

// NewServer creates a command server
func NewServer(cfg *config.Config, handler Handler, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make([]*net.IPNet, 0, len(cfg.Network.Command.AllowedCIDRs))
	for _, cidr := range cfg.Network.Command.AllowedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed CIDR %q: %w", cidr, err)
		}
		allowed = append(allowed, network)
	}
	return &Server{
		addr:        net.JoinHostPort(cfg.Network.Host, strconv.Itoa(cfg.Network.Command.Port)),
		maxDatagram: cfg.Network.Command.MaxDatagram,
		allowed:     allowed,
		handler:     handler,
		logger:      logger.Named("command"),
		stopChan:    make(chan struct{}),
	}, nil
}

// Listen binds the command socket. A bind failure must abort startup.
func (s *Server) Listen() error {
	conn, err := net.ListenPacket("udp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind command channel on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.logger.Info("Command channel listening", zap.Stringer("addr", conn.LocalAddr()))
	return nil
}

// Addr returns the bound address, or nil before Listen
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Serve runs the receive loop until ctx is cancelled or Close is called. Each
// datagram is handled to completion before the next one is read.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return errors.New("command server is not listening")
	}

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.stopChan:
		}
	}()

	buf := make([]byte, s.maxDatagram)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if s.stopped() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.stats.failed.Add(1)
			s.logger.Warn("Failed to read datagram", zap.Error(err))
			continue
		}
		if n == 0 {
			continue
		}
		s.stats.received.Add(1)

		if !s.isAllowed(addr) {
			s.stats.rejected.Add(1)
			s.logger.Warn("Rejected datagram (not in allowed CIDRs)", zap.Stringer("from", addr))
			continue
		}

		s.handler.Handle(ctx, string(buf[:n]))
	}
}

// ListenAndServe binds and serves
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// isAllowed checks if the sender is inside an allowed CIDR
func (s *Server) isAllowed(addr net.Addr) bool {
	var ip net.IP
	switch a := addr.(type) {
	case *net.UDPAddr:
		ip = a.IP
	default:
		host, _, err := net.SplitHostPort(addr.String())
		if err != nil {
			return false
		}
		ip = net.ParseIP(host)
	}
	if ip == nil {
		return false
	}

	for _, network := range s.allowed {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// Stats returns the receive loop counters
func (s *Server) Stats() Stats {
	return Stats{
		Received: s.stats.received.Load(),
		Rejected: s.stats.rejected.Load(),
		Failed:   s.stats.failed.Load(),
	}
}

func (s *Server) stopped() bool {
	select {
	case <-s.stopChan:
		return true
	default:
		return false
	}
}

// Close stops the receive loop and releases the socket. It is safe to call more than once.
func (s *Server) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.conn != nil {
			err = s.conn.Close()
		}
	})
	return err
}
