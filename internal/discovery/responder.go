// Package discovery lets clients on the local network find the relay.
//
// The Responder answers a fixed probe datagram with a fixed identification token,
// so a client can broadcast the probe and learn the relay's address from the reply's
// source. The Advertiser optionally publishes the command channel over mDNS.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mouse-relay/internal/config"
)

// maxProbeSize bounds a single probe read
const maxProbeSize = 1024

// Responder answers discovery probes
type Responder struct {
	addr   string
	probe  string
	reply  []byte
	logger *zap.Logger

	mu       sync.Mutex
	conn     net.PacketConn
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewResponder creates a responder for the configured discovery channel
func NewResponder(cfg *config.Config, logger *zap.Logger) *Responder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Responder{
		addr:     net.JoinHostPort(cfg.Network.Host, strconv.Itoa(cfg.Network.Discovery.Port)),
		probe:    strings.TrimSpace(cfg.Network.Discovery.Probe),
		reply:    []byte(cfg.Network.Discovery.Reply),
		logger:   logger.Named("discovery"),
		stopChan: make(chan struct{}),
	}
}

// Listen binds the discovery socket. A bind failure must abort startup.
func (r *Responder) Listen() error {
	conn, err := net.ListenPacket("udp", r.addr)
	if err != nil {
		return fmt.Errorf("failed to bind discovery channel on %s: %w", r.addr, err)
	}
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	r.logger.Info("Discovery channel listening", zap.Stringer("addr", conn.LocalAddr()))
	return nil
}

// Addr returns the bound address, or nil before Listen
func (r *Responder) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	return r.conn.LocalAddr()
}

// Serve answers probes until ctx is cancelled or Close is called
func (r *Responder) Serve(ctx context.Context) error {
	r.mu.Lock()
	conn := r.conn
	r.mu.Unlock()
	if conn == nil {
		return errors.New("discovery responder is not listening")
	}

	go func() {
		select {
		case <-ctx.Done():
			r.Close()
		case <-r.stopChan:
		}
	}()

	buf := make([]byte, maxProbeSize)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if r.stopped() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			r.logger.Warn("Failed to read probe", zap.Error(err))
			continue
		}

		if strings.TrimSpace(string(buf[:n])) != r.probe {
			continue
		}

		if _, err := conn.WriteTo(r.reply, addr); err != nil {
			r.logger.Warn("Failed to answer probe", zap.Stringer("to", addr), zap.Error(err))
			continue
		}
		r.logger.Debug("Answered discovery probe", zap.Stringer("to", addr))
	}
}

func (r *Responder) stopped() bool {
	select {
	case <-r.stopChan:
		return true
	default:
		return false
	}
}

// Close stops the responder. It is safe to call more than once.
func (r *Responder) Close() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.stopChan)
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.conn != nil {
			err = r.conn.Close()
		}
	})
	return err
}
