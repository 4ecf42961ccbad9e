package discovery

import (
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"time"
)

// Reply is one answer to a discovery probe
type Reply struct {
	Addr  net.Addr
	Token string
}

// Probe sends the probe token to target (usually a broadcast address) and collects
// replies matching want until timeout elapses or ctx is done
func Probe(ctx context.Context, target, probe, want string, timeout time.Duration) ([]Reply, error) {
	raddr, err := net.ResolveUDPAddr("udp4", target)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if _, err := conn.WriteTo([]byte(probe), raddr); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	var replies []Reply
	buf := make([]byte, maxProbeSize)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return replies, nil
			}
			return replies, err
		}
		token := strings.TrimSpace(string(buf[:n]))
		if want != "" && token != want {
			continue
		}
		replies = append(replies, Reply{Addr: addr, Token: token})
		if ctx.Err() != nil {
			return replies, nil
		}
	}
}
