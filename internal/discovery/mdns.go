package discovery

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/mouse-relay/internal/config"
)

// registerFunc matches zeroconf.Register
type registerFunc func(instance, service, domain string, port int, text []string) (shutdowner, error)

type shutdowner interface {
	Shutdown()
}

func zeroconfRegister(instance, service, domain string, port int, text []string) (shutdowner, error) {
	return zeroconf.Register(instance, service, domain, port, text, nil)
}

// Advertiser publishes the command channel over mDNS
type Advertiser struct {
	instance   string
	service    string
	domain     string
	port       int
	text       []string
	register   registerFunc
	logger     *zap.Logger
	server     shutdowner
	InstanceID string
}

// NewAdvertiser creates an advertiser for the configured channels
func NewAdvertiser(cfg *config.Config, logger *zap.Logger) *Advertiser {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	mdns := cfg.Network.Discovery.MDNS
	return &Advertiser{
		instance: mdns.Instance,
		service:  mdns.Service,
		domain:   mdns.Domain,
		port:     cfg.Network.Command.Port,
		text: []string{
			"id=" + id,
			"discovery=" + strconv.Itoa(cfg.Network.Discovery.Port),
			"probe=" + cfg.Network.Discovery.Probe,
		},
		register:   zeroconfRegister,
		logger:     logger.Named("mdns"),
		InstanceID: id,
	}
}

// Start registers the service
func (a *Advertiser) Start() error {
	server, err := a.register(a.instance, a.service, a.domain, a.port, a.text)
	if err != nil {
		return fmt.Errorf("mdns register failed: %w", err)
	}
	a.server = server
	a.logger.Info("Advertised command channel",
		zap.String("instance", a.instance),
		zap.String("service", a.service),
		zap.String("domain", a.domain),
		zap.Int("port", a.port),
		zap.String("id", a.InstanceID))
	return nil
}

// Stop withdraws the advertisement
func (a *Advertiser) Stop() {
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}
