package ports

import (
	"context"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/events"
	"github.com/modbotics/brain/mcu"
)

// A ConfigChange is the payload of a port's config-changed event. Config
// is nil in the pre-notification sent before a driver swap, and in the
// final notification when the port ends up unconfigured.
type ConfigChange struct {
	Port   *Port
	Config *config.Driver
}

// A Port is one physical slot of the MCU. It owns the driver bound to it
// and two event registries that survive driver swaps: status-changed
// events proxied from the current driver, and config-changed events
// framing every reconfiguration.
type Port struct {
	handler *Handler
	index   int
	logger  golog.Logger

	statusChanged events.Aggregator[*Port]
	configChanged events.Aggregator[ConfigChange]

	mu       sync.Mutex
	driver   Driver
	cfg      *config.Driver
	proxySub events.Subscription
}

// Index returns the port's 1-based index within its class.
func (p *Port) Index() int {
	return p.index
}

// Class returns the port's class.
func (p *Port) Class() mcu.PortClass {
	return p.handler.class
}

// Driver returns the bound driver. It is never nil; unconfigured ports
// are bound to the null driver.
func (p *Port) Driver() Driver {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.driver
}

// Motor returns the bound driver's motor view. When the bound driver is
// not a motor, the returned driver behaves like an unconfigured port's.
func (p *Port) Motor() MotorDriver {
	if md, ok := p.Driver().(MotorDriver); ok {
		return md
	}
	return &nullDriver{port: p}
}

// Sensor returns the bound driver's sensor view. When the bound driver
// is not a sensor, the returned driver behaves like an unconfigured
// port's.
func (p *Port) Sensor() SensorDriver {
	if sd, ok := p.Driver().(SensorDriver); ok {
		return sd
	}
	return &nullDriver{port: p}
}

// Config returns the configuration applied by the last successful
// Configure, or nil when the port is unconfigured.
func (p *Port) Config() *config.Driver {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}

// Configured reports whether a real driver is bound.
func (p *Port) Configured() bool {
	return p.Config() != nil
}

// OnStatusChanged returns the registry notified whenever the bound
// driver broadcasts a status change. Subscriptions survive driver swaps.
func (p *Port) OnStatusChanged() *events.Aggregator[*Port] {
	return &p.statusChanged
}

// OnConfigChanged returns the registry notified around driver swaps:
// once with a nil config before the swap so subscribers can detach, and
// once with the final config after.
func (p *Port) OnConfigChanged() *events.Aggregator[ConfigChange] {
	return &p.configChanged
}

// Configure binds the driver described by cfg, or the null driver when
// cfg is nil. The hardware port type is programmed exactly once, between
// the two config-changed notifications. On failure the port is left
// unconfigured and the second notification carries a nil config.
func (p *Port) Configure(ctx context.Context, cfg *config.Driver) error {
	p.configChanged.Invoke(ConfigChange{Port: p})

	old := p.detach()
	if err := old.Close(ctx); err != nil {
		p.logger.Warnw("error closing previous driver", "class", p.Class(), "port", p.index, "error", err)
	}

	name := DefaultDriverName
	if cfg != nil {
		name = cfg.Name
	}

	drv, err := p.buildDriver(ctx, name, cfg)
	if err != nil {
		p.bind(&nullDriver{port: p}, nil)
		p.configChanged.Invoke(ConfigChange{Port: p})
		return err
	}

	p.bind(drv, cfg)
	p.configChanged.Invoke(ConfigChange{Port: p, Config: cfg})
	p.logger.Debugw("port configured", "class", p.Class(), "port", p.index, "driver", name)
	return nil
}

// Uninitialize returns the port to the unconfigured state, programming
// the hardware port type back to the null driver's.
func (p *Port) Uninitialize(ctx context.Context) error {
	return p.Configure(ctx, nil)
}

// UpdateStatus feeds a raw status payload to the bound driver. The
// status poller calls this for every configured port.
func (p *Port) UpdateStatus(data []byte) error {
	p.mu.Lock()
	drv := p.driver
	p.mu.Unlock()
	return drv.UpdateStatus(data)
}

// ReadValue reads the port's raw status payload from the hardware.
// Drivers use it to implement their pull path.
func (p *Port) ReadValue(ctx context.Context) ([]byte, error) {
	data, err := p.handler.iface.PortValue(ctx, p.Class(), p.index)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s port %d", p.Class(), p.index)
	}
	return data, nil
}

func (p *Port) buildDriver(ctx context.Context, name string, cfg *config.Driver) (Driver, error) {
	factory, ok := p.handler.factories[name]
	if !ok {
		return nil, NewUnknownDriverError(name)
	}

	drv, err := factory(p, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "constructing %s driver for %s port %d", name, p.Class(), p.index)
	}

	code, ok := p.handler.typeCodes[drv.TypeName()]
	if !ok {
		return nil, errors.Errorf("driver %q has no hardware port type", drv.TypeName())
	}
	if err := p.handler.iface.SetPortType(ctx, p.Class(), p.index, code); err != nil {
		return nil, errors.Wrapf(err, "programming %s port %d type", p.Class(), p.index)
	}

	if err := drv.OnPortTypeSet(ctx); err != nil {
		return nil, errors.Wrapf(err, "initializing %s driver on %s port %d", name, p.Class(), p.index)
	}
	return drv, nil
}

// detach unhooks the status proxy and returns the old driver for
// closing. The driver field keeps its value so Driver never observes
// nil.
func (p *Port) detach() Driver {
	p.mu.Lock()
	defer p.mu.Unlock()
	old := p.driver
	old.StatusChanged().Unsubscribe(p.proxySub)
	return old
}

func (p *Port) bind(drv Driver, cfg *config.Driver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.driver = drv
	p.cfg = cfg
	p.proxySub = drv.StatusChanged().Subscribe(func(*Port) {
		p.statusChanged.Invoke(p)
	})
}
