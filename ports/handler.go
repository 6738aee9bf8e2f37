package ports

import (
	"context"
	"sort"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/modbotics/brain/config"
	"github.com/modbotics/brain/mcu"
)

// A DriverFactory builds a driver for a port from its configuration.
// cfg is nil when the null driver is being built.
type DriverFactory func(port *Port, cfg *config.Driver) (Driver, error)

// A Handler owns every port of one class. It maps driver names to
// factories and holds the hardware type codes used when ports are
// configured.
type Handler struct {
	class     mcu.PortClass
	iface     mcu.Interface
	logger    golog.Logger
	factories map[string]DriverFactory
	typeCodes map[string]mcu.PortTypeCode
	ports     []*Port
}

// NewHandler queries the MCU for the class's port count and supported
// port types and binds every port to the null driver. The factories map
// is keyed by the driver names configurations refer to; the null driver
// is always registered under DefaultDriverName. Every registered name
// must have a hardware type code.
func NewHandler(
	ctx context.Context,
	class mcu.PortClass,
	iface mcu.Interface,
	factories map[string]DriverFactory,
	logger golog.Logger,
) (*Handler, error) {
	count, err := iface.PortCount(ctx, class)
	if err != nil {
		return nil, errors.Wrapf(err, "counting %s ports", class)
	}
	typeCodes, err := iface.PortTypes(ctx, class)
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s port types", class)
	}

	all := make(map[string]DriverFactory, len(factories)+1)
	for name, factory := range factories {
		all[name] = factory
	}
	all[DefaultDriverName] = newNullDriver

	for name := range all {
		if _, ok := typeCodes[name]; !ok {
			return nil, errors.Errorf("%s driver %q has no hardware port type", class, name)
		}
	}

	h := &Handler{
		class:     class,
		iface:     iface,
		logger:    logger,
		factories: all,
		typeCodes: typeCodes,
	}
	h.ports = make([]*Port, count)
	for i := range h.ports {
		p := &Port{handler: h, index: i + 1, logger: logger}
		p.bind(&nullDriver{port: p}, nil)
		h.ports[i] = p
	}
	return h, nil
}

// Class returns the class of the handler's ports.
func (h *Handler) Class() mcu.PortClass {
	return h.class
}

// PortCount returns how many ports the handler owns.
func (h *Handler) PortCount() int {
	return len(h.ports)
}

// Port returns the port with the given 1-based index.
func (h *Handler) Port(idx int) (*Port, error) {
	if idx < 1 || idx > len(h.ports) {
		return nil, errors.Errorf("no %s port %d (have %d)", h.class, idx, len(h.ports))
	}
	return h.ports[idx-1], nil
}

// Ports returns the handler's ports in index order.
func (h *Handler) Ports() []*Port {
	out := make([]*Port, len(h.ports))
	copy(out, h.ports)
	return out
}

// Drivers returns the registered driver names, sorted.
func (h *Handler) Drivers() []string {
	names := make([]string, 0, len(h.factories))
	for name := range h.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfigurePort applies cfg to the port with the given 1-based index.
func (h *Handler) ConfigurePort(ctx context.Context, idx int, cfg *config.Driver) error {
	p, err := h.Port(idx)
	if err != nil {
		return err
	}
	return p.Configure(ctx, cfg)
}

// Reset restores every port to the unconfigured state, combining any
// per-port failures.
func (h *Handler) Reset(ctx context.Context) error {
	var result error
	for _, p := range h.ports {
		result = multierr.Combine(result, p.Uninitialize(ctx))
	}
	return result
}
