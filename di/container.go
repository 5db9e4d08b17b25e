// Package di is filesql's composition root. Container is the generic
// type-keyed registry underneath it; Services and RegisterServices/
// ResolveServices are the concrete wiring cmd/filesql actually uses —
// the four ambient dependencies a running engine needs (logger, metrics
// collector, alert manager, database manager) built from a
// config.Config and resolved back out by field, not by hand-rolled
// reflect.Type bookkeeping in main().
package di

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/mstgnz/filesql/config"
	"github.com/mstgnz/filesql/db"
	"github.com/mstgnz/filesql/logger"
	"github.com/mstgnz/filesql/monitoring"
)

// Container is a type-keyed registry of services and factories.
type Container struct {
	mu        sync.RWMutex
	services  map[reflect.Type]interface{}
	factories map[reflect.Type]interface{}
}

// NewContainer creates a new DI container
func NewContainer() *Container {
	return &Container{
		services:  make(map[reflect.Type]interface{}),
		factories: make(map[reflect.Type]interface{}),
	}
}

// Register registers a service to a container
func (c *Container) Register(service interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := reflect.TypeOf(service)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if _, exists := c.services[t]; exists {
		return fmt.Errorf("service already registered for type: %v", t)
	}

	c.services[t] = service
	return nil
}

// RegisterFactory registers a factory to a container
func (c *Container) RegisterFactory(factory interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := reflect.TypeOf(factory)
	if t.Kind() != reflect.Func {
		return fmt.Errorf("factory must be a function")
	}

	if t.NumOut() != 1 && t.NumOut() != 2 {
		return fmt.Errorf("factory must return exactly one or two values (service, error)")
	}

	serviceType := t.Out(0)
	if _, exists := c.factories[serviceType]; exists {
		return fmt.Errorf("factory already registered for type: %v", serviceType)
	}

	c.factories[serviceType] = factory
	return nil
}

// Resolve resolves a service from container
func (c *Container) Resolve(target interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr {
		return fmt.Errorf("target must be a pointer")
	}

	targetType := targetValue.Elem().Type()

	// First check if it is registered as a direct service
	if service, exists := c.services[targetType]; exists {
		targetValue.Elem().Set(reflect.ValueOf(service))
		return nil
	}

	// See if it is a service that needs to be created with Factory
	if factory, exists := c.factories[targetType]; exists {
		factoryValue := reflect.ValueOf(factory)
		results := factoryValue.Call(nil)

		if len(results) == 2 && !results[1].IsNil() {
			return results[1].Interface().(error)
		}

		targetValue.Elem().Set(results[0])
		return nil
	}

	return fmt.Errorf("no service or factory registered for type: %v", targetType)
}

// ResolveAll resolves all services of the specified type
func (c *Container) ResolveAll(target interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	targetValue := reflect.ValueOf(target)
	if targetValue.Kind() != reflect.Ptr || targetValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("target must be a pointer to slice")
	}

	sliceType := targetValue.Elem().Type()
	elementType := sliceType.Elem()

	var services []reflect.Value

	// Collect registered services
	for t, s := range c.services {
		if t.AssignableTo(elementType) {
			services = append(services, reflect.ValueOf(s))
		}
	}

	// Create services from factories
	for t, f := range c.factories {
		if t.AssignableTo(elementType) {
			factoryValue := reflect.ValueOf(f)
			results := factoryValue.Call(nil)

			if len(results) == 2 && !results[1].IsNil() {
				return results[1].Interface().(error)
			}

			services = append(services, results[0])
		}
	}

	// Export results to slice
	result := reflect.MakeSlice(sliceType, len(services), len(services))
	for i, service := range services {
		result.Index(i).Set(service)
	}

	targetValue.Elem().Set(result)
	return nil
}

// Clear clears container
func (c *Container) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.services = make(map[reflect.Type]interface{})
	c.factories = make(map[reflect.Type]interface{})
}

// Services is the concrete set of ambient dependencies cmd/filesql
// wires behind a Container: the structured logger, the statement/error
// metrics collector, the alert manager watching those metrics, and the
// database manager driving every statement.
type Services struct {
	Log     *logger.Logger
	Metrics *monitoring.MetricsCollector
	Alerts  *monitoring.AlertManager
	DB      *db.Manager
}

// RegisterServices builds every Services field from cfg and registers
// each one on c. The alert manager is registered as a factory because
// it needs the metrics collector to already be resolvable.
func RegisterServices(c *Container, cfg config.Config) error {
	if err := c.Register(logger.NewLogger(cfg.Log)); err != nil {
		return err
	}
	if err := c.Register(monitoring.NewMetricsCollector()); err != nil {
		return err
	}
	if err := c.RegisterFactory(func() (*monitoring.AlertManager, error) {
		var metrics *monitoring.MetricsCollector
		if err := c.Resolve(&metrics); err != nil {
			return nil, err
		}
		return monitoring.NewAlertManager(monitoring.AlertConfig{Threshold: cfg.AlertThreshold}, metrics), nil
	}); err != nil {
		return err
	}
	return c.Register(db.NewManager(cfg.DataDir))
}

// ResolveServices pulls every field of Services back out of c by type,
// so main() never juggles reflect.Type or individual var declarations.
func ResolveServices(c *Container) (*Services, error) {
	var svc Services
	if err := c.Resolve(&svc.Log); err != nil {
		return nil, err
	}
	if err := c.Resolve(&svc.Metrics); err != nil {
		return nil, err
	}
	if err := c.Resolve(&svc.Alerts); err != nil {
		return nil, err
	}
	if err := c.Resolve(&svc.DB); err != nil {
		return nil, err
	}
	return &svc, nil
}
