// Package publisher fans entity state out to registered adapters (MQTT
// today) and suppresses unchanged values so only deltas leave the process.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var (
	registeredPublishers = make(map[string]publisher)
	entities             sync.Map
)

// DeviceMeta describes one entity for registration with an adapter.
// Component is the Home Assistant platform the entity maps onto
// ("light", "switch", "cover", "climate", "sensor", "binary_sensor",
// "button").
type DeviceMeta struct {
	ID        string
	Name      string
	Model     string
	Area      string
	SN        string
	Component string
}

// State is one entity state update. Value is the primary state payload,
// Attributes carry the secondary fields published alongside it.
type State struct {
	DeviceID   string
	Component  string
	Value      string
	Attributes map[string]string
}

type publisher interface {
	Write(ctx context.Context, states []State) error
	RegisterDevice(meta *DeviceMeta) error
	RemoveDevice(meta *DeviceMeta) error
}

func RegisterPublisher(name string, publisher publisher) error {
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = publisher
	return nil
}

// Reset drops all registered publishers and suppression state.
func Reset() {
	registeredPublishers = make(map[string]publisher)
	entities = sync.Map{}
}

// Publish forwards changed states to every adapter. A failing adapter is
// logged and skipped so it never fails the poll cycle.
func Publish(ctx context.Context, states []State) {
	changed := make([]State, 0, len(states))
	for _, state := range states {
		if shouldUpdate(state) {
			changed = append(changed, state)
		}
	}
	if len(changed) == 0 {
		return
	}
	for name, publisher := range registeredPublishers {
		if err := publisher.Write(ctx, changed); err != nil {
			zap.L().Error("failed to publish states", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("updated entities", zap.Int("count", len(changed)), zap.String("publisher", name))
	}
}

func RegisterDevice(meta *DeviceMeta) {
	for name, publisher := range registeredPublishers {
		if err := publisher.RegisterDevice(meta); err != nil {
			zap.L().Error("failed to register device", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("registered device", zap.String("device", meta.ID), zap.String("publisher", name))
	}
}

func RemoveDevice(meta *DeviceMeta) {
	for name, publisher := range registeredPublishers {
		if err := publisher.RemoveDevice(meta); err != nil {
			zap.L().Error("failed to remove device", zap.Error(err), zap.String("publisher", name))
			continue
		}
	}
	entities.Delete(fmt.Sprintf("%s_%s", meta.Component, meta.ID))
}

func shouldUpdate(state State) bool {
	key := fmt.Sprintf("%s_%s", state.Component, state.DeviceID)
	newValue := fingerprint(state)
	oldValue, exists := entities.Load(key)
	if exists && newValue == oldValue.(string) {
		return false
	}
	if !exists {
		zap.L().Info("configured entity", zap.String("device", state.DeviceID), zap.String("component", state.Component))
	}
	entities.Store(key, newValue)
	return true
}

// fingerprint folds attributes in deterministic order so a reordered map
// does not read as a change.
func fingerprint(state State) string {
	keys := make([]string, 0, len(state.Attributes))
	for k := range state.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(state.Value)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(state.Attributes[k])
	}
	return b.String()
}
