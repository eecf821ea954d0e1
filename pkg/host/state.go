package host

import (
	"fmt"
	"time"

	"github.com/amapianolab/groovehost/pkg/plugin"
)

// InstanceState is the serialisable snapshot of one instance. Round-tripping
// through Import reproduces every named parameter value; the remaining
// metadata fields are advisory and rebuilt from the class.
type InstanceState struct {
	ID         string                  `json:"id"`
	PluginID   string                  `json:"pluginId"`
	Parameters map[string]plugin.Param `json:"parameters"`
	CreatedAt  time.Time               `json:"created_at"`
}

// ExportPluginState takes a pure snapshot of an instance.
func (h *Host) ExportPluginState(id string) (*InstanceState, error) {
	inst := h.GetPlugin(id)
	if inst == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInstance, id)
	}
	return &InstanceState{
		ID:         inst.ID,
		PluginID:   inst.PluginID,
		Parameters: inst.Plugin.Parameters(),
		CreatedAt:  inst.CreatedAt,
	}, nil
}

// ImportPluginState recreates an instance from a snapshot and restores every
// parameter value present in it. Parameter names the class no longer knows
// are ignored.
func (h *Host) ImportPluginState(state *InstanceState) (*Instance, error) {
	inst, err := h.CreatePlugin(state.PluginID, state.ID)
	if err != nil {
		return nil, err
	}
	for name, p := range state.Parameters {
		inst.Plugin.SetParam(name, p.Value)
	}
	return inst, nil
}
