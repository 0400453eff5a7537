package keyboard

import (
	"context"

	"github.com/ayusman/volante/internal/binding"
	"github.com/ayusman/volante/internal/plugin"
)

// PluginEmitter injects keys through an external keyboard plugin.
type PluginEmitter struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
}

// NewPluginEmitter finds the named plugin and checks that it can press and
// release keys.
func NewPluginEmitter(mgr *plugin.Manager, name string, executor *plugin.Executor) (*PluginEmitter, error) {
	p, err := mgr.Require(name, plugin.ActionPress, plugin.ActionRelease)
	if err != nil {
		return nil, err
	}
	return &PluginEmitter{plugin: p, executor: executor}, nil
}

func (e *PluginEmitter) Press(key binding.Key) error {
	return e.call(plugin.ActionPress, key)
}

func (e *PluginEmitter) Release(key binding.Key) error {
	return e.call(plugin.ActionRelease, key)
}

func (e *PluginEmitter) call(action string, key binding.Key) error {
	req, err := plugin.NewKeyRequest(action, string(key))
	if err != nil {
		return err
	}
	return e.executor.Call(context.Background(), e.plugin, req)
}
