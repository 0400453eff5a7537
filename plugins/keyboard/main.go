// Package main is a keyboard plugin that presses and releases single keys
// with the host's automation tool (xdotool or osascript).
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ayusman/volante/internal/binding"
	"github.com/ayusman/volante/internal/keyboard"
	"github.com/ayusman/volante/internal/plugin"
)

func main() {
	var req plugin.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	writeResponse(handle(req))
}

func handle(req plugin.Request) error {
	var p plugin.KeyParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return fmt.Errorf("failed to parse params: %w", err)
	}

	key, err := binding.ParseKey(p.Key)
	if err != nil {
		return err
	}
	if key.IsNone() {
		return fmt.Errorf("key is required")
	}

	emitter, err := keyboard.NewCommandEmitter(2 * time.Second)
	if err != nil {
		return err
	}

	switch req.Action {
	case plugin.ActionPress:
		return emitter.Press(key)
	case plugin.ActionRelease:
		return emitter.Release(key)
	}
	return fmt.Errorf("unknown action: %s", req.Action)
}

func writeResponse(err error) {
	resp := plugin.Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
