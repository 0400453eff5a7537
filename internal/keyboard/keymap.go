package keyboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ayusman/volante/internal/binding"
)

// xdotoolNames maps named keys to X11 keysyms.
var xdotoolNames = map[binding.Key]string{
	"up":                "Up",
	"down":              "Down",
	"left":              "Left",
	"right":             "Right",
	"space":             "space",
	"enter":             "Return",
	"tab":               "Tab",
	"esc":               "Escape",
	"backspace":         "BackSpace",
	"delete":            "Delete",
	"insert":            "Insert",
	"home":              "Home",
	"end":               "End",
	"page_up":           "Prior",
	"page_down":         "Next",
	"shift":             "Shift_L",
	"shift_l":           "Shift_L",
	"shift_r":           "Shift_R",
	"ctrl":              "Control_L",
	"ctrl_l":            "Control_L",
	"ctrl_r":            "Control_R",
	"alt":               "Alt_L",
	"alt_l":             "Alt_L",
	"alt_r":             "Alt_R",
	"alt_gr":            "ISO_Level3_Shift",
	"cmd":               "Super_L",
	"cmd_l":             "Super_L",
	"cmd_r":             "Super_R",
	"caps_lock":         "Caps_Lock",
	"num_lock":          "Num_Lock",
	"scroll_lock":       "Scroll_Lock",
	"menu":              "Menu",
	"pause":             "Pause",
	"print_screen":      "Print",
	"media_play_pause":  "XF86AudioPlay",
	"media_next":        "XF86AudioNext",
	"media_previous":    "XF86AudioPrev",
	"media_volume_up":   "XF86AudioRaiseVolume",
	"media_volume_down": "XF86AudioLowerVolume",
	"media_volume_mute": "XF86AudioMute",
}

// macKeyCodes maps named keys to macOS virtual key codes.
var macKeyCodes = map[binding.Key]int{
	"up":                126,
	"down":              125,
	"left":              123,
	"right":             124,
	"space":             49,
	"enter":             36,
	"tab":               48,
	"esc":               53,
	"backspace":         51,
	"delete":            117,
	"home":              115,
	"end":               119,
	"page_up":           116,
	"page_down":         121,
	"shift":             56,
	"shift_l":           56,
	"shift_r":           60,
	"ctrl":              59,
	"ctrl_l":            59,
	"ctrl_r":            62,
	"alt":               58,
	"alt_l":             58,
	"alt_r":             61,
	"cmd":               55,
	"cmd_l":             55,
	"cmd_r":             54,
	"caps_lock":         57,
	"media_volume_up":   72,
	"media_volume_down": 73,
	"media_volume_mute": 74,
	"f1":                122,
	"f2":                120,
	"f3":                99,
	"f4":                118,
	"f5":                96,
	"f6":                97,
	"f7":                98,
	"f8":                100,
	"f9":                101,
	"f10":               109,
	"f11":               103,
	"f12":               111,
	"f13":               105,
	"f14":               107,
	"f15":               113,
	"f16":               106,
	"f17":               64,
	"f18":               79,
	"f19":               80,
	"f20":               90,
}

func xdotoolKeysym(key binding.Key) (string, error) {
	if !key.IsNamed() {
		return string(key), nil
	}
	if sym, ok := xdotoolNames[key]; ok {
		return sym, nil
	}
	if n, ok := functionKey(key); ok {
		return fmt.Sprintf("F%d", n), nil
	}
	return "", fmt.Errorf("%w: %q has no X11 keysym", binding.ErrInvalidKey, key)
}

// appleScriptKey returns the System Events operand for a key: a quoted
// character or a (key code N) expression.
func appleScriptKey(key binding.Key) (string, error) {
	if !key.IsNamed() {
		s := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(string(key))
		return `"` + s + `"`, nil
	}
	if code, ok := macKeyCodes[key]; ok {
		return fmt.Sprintf("(key code %d)", code), nil
	}
	return "", fmt.Errorf("%w: %q is not available on macOS", binding.ErrInvalidKey, key)
}

func functionKey(key binding.Key) (int, bool) {
	s := string(key)
	if !strings.HasPrefix(s, "f") {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
