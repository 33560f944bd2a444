package pugoing

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/anicoll/pugoing-integration/internal/pkg/codec"
)

// command is one resolved (key, optional value) pair bound for the
// plataction endpoint.
type command struct {
	key   Dkey
	value *string
}

func ptr(s string) *string { return &s }

// DimmerIntent bundles the independent sub-intents of one dimmer control
// call. Nil fields are left untouched on the device.
type DimmerIntent struct {
	On         *bool
	Brightness *int    // 0-100
	ColorTemp  *int    // Kelvin 2000-6500 or percentage 0-100
	RGBHex     *string // 6 hex chars
}

// CurtainIntent: Action is one of "open"/"close"/"stop"; Position is an
// explicit 0-100 target. A named action takes priority over position.
type CurtainIntent struct {
	Action   string
	Position *int
}

// VRVIntent bundles the independent climate sub-intents.
type VRVIntent struct {
	Power       *bool
	Mode        string // "cool" / "heat" / "dry" / "fan_only"
	FanMode     string // "high" / "medium" / "low"
	Temperature *int   // 16-30
}

// SetLampState switches a plain on/off lamp.
func (c *Client) SetLampState(ctx context.Context, yid, sn string, on bool) error {
	key := LampClose
	if on {
		key = LampOpen
	}
	return c.sendCommands(ctx, yid, sn, []command{{key: key}})
}

// SetBreakerState switches a breaker circuit.
func (c *Client) SetBreakerState(ctx context.Context, yid, sn string, on bool) error {
	key := BreakerClose
	if on {
		key = BreakerOpen
	}
	return c.sendCommands(ctx, yid, sn, []command{{key: key}})
}

// SetDimmerState resolves a dimmer intent into an ordered command bundle.
// Validation happens entirely before the first network call; an empty
// intent is a no-op rather than an error.
func (c *Client) SetDimmerState(ctx context.Context, yid, sn string, intent DimmerIntent) error {
	var cmds []command

	if intent.On != nil {
		if *intent.On {
			cmds = append(cmds, command{key: LampOpen})
		} else {
			cmds = append(cmds, command{key: LampClose})
		}
	}
	if intent.Brightness != nil {
		v, err := codec.EncodeBrightness(*intent.Brightness)
		if err != nil {
			return &ValidationError{Field: "brightness", Reason: err.Error()}
		}
		cmds = append(cmds, command{key: LampBri, value: ptr(v)})
	}
	if intent.ColorTemp != nil {
		v, err := codec.EncodeColorTemp(*intent.ColorTemp)
		if err != nil {
			return &ValidationError{Field: "color_temp", Reason: err.Error()}
		}
		cmds = append(cmds, command{key: LampCCT, value: ptr(v)})
	}
	if intent.RGBHex != nil {
		v, err := codec.NormalizeRGBHex(*intent.RGBHex)
		if err != nil {
			return &ValidationError{Field: "rgb", Reason: err.Error()}
		}
		cmds = append(cmds, command{key: LampRGB, value: ptr(v)})
	}

	return c.sendCommands(ctx, yid, sn, cmds)
}

// SetCurtainState resolves exactly one curtain command. The named action
// wins when both action and position are supplied.
func (c *Client) SetCurtainState(ctx context.Context, yid, sn string, intent CurtainIntent) error {
	var cmd command
	switch intent.Action {
	case "open":
		cmd = command{key: CurtainOpen}
	case "close":
		cmd = command{key: CurtainClose}
	case "stop":
		cmd = command{key: CurtainPause}
	case "":
		if intent.Position == nil {
			return &ValidationError{Field: "curtain", Reason: "neither action nor position supplied"}
		}
		if *intent.Position < 0 || *intent.Position > 100 {
			return &ValidationError{Field: "position", Reason: "must be 0-100"}
		}
		cmd = command{key: CurtainPos, value: ptr(strconv.Itoa(*intent.Position))}
	default:
		return &ValidationError{Field: "action", Reason: "must be open, close or stop"}
	}
	return c.sendCommands(ctx, yid, sn, []command{cmd})
}

// SetVRVState resolves a climate intent into an ordered command bundle.
func (c *Client) SetVRVState(ctx context.Context, yid, sn string, intent VRVIntent) error {
	var cmds []command

	if intent.Power != nil {
		if *intent.Power {
			cmds = append(cmds, command{key: VRVOpen})
		} else {
			cmds = append(cmds, command{key: VRVClose})
		}
	}
	switch intent.Mode {
	case "cool":
		cmds = append(cmds, command{key: VRVModeCool})
	case "heat":
		cmds = append(cmds, command{key: VRVModeHeat})
	case "dry":
		cmds = append(cmds, command{key: VRVModeDry})
	case "fan_only":
		cmds = append(cmds, command{key: VRVModeFan})
	case "":
	default:
		return &ValidationError{Field: "mode", Reason: "must be cool, heat, dry or fan_only"}
	}
	switch intent.FanMode {
	case "high":
		cmds = append(cmds, command{key: VRVFanHigh})
	case "medium":
		cmds = append(cmds, command{key: VRVFanMed})
	case "low":
		cmds = append(cmds, command{key: VRVFanLow})
	case "":
	default:
		return &ValidationError{Field: "fan_mode", Reason: "must be high, medium or low"}
	}
	if intent.Temperature != nil {
		v, err := codec.EncodeVRVTemperature(*intent.Temperature)
		if err != nil {
			return &ValidationError{Field: "temperature", Reason: err.Error()}
		}
		cmds = append(cmds, command{key: Dkey(vrvTemperatureKeyPrefix + v)})
	}

	return c.sendCommands(ctx, yid, sn, cmds)
}

// sendCommands issues the bundle sequentially. The backend has no atomic
// multi-attribute set, so the first failure aborts the remainder and a
// partially applied bundle is possible; that limitation is carried through
// rather than hidden.
func (c *Client) sendCommands(ctx context.Context, yid, sn string, cmds []command) error {
	if len(cmds) == 0 {
		c.logger.Debug("no control commands resolved", zap.String("yid", yid))
		return nil
	}
	if err := c.ensureToken(ctx); err != nil {
		return err
	}
	for i, cmd := range cmds {
		if err := c.controlDevice(ctx, sn, cmd.key, yid, cmd.value); err != nil {
			c.logger.Error("control command failed",
				zap.String("yid", yid),
				zap.String("dkey", cmd.key.String()),
				zap.Int("command", i+1),
				zap.Int("of", len(cmds)),
				zap.Error(err))
			return err
		}
	}
	return nil
}
