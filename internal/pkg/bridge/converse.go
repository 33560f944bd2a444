package bridge

import (
	"context"
	"strings"
)

// Voice verbs the butler panels produce. Utterances arrive as plain
// Chinese text, e.g. "打开客厅灯" or a bare scene name.
const (
	verbTurnOn  = "打开"
	verbTurnOff = "关闭"

	speechDone     = "好的"
	speechNotFound = "没有找到对应的设备或场景"
)

// Converse resolves one voice utterance against the known entities: a
// turn-on/turn-off verb plus a device name switches the device, a bare
// scene name runs the scene. Longest name match wins so "客厅灯带" is
// preferred over "客厅灯".
func (b *Bridge) Converse(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)

	if rest, ok := strings.CutPrefix(text, verbTurnOn); ok {
		return b.switchByName(ctx, rest, true)
	}
	if rest, ok := strings.CutPrefix(text, verbTurnOff); ok {
		return b.switchByName(ctx, rest, false)
	}

	if btn := b.sceneByName(text); btn != nil {
		if err := btn.Press(ctx); err != nil {
			return "", err
		}
		return speechDone, nil
	}
	return speechNotFound, nil
}

func (b *Bridge) switchByName(ctx context.Context, name string, on bool) (string, error) {
	name = strings.TrimSpace(name)

	b.mu.Lock()
	var best Switchable
	bestLen := 0
	for _, view := range b.views {
		sw, ok := view.(Switchable)
		if !ok {
			continue
		}
		entity := view.Meta().Name
		if entity != "" && strings.Contains(name, entity) && len(entity) > bestLen {
			best, bestLen = sw, len(entity)
		}
	}
	b.mu.Unlock()

	if best == nil {
		// Scenes are also addressable with the turn-on verb.
		if on {
			if btn := b.sceneByName(name); btn != nil {
				if err := btn.Press(ctx); err != nil {
					return "", err
				}
				return speechDone, nil
			}
		}
		return speechNotFound, nil
	}
	if err := best.Control(ctx, on); err != nil {
		return "", err
	}
	return speechDone, nil
}

func (b *Bridge) sceneByName(name string) *SceneButton {
	b.mu.Lock()
	defer b.mu.Unlock()
	var best *SceneButton
	bestLen := 0
	for _, btn := range b.scenes {
		sna := btn.Meta().Name
		if sna != "" && strings.Contains(name, sna) && len(sna) > bestLen {
			best, bestLen = btn, len(sna)
		}
	}
	return best
}
