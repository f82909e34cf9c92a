package compose

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/GothShoot/proxmox-swarm/internal/model"
	"go.uber.org/zap"
)

const maxVLAN = 4094

var (
	errNotPositive = errors.New("must be at least 1")
	errNotInteger  = errors.New("not an integer")
)

// toInt accepts integers, integral floats and numeric strings.
func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		if n > math.MaxInt || n < math.MinInt {
			return 0, errNotInteger
		}
		return int(n), nil
	case uint64:
		if n > math.MaxInt {
			return 0, errNotInteger
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, errNotInteger
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, errNotInteger
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: got %s", errNotInteger, model.TypeName(v))
}

func toVLAN(v any) (int, error) {
	vlan, err := toInt(v)
	if err != nil {
		return 0, err
	}
	if vlan < 0 || vlan > maxVLAN {
		return 0, fmt.Errorf("VLAN ID must be between 0 and %d", maxVLAN)
	}
	return vlan, nil
}

// parseMounts reads service volume entries in short ("data:/data:rw") or
// long ({source, target, read_only}) syntax.
func parseMounts(log *zap.Logger, raw []any) []model.VolumeMount {
	var mounts []model.VolumeMount
	for _, item := range raw {
		if long, ok := model.AsFields(item); ok {
			m := model.VolumeMount{
				Volume: model.Stringify(long.Get("source")),
				Target: model.Stringify(long.Get("target")),
			}
			if ro, ok := long.Get("read_only").(bool); ok {
				m.Mode = "rw"
				if ro {
					m.Mode = "ro"
				}
			}
			if m.Volume == "" || m.Target == "" {
				log.Warn("ignoring malformed volume entry", zap.Any("entry", item))
				continue
			}
			mounts = append(mounts, m)
			continue
		}

		s, ok := item.(string)
		if !ok {
			log.Warn("ignoring malformed volume entry", zap.Any("entry", item))
			continue
		}
		parts := strings.SplitN(s, ":", 3)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			log.Warn("ignoring malformed volume entry", zap.String("entry", s))
			continue
		}
		m := model.VolumeMount{Volume: parts[0], Target: parts[1]}
		if len(parts) == 3 {
			m.Mode = parts[2]
		}
		mounts = append(mounts, m)
	}
	return mounts
}
