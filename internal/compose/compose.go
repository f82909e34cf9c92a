// Package compose translates Compose-style documents into descriptive LXC
// service configurations.
package compose

import (
	"github.com/GothShoot/proxmox-swarm/internal/env"
	"github.com/GothShoot/proxmox-swarm/internal/loader"
	"github.com/GothShoot/proxmox-swarm/internal/model"
	"github.com/GothShoot/proxmox-swarm/internal/util"
	"go.uber.org/zap"
)

// Option configures a parse.
type Option func(*parser)

// WithLogger sets the logger receiving malformed-entry warnings.
func WithLogger(log *zap.Logger) Option {
	return func(p *parser) {
		if log != nil {
			p.log = log
		}
	}
}

// WithLookup sets where environment entries without a value are resolved.
func WithLookup(lookup env.Lookup) Option {
	return func(p *parser) {
		if lookup != nil {
			p.lookup = lookup
		}
	}
}

// WithTemplate strips Jinja2 expressions before decoding.
func WithTemplate() Option {
	return func(p *parser) {
		p.template = true
	}
}

type parser struct {
	log      *zap.Logger
	lookup   env.Lookup
	template bool
}

// ParseFile reads and translates the Compose file at path.
func ParseFile(path string, opts ...Option) (*model.ComposeFile, error) {
	data, err := loader.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, path, opts...)
}

// Parse translates a Compose document. source names it in errors.
func Parse(data []byte, source string, opts ...Option) (*model.ComposeFile, error) {
	p := &parser{log: zap.NewNop(), lookup: env.OS}
	for _, opt := range opts {
		opt(p)
	}

	if p.template {
		data = []byte(util.StripJinja2(string(data)))
	}

	root, err := loader.Decode(data, source)
	if err != nil {
		return nil, err
	}

	services, err := loader.Section(root, source, "services")
	if err != nil {
		return nil, err
	}
	volumes, err := loader.Section(root, source, "volumes")
	if err != nil {
		return nil, err
	}

	out := model.NewComposeFile()
	for _, entry := range services {
		cfg, err := p.service(entry.Name, entry.Fields)
		if err != nil {
			return nil, err
		}
		out.AddService(entry.Name, cfg)
	}
	for _, entry := range volumes {
		out.Volumes[entry.Name] = volumeDef(p.log, entry.Name, entry.Fields)
	}
	for _, name := range out.Order {
		for _, m := range out.Services[name].Volumes {
			if _, ok := out.Volumes[m.Volume]; !ok {
				p.log.Warn("volume not defined in compose file",
					zap.String("service", name), zap.String("volume", m.Volume))
			}
		}
	}

	return out, nil
}

func (p *parser) service(name string, spec model.Fields) (model.LXCServiceConfig, error) {
	log := p.log.With(zap.String("service", name))

	cfg := model.LXCServiceConfig{
		Image:       model.Stringify(spec.Get("image")),
		Ports:       p.stringList(log, spec, "ports"),
		Environment: env.Normalize(spec.Get("environment"), p.lookup, log),
		Replicas:    model.DefaultReplicas,
		Constraints: []string{},
	}

	deploy, ok := spec.Map("deploy")
	if !ok && spec.Get("deploy") != nil {
		log.Warn("ignoring malformed deploy section", zap.String("type", model.TypeName(spec.Get("deploy"))))
	}
	if ok {
		if raw := deploy.Get("replicas"); raw != nil {
			replicas, err := toInt(raw)
			if err == nil && replicas < 1 {
				err = errNotPositive
			}
			if err != nil {
				return cfg, &FieldCoercionError{Service: name, Field: "deploy.replicas", Value: raw, Err: err}
			}
			cfg.Replicas = replicas
		}

		placement, ok := deploy.Map("placement")
		if !ok && deploy.Get("placement") != nil {
			log.Warn("ignoring malformed placement section", zap.String("type", model.TypeName(deploy.Get("placement"))))
		}
		if ok {
			cfg.Constraints = p.stringList(log, placement, "constraints")
		}
	}

	if tags, ok := spec.List("tags"); ok {
		cfg.Tags = model.Strings(tags)
	}

	if raw := spec.Get("vlan"); raw != nil {
		vlan, err := toVLAN(raw)
		if err != nil {
			return cfg, &FieldCoercionError{Service: name, Field: "vlan", Value: raw, Err: err}
		}
		cfg.VLAN = &vlan
	}

	if raw, ok := spec.List("volumes"); ok {
		cfg.Volumes = parseMounts(log, raw)
	}

	return cfg, nil
}

// stringList passes a sequence of scalars through. Anything else present
// under key is dropped with a warning, as are non-scalar elements other than
// long-syntax ports.
func (p *parser) stringList(log *zap.Logger, spec model.Fields, key string) []string {
	raw := spec.Get(key)
	list, ok := raw.([]any)
	if !ok {
		if raw != nil {
			log.Warn("ignoring non-sequence field", zap.String("field", key), zap.String("type", model.TypeName(raw)))
		}
		return []string{}
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		if m, isMap := model.AsFields(item); isMap {
			if port, ok := portMapping(m); key == "ports" && ok {
				out = append(out, port)
				continue
			}
		} else if _, isList := item.([]any); !isList {
			out = append(out, model.Stringify(item))
			continue
		}
		log.Warn("ignoring malformed list entry", zap.String("field", key), zap.String("type", model.TypeName(item)))
	}
	return out
}

// portMapping renders a long-syntax port as [host_ip:]published:target[/protocol].
func portMapping(m model.Fields) (string, bool) {
	target := model.Stringify(m.Get("target"))
	if target == "" {
		return "", false
	}
	port := target
	if published := model.Stringify(m.Get("published")); published != "" {
		port = published + ":" + port
		if ip := model.Stringify(m.Get("host_ip")); ip != "" {
			port = ip + ":" + port
		}
	}
	if proto := model.Stringify(m.Get("protocol")); proto != "" {
		port += "/" + proto
	}
	return port, true
}

// Options accepted when creating a subvolume and when mounting one.
var (
	subvolumeOptions = map[string]bool{"size": true, "mode": true, "uid": true, "gid": true, "quota": true}
	mountOptions     = map[string]bool{"uid": true, "gid": true, "rw": true, "ro": true, "quota": true}
)

func volumeDef(log *zap.Logger, name string, spec model.Fields) model.VolumeDef {
	def := model.VolumeDef{
		Name:         name,
		Subvolume:    model.Stringify(spec.Get("subvolume")),
		External:     truthy(spec.Get("external")),
		Options:      map[string]string{},
		MountOptions: map[string]string{},
	}
	if def.Subvolume == "" {
		def.Subvolume = name
	}
	if opts, ok := spec.Map("options"); ok {
		for k, v := range opts {
			value := model.Stringify(v)
			if subvolumeOptions[k] {
				def.Options[k] = value
			}
			if mountOptions[k] {
				def.MountOptions[k] = value
			}
			if !subvolumeOptions[k] && !mountOptions[k] {
				log.Warn("ignoring unsupported volume option", zap.String("volume", name), zap.String("option", k))
			}
		}
	}
	return def
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case nil:
		return false
	case map[string]any, model.Fields:
		// external: {name: ...}
		return true
	}
	return false
}
