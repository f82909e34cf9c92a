package compose

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/GothShoot/proxmox-swarm/internal/env"
	"github.com/GothShoot/proxmox-swarm/internal/loader"
	"github.com/GothShoot/proxmox-swarm/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func parseString(t *testing.T, doc string, opts ...Option) (*model.ComposeFile, error) {
	t.Helper()
	return Parse([]byte(doc), "compose.yml", opts...)
}

func TestParseFile(t *testing.T) {
	out, err := ParseFile("../../testdata/compose/docker-compose.yml", WithLookup(env.Static{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"app", "worker"}, out.Order)

	app := out.Services["app"]
	assert.Equal(t, "myimage", app.Image)
	assert.Equal(t, []string{"80:80"}, app.Ports)
	assert.Equal(t, map[string]string{"NODE_ENV": "production"}, app.Environment)
	assert.Equal(t, 2, app.Replicas)
	assert.Equal(t, []string{"node.labels.region==us"}, app.Constraints)
	assert.Equal(t, []string{"app", "web"}, app.Tags)
	require.NotNil(t, app.VLAN)
	assert.Equal(t, 100, *app.VLAN)
	require.Len(t, app.Volumes, 1)
	assert.Equal(t, "data", app.Volumes[0].Volume)
	assert.Equal(t, "/data", app.Volumes[0].Target)
	assert.Equal(t, "rw", app.Volumes[0].Mode)

	worker := out.Services["worker"]
	assert.Equal(t, 1, worker.Replicas)
	assert.Empty(t, worker.Ports)
	assert.Empty(t, worker.Constraints)
	assert.Nil(t, worker.VLAN)
	assert.Equal(t, "amqp://guest:guest@mq:5672/?heartbeat=30", worker.Environment["BROKER"])

	data := out.Volumes["data"]
	assert.Equal(t, "/ceph/data", data.Subvolume)
	assert.False(t, data.External)
	assert.Equal(t, map[string]string{"size": "10G", "quota": "1"}, data.Options)
	assert.Equal(t, map[string]string{"quota": "1"}, data.MountOptions)

	shared := out.Volumes["shared"]
	assert.True(t, shared.External)
	assert.Equal(t, "shared", shared.Subvolume)
}

func TestParseTemplate(t *testing.T) {
	out, err := ParseFile("../../testdata/compose/template.yml.j2", WithTemplate())
	require.NoError(t, err)

	require.Contains(t, out.Services, "stirling-pdf")
	assert.Equal(t, "stirlingtools/stirling-pdf:latest", out.Services["stirling-pdf"].Image)
	assert.Equal(t, []string{"PLACEHOLDER:7200:8080"}, out.Services["stirling-pdf"].Ports)
	assert.Equal(t, "ghcr.io/gethomepage/homepage:PLACEHOLDER", out.Services["homepage"].Image)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)

	var accessErr *loader.AccessError
	assert.True(t, errors.As(err, &accessErr))
}

func TestParseFileBroken(t *testing.T) {
	path := "../../testdata/compose/broken.yml"
	_, err := ParseFile(path)
	require.Error(t, err)

	var parseErr *loader.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, err.Error(), path)
}

func TestParseEmpty(t *testing.T) {
	for _, doc := range []string{"", "services:\n", "version: '3'\n", "services: {}\n"} {
		out, err := parseString(t, doc)
		require.NoError(t, err)
		assert.Empty(t, out.Services)
	}
}

func TestParseDefaults(t *testing.T) {
	out, err := parseString(t, "services:\n  bare:\n")
	require.NoError(t, err)

	bare := out.Services["bare"]
	assert.Equal(t, "", bare.Image)
	assert.Equal(t, []string{}, bare.Ports)
	assert.Equal(t, map[string]string{}, bare.Environment)
	assert.Equal(t, 1, bare.Replicas)
	assert.Equal(t, []string{}, bare.Constraints)
	assert.Nil(t, bare.Tags)
	assert.Nil(t, bare.VLAN)
}

func TestParseReplicas(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"int", "3", 3},
		{"string", `"3"`, 3},
		{"padded string", `" 4 "`, 4},
		{"integral float", "2.0", 2},
		{"null", "null", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := parseString(t, "services:\n  web:\n    deploy:\n      replicas: "+tt.value+"\n")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Services["web"].Replicas)
		})
	}
}

func TestParseReplicasInvalid(t *testing.T) {
	for _, value := range []string{`"abc"`, "1.5", "true", "0", "-2", "[1]"} {
		t.Run(value, func(t *testing.T) {
			_, err := parseString(t, "services:\n  web:\n    deploy:\n      replicas: "+value+"\n")
			require.Error(t, err)

			var coercionErr *FieldCoercionError
			require.True(t, errors.As(err, &coercionErr))
			assert.True(t, errors.Is(err, ErrCoercion))
			assert.Equal(t, "web", coercionErr.Service)
			assert.Equal(t, "deploy.replicas", coercionErr.Field)
		})
	}
}

func TestParseVLAN(t *testing.T) {
	out, err := parseString(t, "services:\n  web:\n    vlan: \"4094\"\n")
	require.NoError(t, err)
	require.NotNil(t, out.Services["web"].VLAN)
	assert.Equal(t, 4094, *out.Services["web"].VLAN)

	for _, value := range []string{"5000", "-1", "abc"} {
		_, err := parseString(t, "services:\n  bad:\n    vlan: "+value+"\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vlan")
		assert.True(t, errors.Is(err, ErrCoercion))
	}
}

func TestParseLenientFields(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	doc := `
services:
  web:
    image: nginx
    ports: "80:80"
    deploy:
      placement:
        constraints: node.role==manager
  api:
    deploy: 3
  worker:
    deploy:
      placement: everywhere
`
	out, err := parseString(t, doc, WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, []string{}, out.Services["web"].Ports)
	assert.Equal(t, []string{}, out.Services["web"].Constraints)
	assert.Equal(t, 1, out.Services["api"].Replicas)
	assert.Equal(t, []string{}, out.Services["worker"].Constraints)
	assert.Equal(t, 4, logs.Len())
}

func TestParseLongSyntaxPorts(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	doc := `
services:
  web:
    ports:
      - "443:443"
      - target: 80
        published: 8080
      - target: 53
        published: 53
        host_ip: 127.0.0.1
        protocol: udp
      - target: 9000
      - published: 1
      - [8081, 81]
    deploy:
      placement:
        constraints:
          - node.role==manager
          - {node: pve1}
`
	out, err := parseString(t, doc, WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, []string{"443:443", "8080:80", "127.0.0.1:53:53/udp", "9000"}, out.Services["web"].Ports)
	assert.Equal(t, []string{"node.role==manager"}, out.Services["web"].Constraints)
	assert.Equal(t, 3, logs.FilterMessage("ignoring malformed list entry").Len())
}

func TestParseEnvironmentDiagnostics(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	doc := `
services:
  web:
    environment: ["A=1", "BADENTRY", "B=2"]
`
	out, err := parseString(t, doc, WithLogger(zap.New(core)))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, out.Services["web"].Environment)
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "BADENTRY", fields["entry"])
	assert.Equal(t, "web", fields["service"])
}

func TestParseEnvironmentLookup(t *testing.T) {
	doc := `
services:
  web:
    environment:
      TOKEN:
      MISSING:
`
	out, err := parseString(t, doc, WithLookup(env.Static{"TOKEN": "s3cret"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TOKEN": "s3cret", "MISSING": ""}, out.Services["web"].Environment)
}

func TestParseEnvironmentKeepsNumberText(t *testing.T) {
	doc := `
services:
  web:
    environment:
      PHP_VERSION: 8.0
      BIG: 12345678901234567890123
      OCT: 0o17
      DEBUG: true
`
	out, err := parseString(t, doc)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"PHP_VERSION": "8.0",
		"BIG":         "12345678901234567890123",
		"OCT":         "0o17",
		"DEBUG":       "true",
	}, out.Services["web"].Environment)
}

func TestParseVolumeMounts(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	doc := `
services:
  db:
    volumes:
      - pgdata:/var/lib/postgresql/data
      - /anonymous
      - type: volume
        source: logs
        target: /var/log
        read_only: true
`
	out, err := parseString(t, doc, WithLogger(zap.New(core)))
	require.NoError(t, err)

	mounts := out.Services["db"].Volumes
	require.Len(t, mounts, 2)
	assert.Equal(t, "pgdata", mounts[0].Volume)
	assert.Equal(t, "", mounts[0].Mode)
	assert.Equal(t, "logs", mounts[1].Volume)
	assert.Equal(t, "ro", mounts[1].Mode)
	assert.Equal(t, 1, logs.FilterMessage("ignoring malformed volume entry").Len())
	assert.Equal(t, 2, logs.FilterMessage("volume not defined in compose file").Len())
}

func TestParseVolumeOptions(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	doc := `
services:
  db:
    volumes:
      - pgdata:/var/lib/postgresql/data
volumes:
  pgdata:
    options:
      size: 20G
      uid: 1000
      ro: "1"
      compression: zstd
`
	out, err := parseString(t, doc, WithLogger(zap.New(core)))
	require.NoError(t, err)

	def := out.Volumes["pgdata"]
	assert.Equal(t, "pgdata", def.Subvolume)
	assert.Equal(t, map[string]string{"size": "20G", "uid": "1000"}, def.Options)
	assert.Equal(t, map[string]string{"uid": "1000", "ro": "1"}, def.MountOptions)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "compression", fields["option"])
	assert.Equal(t, "pgdata", fields["volume"])
}

func TestParseDuplicateServiceLastWins(t *testing.T) {
	out, err := parseString(t, "services:\n  web:\n    image: a\n  web:\n    image: b\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, out.Order)
	assert.Equal(t, "b", out.Services["web"].Image)
}

func TestParseServicesNotMapping(t *testing.T) {
	_, err := parseString(t, "services:\n  - web\n")
	require.Error(t, err)
	assert.True(t, loader.IsParse(err))
}
