package config

import (
	"net"
	"net/url"
	"os"
	"sync"
)

const dockerHostGateway = "host.docker.internal"

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// IsRunningInDocker reports whether /.dockerenv exists. The result is cached.
func IsRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

// ResolveEndpointForDocker points a loopback object storage endpoint at the
// Docker host gateway when the process runs in a container, so a MinIO or
// localstack instance on the host stays reachable.
func ResolveEndpointForDocker(endpoint string) string {
	return rewriteLoopbackEndpoint(endpoint, IsRunningInDocker())
}

// rewriteLoopbackEndpoint keeps scheme, port and path. Values that do not
// parse as absolute URLs come back unchanged.
func rewriteLoopbackEndpoint(endpoint string, inDocker bool) string {
	if !inDocker {
		return endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return endpoint
	}

	switch u.Hostname() {
	case "localhost", "127.0.0.1":
	default:
		return endpoint
	}

	if port := u.Port(); port != "" {
		u.Host = net.JoinHostPort(dockerHostGateway, port)
	} else {
		u.Host = dockerHostGateway
	}
	return u.String()
}
