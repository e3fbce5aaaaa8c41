package host

import (
	"net"
	"os"
)

// FileSystem abstracts the directory operations the host performs
// during startup.
type FileSystem interface {
	MkdirAll(path string, perm os.FileMode) error
}

// OSFileSystem is the real filesystem.
type OSFileSystem struct{}

func (OSFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// PowerManager keeps the machine awake while the server runs.
// PreventSleep returns a release function.
type PowerManager interface {
	PreventSleep() (release func())
}

// NopPowerManager is used where no platform inhibitor is wired.
type NopPowerManager struct{}

func (NopPowerManager) PreventSleep() func() { return func() {} }

// NetworkManager reports the machine's local addresses so the server
// can announce where it is reachable.
type NetworkManager interface {
	LocalAddresses() ([]net.IP, error)
}

// InterfaceNetworkManager enumerates non-loopback interface addresses.
type InterfaceNetworkManager struct{}

func (InterfaceNetworkManager) LocalAddresses() ([]net.IP, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	var ips []net.IP
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		ips = append(ips, ipnet.IP)
	}
	return ips, nil
}

// ImageEncoder is the codec surface the media engine plugs into.
// The core host only reports capabilities.
type ImageEncoder interface {
	SupportedFormats() []string
}

// NullImageEncoder is the placeholder codec used until a real encoder
// is registered by the media engine.
type NullImageEncoder struct{}

func (NullImageEncoder) SupportedFormats() []string { return []string{"png", "jpeg"} }
