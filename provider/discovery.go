package provider

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/tame-gcp/gcpauth/credentials"
	"github.com/tame-gcp/gcpauth/gcperr"
)

const (
	envApplicationCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
	envCloudSDKConfig         = "CLOUDSDK_CONFIG"
	envAppData               = "APPDATA"
	envHome                  = "HOME"

	adcRelativePath = "gcloud/application_default_credentials.json"

	dmiProductNamePath = "/sys/class/dmi/id/product_name"
)

// Environment abstracts the parts of the OS the discovery algorithm
// reads from, so DiscoverDefaultCredentials is testable without a real
// filesystem or environment.
type Environment interface {
	Getenv(key string) string
	ReadFile(path string) ([]byte, error)
	GOOS() string
}

// OSEnvironment is the real Environment, backed by os.Getenv/os.ReadFile
// and runtime.GOOS. It is the ambient layer's entry point into
// discovery; the CORE never constructs one itself.
type OSEnvironment struct{}

func (OSEnvironment) Getenv(key string) string          { return os.Getenv(key) }
func (OSEnvironment) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }
func (OSEnvironment) GOOS() string                      { return runtime.GOOS }

// DiscoverDefaultCredentials implements the four-step Application
// Default Credentials search order. A nil Provider with a nil error
// means no credential source applies; any non-nil error is fatal (the
// step that produced it was the one that applied).
func DiscoverDefaultCredentials(env Environment) (*Provider, error) {
	if p, err := discoverExplicitCredentials(env); p != nil || err != nil {
		return p, err
	}
	if p, err := discoverGcloudADC(env); p != nil || err != nil {
		return p, err
	}
	if p, err := discoverMetadataServer(env); p != nil || err != nil {
		return p, err
	}
	return nil, nil
}

func discoverExplicitCredentials(env Environment) (*Provider, error) {
	file := env.Getenv(envApplicationCredentials)
	if file == "" {
		return nil, nil
	}
	data, err := env.ReadFile(file)
	if err != nil {
		return nil, gcperr.InvalidCredentials(file, err)
	}
	info, err := credentials.DeserializeServiceAccount(data)
	if err != nil {
		return nil, gcperr.InvalidCredentials(file, err)
	}
	sa, err := NewServiceAccountProvider(info)
	if err != nil {
		return nil, gcperr.InvalidCredentials(file, err)
	}
	return FromServiceAccount(sa), nil
}

func discoverGcloudADC(env Environment) (*Provider, error) {
	file := gcloudADCPath(env)
	data, err := env.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, gcperr.InvalidCredentials(file, err)
	}
	info, err := credentials.DeserializeEndUser(data)
	if err != nil {
		return nil, gcperr.InvalidCredentials(file, err)
	}
	return FromEndUser(NewEndUserProvider(info)), nil
}

func gcloudADCPath(env Environment) string {
	if dir := env.Getenv(envCloudSDKConfig); dir != "" {
		return filepath.Join(dir, "application_default_credentials.json")
	}
	if env.GOOS() == "windows" {
		return filepath.Join(env.Getenv(envAppData), adcRelativePath)
	}
	return filepath.Join(env.Getenv(envHome), ".config", adcRelativePath)
}

func discoverMetadataServer(env Environment) (*Provider, error) {
	data, err := env.ReadFile(dmiProductNamePath)
	if err != nil {
		return nil, nil
	}
	name := strings.TrimSpace(string(data))
	if name != "Google" && name != "Google Compute Engine" {
		return nil, nil
	}
	return FromMetadataServer(NewMetadataServerProvider("")), nil
}
