package device

import (
	"crypto/tls"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override secrets in a configuration file.
const (
	EnvAccessToken = "REMOTEPAY_ACCESS_TOKEN"
	EnvAuthToken   = "REMOTEPAY_AUTH_TOKEN"
)

// Duration is a time.Duration written as a Go duration string ("5s",
// "1m30s") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a string", value.Line)
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// File is the YAML form of a Configuration.
//
//	kind: cloud
//	applicationId: com.example.pos:1.0
//	server: https://www.clover.com
//	merchantId: M123
//	deviceId: D456
//	heartbeatInterval: 5s
type File struct {
	Kind          Kind   `yaml:"kind"`
	ApplicationID string `yaml:"applicationId"`

	// Direct and paired.
	URL          string `yaml:"url,omitempty"`
	POSName      string `yaml:"posName,omitempty"`
	SerialNumber string `yaml:"serialNumber,omitempty"`
	AuthToken    string `yaml:"authToken,omitempty"`

	// Cloud.
	Server       string `yaml:"server,omitempty"`
	AccessToken  string `yaml:"accessToken,omitempty"`
	MerchantID   string `yaml:"merchantId,omitempty"`
	DeviceID     string `yaml:"deviceId,omitempty"`
	FriendlyID   string `yaml:"friendlyId,omitempty"`
	ForceConnect bool   `yaml:"forceConnect,omitempty"`

	HeartbeatInterval             Duration `yaml:"heartbeatInterval,omitempty"`
	ReconnectDelay                Duration `yaml:"reconnectDelay,omitempty"`
	PingRetryCountBeforeReconnect int      `yaml:"pingRetryCountBeforeReconnect,omitempty"`
	InsecureSkipVerify            bool     `yaml:"insecureSkipVerify,omitempty"`
}

// LoadFile reads and parses a configuration file.
func LoadFile(path string, opts ...Option) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data, opts...)
}

// Parse builds a Configuration from YAML. Options are applied after the
// settings found in the document, so they take precedence.
func Parse(data []byte, opts ...Option) (Configuration, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	f.applyEnvOverrides()

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.Configuration(opts...), nil
}

func (f *File) applyEnvOverrides() {
	if v := os.Getenv(EnvAccessToken); v != "" {
		f.AccessToken = v
	}
	if v := os.Getenv(EnvAuthToken); v != "" {
		f.AuthToken = v
	}
}

// Validate checks the fields the selected kind requires.
func (f *File) Validate() error {
	if f.ApplicationID == "" {
		return invalid("applicationId is required")
	}
	if f.HeartbeatInterval < 0 || f.ReconnectDelay < 0 || f.PingRetryCountBeforeReconnect < 0 {
		return invalid("timings must not be negative")
	}

	switch f.Kind {
	case KindDirect:
		if f.URL == "" {
			return invalid("direct configuration needs a url")
		}
	case KindPaired:
		switch {
		case f.URL == "":
			return invalid("paired configuration needs a url")
		case f.POSName == "":
			return invalid("paired configuration needs a posName")
		case f.SerialNumber == "":
			return invalid("paired configuration needs a serialNumber")
		}
	case KindCloud:
		switch {
		case f.Server == "":
			return invalid("cloud configuration needs a server")
		case f.AccessToken == "":
			return invalid("cloud configuration needs an accessToken")
		case f.MerchantID == "":
			return invalid("cloud configuration needs a merchantId")
		case f.DeviceID == "":
			return invalid("cloud configuration needs a deviceId")
		}
	default:
		return invalid("unknown kind %q", f.Kind)
	}
	return nil
}

// Configuration builds the configuration f describes. f must be valid.
func (f *File) Configuration(opts ...Option) Configuration {
	var fromFile []Option
	if f.HeartbeatInterval > 0 {
		fromFile = append(fromFile, WithHeartbeatInterval(time.Duration(f.HeartbeatInterval)))
	}
	if f.ReconnectDelay > 0 {
		fromFile = append(fromFile, WithReconnectDelay(time.Duration(f.ReconnectDelay)))
	}
	if f.PingRetryCountBeforeReconnect > 0 {
		fromFile = append(fromFile, WithPingRetryCountBeforeReconnect(f.PingRetryCountBeforeReconnect))
	}
	if f.InsecureSkipVerify {
		fromFile = append(fromFile, WithTLSConfig(&tls.Config{InsecureSkipVerify: true}))
	}
	if f.ForceConnect {
		fromFile = append(fromFile, WithForceConnect(true))
	}
	opts = append(fromFile, opts...)

	switch f.Kind {
	case KindPaired:
		return NewPairedConfiguration(f.ApplicationID, f.URL, f.POSName, f.SerialNumber, f.AuthToken, opts...)
	case KindCloud:
		return NewCloudConfiguration(f.ApplicationID, f.Server, f.AccessToken, f.MerchantID, f.DeviceID, f.FriendlyID, opts...)
	default:
		return NewDirectConfiguration(f.ApplicationID, f.URL, opts...)
	}
}
