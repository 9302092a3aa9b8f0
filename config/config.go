/*
Copyright 2025 PayGrid Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_LISTENER_PORT    = "5002"
	DEFAULT_POLL_INTERVAL    = 5   // seconds
	DEFAULT_EXPIRY_WINDOW    = 15  // minutes
	DEFAULT_GATEWAY_TIMEOUT  = 30  // seconds
	DEFAULT_COUNTDOWN_TICK   = 1   // seconds, fixed by the lifecycle contract
	DEFAULT_RATELIMIT_WINDOW = 600 // seconds
)

var ConfigStore atomic.Value

// GatewayConfig holds the connection settings for the PayGrid REST API.
type GatewayConfig struct {
	Endpoint   string `json:"endpoint" envconfig:"PAYGRID_GATEWAY_ENDPOINT"`
	APIKey     string `json:"api_key" envconfig:"PAYGRID_GATEWAY_API_KEY"`
	TimeoutSec int    `json:"timeout_sec" envconfig:"PAYGRID_GATEWAY_TIMEOUT_SEC"`
}

// LifecycleConfig tunes the payment/payout lifecycle controller.
type LifecycleConfig struct {
	PollIntervalSec int `json:"poll_interval_sec" envconfig:"PAYGRID_POLL_INTERVAL_SEC"`
	ExpiryWindowMin int `json:"expiry_window_min" envconfig:"PAYGRID_EXPIRY_WINDOW_MIN"`
}

// ListenerConfig configures the local webhook callback receiver.
type ListenerConfig struct {
	Port         string `json:"port" envconfig:"PAYGRID_LISTENER_PORT"`
	SharedSecret string `json:"shared_secret" envconfig:"PAYGRID_LISTENER_SHARED_SECRET"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"PAYGRID_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"PAYGRID_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"PAYGRID_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookURL string `json:"webhook_url"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
}

type Configuration struct {
	ProjectName  string          `json:"project_name" envconfig:"PAYGRID_PROJECT_NAME"`
	Gateway      GatewayConfig   `json:"gateway"`
	Lifecycle    LifecycleConfig `json:"lifecycle"`
	Listener     ListenerConfig  `json:"listener"`
	RateLimit    RateLimitConfig `json:"rate_limit"`
	Notification Notification    `json:"notification"`
}

// PollInterval returns the configured poll cadence as a duration.
func (cnf *Configuration) PollInterval() time.Duration {
	return time.Duration(cnf.Lifecycle.PollIntervalSec) * time.Second
}

// ExpiryWindow returns how long a new payment address stays payable.
func (cnf *Configuration) ExpiryWindow() time.Duration {
	return time.Duration(cnf.Lifecycle.ExpiryWindowMin) * time.Minute
}

// GatewayTimeout bounds a single status or create round trip.
func (cnf *Configuration) GatewayTimeout() time.Duration {
	return time.Duration(cnf.Gateway.TimeoutSec) * time.Second
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("paygrid", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called paygrid.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "PayGrid Client"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Gateway.Endpoint = strings.TrimSpace(cnf.Gateway.Endpoint)
	cnf.Gateway.APIKey = strings.TrimSpace(cnf.Gateway.APIKey)
	cnf.Listener.Port = strings.TrimSpace(cnf.Listener.Port)

	if cnf.Gateway.Endpoint == "" {
		log.Println("Error: Gateway endpoint is empty. It's a required field.")
		return errors.New("gateway endpoint is required")
	}

	if cnf.Gateway.APIKey == "" {
		log.Println("Error: Gateway API key is empty. It's a required field.")
		return errors.New("gateway api key is required")
	}

	if cnf.Gateway.TimeoutSec <= 0 {
		cnf.Gateway.TimeoutSec = DEFAULT_GATEWAY_TIMEOUT
	}

	if cnf.Lifecycle.PollIntervalSec <= 0 {
		cnf.Lifecycle.PollIntervalSec = DEFAULT_POLL_INTERVAL
		log.Printf("Warning: Poll interval not specified. Setting default value: %ds", DEFAULT_POLL_INTERVAL)
	}

	if cnf.Lifecycle.ExpiryWindowMin <= 0 {
		cnf.Lifecycle.ExpiryWindowMin = DEFAULT_EXPIRY_WINDOW
		log.Printf("Warning: Expiry window not specified. Setting default value: %dm", DEFAULT_EXPIRY_WINDOW)
	}

	if cnf.Listener.Port == "" {
		cnf.Listener.Port = DEFAULT_LISTENER_PORT
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := DEFAULT_RATELIMIT_WINDOW
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
