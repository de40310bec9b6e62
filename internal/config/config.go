package config

import "time"

type Config interface {
	EnvConfig
	ClientConfig
	RouteConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type ClientConfig interface {
	GetBaseAPIURL() string
	GetHTTPTimeout() time.Duration
}

type RouteConfig interface {
	GetLoginRoute() string
	GetDashboardRoute() string
	GetPublicRoutes() []string
}

type mainConfig struct {
	EnvVars
	Client
	Routes
}

func New() Config {
	return mainConfig{}
}
