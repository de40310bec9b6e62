package config

import (
	"strconv"
	"time"
)

const (
	baseAPIURLVar  = "BASE_API_URL"
	httpTimeoutVar = "HTTP_TIMEOUT_SECONDS"
)

type Client struct{}

var _ ClientConfig = Client{}

// GetBaseAPIURL returns the root of the user API (e.g. "https://api.example.com/api").
// All /User/* endpoint paths are resolved against it.
func (Client) GetBaseAPIURL() string {
	return GetEnv(baseAPIURLVar, "http://localhost:5000/api")
}

func (Client) GetHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(httpTimeoutVar, "30"))
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
