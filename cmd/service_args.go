package cmd

import (
	"time"

	"github.com/chapel-lang/github-commit-emailer/internal/config"
	"github.com/chapel-lang/github-commit-emailer/internal/helpers"
)

var svcEnvMapString = map[*string]boundEnvVar[string]{
	&config.Service.Addr: {
		Name:        "service-host-addr",
		Description: "The address to serve the service on (default all interfaces in dual-stack serviceMode)",
		Short:       helpers.Ptr("H"),
	},
	&config.Service.Port: {
		Name:        "service-host-port",
		Description: "The port to serve the service on",
		Short:       helpers.Ptr("p"),
		Env:         helpers.Ptr("PORT"),
	},
	&config.Service.Path: {
		Name:        "service-host-path",
		Description: "The path accepting webhook deliveries",
		Short:       helpers.Ptr("P"),
	},
	&config.Service.Homepage: {
		Name:        "service-homepage",
		Description: "The URL GET / redirects to",
	},
}

var svcEnvMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Service.Timeout: {
		Name:        "service-io-timeout",
		Description: "The timeout for I/O operations",
		Short:       helpers.Ptr("t"),
	},
}
