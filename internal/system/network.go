package system

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/wumbolauncher/wumbo/internal/errors"
)

// CheckHostReachable resolves the host of rawURL and opens a TCP connection
// to it. Images are fetched from this host when they are not on disk.
func CheckHostReachable(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return errors.ConfigError("general.image_server", fmt.Sprintf("%q is not an absolute URL", rawURL))
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
		if u.Scheme == "http" {
			port = "80"
		}
	}

	resolver := &net.Resolver{}
	if _, err := resolver.LookupHost(ctx, host); err != nil {
		return errors.NewFriendlyError(
			fmt.Sprintf("Cannot resolve host: %s", host),
			"Check that the hostname is correct and your DNS is working",
		).WithDetails(err)
	}

	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return errors.NewFriendlyError(
			fmt.Sprintf("Cannot connect to host: %s", host),
			fmt.Sprintf("Images missing from Data/Images cannot be shown:\n"+
				"1. Check internet connection\n"+
				"2. Try: curl -I %s", rawURL),
		).WithDetails(err)
	}
	_ = conn.Close()
	return nil
}
