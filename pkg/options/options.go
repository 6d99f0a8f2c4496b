package options

import (
	"fmt"
	"net"

	"github.com/spf13/pflag"
)

// IOptions defines methods to implement a generic options group.
type IOptions interface {
	// Validate validates all the required options. It can also be used to
	// complete options if needed.
	Validate() []error

	// AddFlags adds flags related to given flagset.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// ValidateAddress takes an address as a string and validates it is a
// host:port form that can be listened on.
func ValidateAddress(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("%q is not a valid address: %w", addr, err)
	}

	if host != "" {
		if ip := net.ParseIP(host); ip == nil {
			if _, err := net.LookupHost(host); err != nil {
				return fmt.Errorf("%q is not a valid host: %w", host, err)
			}
		}
	}

	if port == "" {
		return fmt.Errorf("%q has no port", addr)
	}

	return nil
}
