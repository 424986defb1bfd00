// Package discovery lists the repositories that sit directly under a root directory.
package discovery
