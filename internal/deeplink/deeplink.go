// Package deeplink parses inbound reflection URLs and builds the links that
// mindful shortcuts open.
//
// Two scheme families are understood. The production family is the app's own
// registered scheme (intentional://reflect?app=instagram) whose path and query
// are used as-is. The development family is a live tunnel scheme
// (exp://192.168.1.5:8081/--/reflect?app=instagram) where everything before
// the "/--/" separator is routing metadata and is discarded.
package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Sentinel errors returned by Parse. ErrIgnored is not a failure: callers
// skip routing without logging an error.
var (
	ErrIgnored           = errors.New("ignored development url")
	ErrMalformedURL      = errors.New("malformed url")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

// ActionReflect is the action generated links carry.
const ActionReflect = "reflect"

// TunnelSeparator marks the start of the real payload in a development URL.
const TunnelSeparator = "/--/"

// Family is a scheme family.
type Family string

const (
	FamilyProduction  Family = "production"
	FamilyDevelopment Family = "development"
)

// Environment describes the runtime the resolver is adapted to. It is
// resolved once at startup and passed in, never queried ad hoc.
type Environment struct {
	Family        Family
	AppScheme     string   // e.g. "intentional"
	TunnelSchemes []string // e.g. "exp", "exps"
	TunnelHost    string
	TunnelPort    int
}

// ProductionEnvironment returns the environment of an installed build.
func ProductionEnvironment() Environment {
	return Environment{Family: FamilyProduction, AppScheme: "intentional"}
}

// DevelopmentEnvironment returns the environment of a live tunnel session on host:port.
func DevelopmentEnvironment(host string, port int) Environment {
	return Environment{
		Family:        FamilyDevelopment,
		AppScheme:     "intentional",
		TunnelSchemes: []string{"exp", "exps"},
		TunnelHost:    host,
		TunnelPort:    port,
	}
}

func (e Environment) isTunnelScheme(scheme string) bool {
	if e.Family != FamilyDevelopment {
		return false
	}
	for _, s := range e.TunnelSchemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

// Intent is a parsed deep link.
type Intent struct {
	Action string
	App    string
}

// Parse turns rawURL into an Intent. The production scheme is accepted in
// every environment; tunnel schemes only in a development environment.
func Parse(env Environment, rawURL string) (Intent, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(rawURL), "://")
	if !ok || scheme == "" || rest == "" {
		return Intent{}, fmt.Errorf("%w: %q", ErrMalformedURL, rawURL)
	}

	switch {
	case strings.EqualFold(scheme, env.AppScheme):
		return parsePayload(rest, rawURL)
	case env.isTunnelScheme(scheme):
		idx := strings.Index(rest, TunnelSeparator)
		if idx < 0 {
			return Intent{}, fmt.Errorf("%w: %q", ErrIgnored, rawURL)
		}
		return parsePayload(rest[idx+len(TunnelSeparator):], rawURL)
	default:
		return Intent{}, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
}

func parsePayload(payload, rawURL string) (Intent, error) {
	path, query, _ := strings.Cut(payload, "?")
	var intent Intent
	intent.Action = strings.Trim(path, "/")
	if query == "" {
		return intent, nil
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return Intent{}, fmt.Errorf("%w: %q: %v", ErrMalformedURL, rawURL, err)
	}
	intent.App = values.Get("app")
	return intent, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// FriendlyName is the URL form of an app name: lower-cased, whitespace runs
// replaced by hyphens.
func FriendlyName(name string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// BuildLink returns the deep link that opens a reflection for appName in env.
func BuildLink(env Environment, action, appName string) string {
	q := url.Values{"app": {FriendlyName(appName)}}.Encode()
	if env.Family == FamilyDevelopment && len(env.TunnelSchemes) > 0 {
		host := env.TunnelHost
		if env.TunnelPort > 0 {
			host += ":" + strconv.Itoa(env.TunnelPort)
		}
		return env.TunnelSchemes[0] + "://" + host + TunnelSeparator + action + "?" + q
	}
	return env.AppScheme + "://" + action + "?" + q
}
