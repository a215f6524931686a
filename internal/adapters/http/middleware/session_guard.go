package middleware

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"strings"

	"libraryhub/internal/config"
	"libraryhub/internal/pkg/jwt"
	"libraryhub/internal/pkg/response"
	"libraryhub/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
	"gopkg.in/yaml.v3"
)

// Access is the session requirement of a route
type Access string

const (
	// AccessPublic routes are reachable with or without a session
	AccessPublic Access = "public"
	// AccessAuthenticated routes require a valid session
	AccessAuthenticated Access = "authenticated"
	// AccessGuest routes are for visitors without a session
	AccessGuest Access = "guest"
)

// Redirect targets
const (
	LoginPath = "/auth/login"
	HomePath  = "/"
)

func (a Access) valid() bool {
	return a == AccessPublic || a == AccessAuthenticated || a == AccessGuest
}

// Rule assigns an access level to a path. Prefix rules also match
// every path below Path.
type Rule struct {
	Path   string `yaml:"path"`
	Prefix bool   `yaml:"prefix"`
	Access Access `yaml:"access"`
}

// matches expects a normalized request path
func (r Rule) matches(reqPath string) bool {
	rulePath := normalizePath(r.Path)
	if reqPath == rulePath {
		return true
	}
	if !r.Prefix {
		return false
	}
	if rulePath == "/" {
		return true
	}
	return strings.HasPrefix(reqPath, rulePath+"/")
}

// normalizePath folds a path to the form routes are matched in.
// Fiber routes ignore case and trailing slashes unless configured otherwise.
func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	return strings.ToLower(path.Clean("/" + p))
}

// Policy is the route table evaluated by SessionGuard
type Policy struct {
	Default Access `yaml:"default"`
	Rules   []Rule `yaml:"rules"`
}

// DefaultPolicy guards the library pages and keeps the auth pages for guests
func DefaultPolicy() *Policy {
	return &Policy{
		Default: AccessPublic,
		Rules: []Rule{
			{Path: "/", Access: AccessAuthenticated},
			{Path: "/auth/login", Access: AccessGuest},
			{Path: "/auth/signup", Access: AccessGuest},
			{Path: "/auth/logout", Access: AccessPublic},
			{Path: "/books", Prefix: true, Access: AccessAuthenticated},
			{Path: "/members", Prefix: true, Access: AccessAuthenticated},
			{Path: "/reports", Prefix: true, Access: AccessAuthenticated},
			{Path: "/transactions", Prefix: true, Access: AccessAuthenticated},
		},
	}
}

// LoadPolicy reads a policy from a YAML file
func LoadPolicy(filename string) (*Policy, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read guard policy: %w", err)
	}

	policy := &Policy{}
	if err := yaml.Unmarshal(data, policy); err != nil {
		return nil, fmt.Errorf("parse guard policy: %w", err)
	}
	if policy.Default == "" {
		policy.Default = AccessPublic
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

// PolicyFromConfig loads GUARD_POLICY_FILE when set, else the default policy
func PolicyFromConfig(cfg *config.Config) (*Policy, error) {
	if cfg.Guard.PolicyFile == "" {
		return DefaultPolicy(), nil
	}
	policy, err := LoadPolicy(cfg.Guard.PolicyFile)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Guard policy loaded from %s [%d rules]", cfg.Guard.PolicyFile, len(policy.Rules))
	return policy, nil
}

// Validate checks every rule has a path and a known access level
func (p *Policy) Validate() error {
	if !p.Default.valid() {
		return fmt.Errorf("guard policy: unknown default access %q", p.Default)
	}
	for i, rule := range p.Rules {
		if !strings.HasPrefix(rule.Path, "/") {
			return fmt.Errorf("guard policy: rule %d: path must start with /", i)
		}
		if !rule.Access.valid() {
			return fmt.Errorf("guard policy: rule %d: unknown access %q", i, rule.Access)
		}
	}
	return nil
}

// Resolve returns the access level for path. The longest matching rule
// wins and an exact rule beats a prefix rule of the same length.
func (p *Policy) Resolve(reqPath string) Access {
	reqPath = normalizePath(reqPath)
	best := -1
	access := p.Default
	for _, rule := range p.Rules {
		if !rule.matches(reqPath) {
			continue
		}
		score := 2 * len(normalizePath(rule.Path))
		if !rule.Prefix {
			score++
		}
		if score > best {
			best = score
			access = rule.Access
		}
	}
	return access
}

// SessionGuard enforces policy on every request.
// A valid session sets userID in locals. A bad token clears the cookies
// and sends guarded and guest paths to the login page.
func SessionGuard(policy *Policy, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		access := policy.Resolve(c.Path())
		token := session.TokenFrom(c)

		// No token
		if token == "" {
			if access == AccessAuthenticated {
				return c.Redirect(LoginPath, fiber.StatusFound)
			}
			return c.Next()
		}

		claims, err := jwt.ValidateSessionToken(token, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrNoSecret) && access == AccessAuthenticated {
				log.Println("❌ Session rejected: SECRET_KEY is not configured")
				return response.InternalServerError(c, "Internal server error")
			}

			// Invalid or expired token; the retried login request carries no cookie
			session.ClearCookies(c, cfg)
			if access != AccessPublic {
				return c.Redirect(LoginPath, fiber.StatusFound)
			}
			return c.Next()
		}

		// Valid token
		if access == AccessGuest {
			return c.Redirect(HomePath, fiber.StatusFound)
		}
		c.Locals("userID", claims.UserID)
		return c.Next()
	}
}
