// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//  http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package config loads CLI connection contexts.
package config

import (
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/go-kivik/couchdoc/cmd/couchdoc/errors"
	"github.com/go-kivik/couchdoc/cmd/couchdoc/log"
)

const (
	envPrefix = "COUCHDOC"

	keyDSN            = "dsn"
	keyContext        = "context"
	keyContexts       = "contexts"
	keyCurrentContext = "current-context"

	// envContextName names the context synthesized from a DSN given on the
	// command line or in the environment.
	envContextName = "*"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the full app configuration.
type Config struct {
	Contexts       map[string]*Context
	CurrentContext string

	v   *viper.Viper
	log log.Logger
}

// Context represents a complete, or partial, CouchDB DSN context.
type Context struct {
	Scheme   string
	Host     string
	User     string
	Password string
	Database string
}

// rawContext is a context as written in the config file. Either DSN, or
// Host, must be set.
type rawContext struct {
	DSN      string `mapstructure:"dsn" validate:"omitempty,url"`
	Scheme   string `mapstructure:"scheme" validate:"omitempty,oneof=http https"`
	Host     string `mapstructure:"host" validate:"required_without=DSN,excluded_with=DSN"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password" validate:"excluded_without=User"`
	Database string `mapstructure:"database"`
}

type rawConfig struct {
	Contexts       map[string]*rawContext `mapstructure:"contexts" validate:"dive,required"`
	CurrentContext string                 `mapstructure:"current-context"`
}

func (c *Context) String() string {
	return c.DSN()
}

func (c *Context) dsn() *url.URL {
	var user *url.Userinfo
	if c.User != "" || c.Password != "" {
		user = url.UserPassword(c.User, c.Password)
	}
	scheme := c.Scheme
	if scheme == "" {
		scheme = "http"
	}
	var p string
	if c.Database != "" {
		p = path.Join("/", c.Database)
	}
	return &url.URL{
		Scheme: scheme,
		Host:   c.Host,
		Path:   p,
		User:   user,
	}
}

// DSN returns the full DSN of the context, including the database, if any.
func (c *Context) DSN() string {
	return c.dsn().String()
}

// ServerDSN returns just the server DSN, with no database.
func (c *Context) ServerDSN() string {
	dsn := c.dsn()
	dsn.Path = ""
	return dsn.String()
}

// ContextFromDSN parses a DSN into a context.
func ContextFromDSN(dsn string) (*Context, error) {
	uri, err := url.Parse(dsn)
	if err != nil {
		return nil, errors.Code(errors.ErrUsage, err)
	}
	if uri.Host == "" {
		return nil, errors.Codef(errors.ErrUsage, "server hostname required in DSN %q", dsn)
	}
	var user, password string
	if u := uri.User; u != nil {
		user = u.Username()
		password, _ = u.Password()
	}
	return &Context{
		Scheme:   uri.Scheme,
		Host:     uri.Host,
		User:     user,
		Password: password,
		Database: strings.Trim(uri.Path, "/"),
	}, nil
}

// New returns an empty configuration object. Call Read() to populate it.
func New() *Config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	_ = v.BindEnv(keyDSN)
	_ = v.BindEnv(keyContext)
	return &Config{
		Contexts: make(map[string]*Context),
		v:        v,
		log:      log.NewNil(),
	}
}

// BindFlags binds the --dsn and --context flags, if defined in flags. Flags
// take precedence over the environment.
func (c *Config) BindFlags(flags *pflag.FlagSet) {
	for _, key := range []string{keyDSN, keyContext} {
		if f := flags.Lookup(key); f != nil {
			_ = c.v.BindPFlag(key, f)
		}
	}
}

// Read populates c with the app configuration found in filename. A missing
// file is not an error. A DSN from the command line or the COUCHDOC_DSN
// environment variable becomes the current context.
func (c *Config) Read(filename string, lg log.Logger) error {
	c.log = lg
	if err := c.readFile(filename); err != nil {
		return errors.WithCode(err, errors.ErrUsage)
	}
	if dsn := c.v.GetString(keyDSN); dsn != "" {
		cx, err := ContextFromDSN(dsn)
		if err != nil {
			return err
		}
		c.Contexts[envContextName] = cx
		c.CurrentContext = envContextName
		lg.Debug("set default DSN from flags or environment")
		return nil
	}
	if name := c.v.GetString(keyContext); name != "" {
		c.CurrentContext = name
		lg.Debugf("selected context %q", name)
	}
	return nil
}

func (c *Config) readFile(filename string) error {
	if filename == "" {
		c.log.Debug("no config file specified")
		return nil
	}
	c.v.SetConfigFile(filename)
	c.v.SetConfigType("yaml")
	if err := c.v.ReadInConfig(); err != nil {
		c.log.Debugf("failed to read config: %s", err)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	raw := rawConfig{}
	if err := c.v.Unmarshal(&raw); err != nil {
		return err
	}
	if err := validate.Struct(raw); err != nil {
		return validationError(err)
	}
	for name, rcx := range raw.Contexts {
		cx, err := rcx.context()
		if err != nil {
			return fmt.Errorf("context %q: %w", name, err)
		}
		c.Contexts[name] = cx
	}
	c.CurrentContext = raw.CurrentContext
	c.log.Debugf("successfully read config file %q", filename)
	return nil
}

func (r *rawContext) context() (*Context, error) {
	if r.DSN != "" {
		return ContextFromDSN(r.DSN)
	}
	return &Context{
		Scheme:   r.Scheme,
		Host:     r.Host,
		User:     r.User,
		Password: r.Password,
		Database: r.Database,
	}, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q validation", fe.Namespace(), fe.Tag()))
	}
	sort.Strings(msgs)
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// CurrentCx returns the current context.
func (c *Config) CurrentCx() (*Context, error) {
	if c.CurrentContext == "" {
		if len(c.Contexts) == 1 {
			for _, cx := range c.Contexts {
				return cx, nil
			}
		}
		return nil, errors.Code(errors.ErrUsage, "no context specified")
	}
	cx, ok := c.Contexts[c.CurrentContext]
	if !ok {
		return nil, errors.Codef(errors.ErrUsage, "context %q not found", c.CurrentContext)
	}
	return cx, nil
}

// ServerDSN returns the server DSN of the current context.
func (c *Config) ServerDSN() (string, error) {
	cx, err := c.CurrentCx()
	if err != nil {
		return "", err
	}
	if cx.Host == "" {
		return "", errors.Code(errors.ErrUsage, "server hostname required")
	}
	return cx.ServerDSN(), nil
}

// DB returns name if it is set, otherwise the database of the current
// context.
func (c *Config) DB(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if cx, err := c.CurrentCx(); err == nil && cx.Database != "" {
		return cx.Database, nil
	}
	return "", errors.Code(errors.ErrUsage, "database name required")
}
