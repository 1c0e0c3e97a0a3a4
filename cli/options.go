package cli

import (
	"github.com/viant/aura"
)

// DefaultStoreURL is used when neither a flag nor a config file names a store.
const DefaultStoreURL = "~/.aura/credentials.json"

type Options struct {
	Config   string `short:"c" long:"config" description:"yaml options file (afs url)"`
	LogLevel string `long:"log-level" description:"log level" default:"warn" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	aura.ClientOptions

	Login   LoginCommand   `command:"login" description:"authenticate and persist the session"`
	Logout  struct{}       `command:"logout" description:"end the session"`
	Status  struct{}       `command:"status" description:"print session state"`
	Renew   struct{}       `command:"renew" description:"renew the access token"`
	Request RequestCommand `command:"request" description:"send an authenticated api request"`
}

type LoginCommand struct {
	Username string `short:"u" long:"username" description:"portal username" required:"true"`
	Password string `short:"p" long:"password" env:"AURA_PASSWORD" description:"portal password" required:"true"`
}

type RequestCommand struct {
	Method string `short:"X" long:"method" description:"http method" default:"GET"`
	Data   string `short:"d" long:"data" description:"request body"`
	Args   struct {
		Endpoint string `positional-arg-name:"endpoint" description:"endpoint relative to the api base"`
	} `positional-args:"yes" required:"yes"`
}

// clientOptions merges config file options with flags; flags win.
func (o *Options) clientOptions(loaded *aura.ClientOptions) *aura.ClientOptions {
	ret := &aura.ClientOptions{}
	if loaded != nil {
		*ret = *loaded
	}
	if o.URL != "" {
		ret.URL = o.URL
	}
	if o.APIBase != "" && (loaded == nil || o.APIBase != aura.DefaultAPIBase) {
		ret.APIBase = o.APIBase
	}
	if o.TimeoutMs > 0 {
		ret.TimeoutMs = o.TimeoutMs
	}
	if o.RequestID {
		ret.RequestID = true
	}
	if o.Store.URL != "" {
		ret.Store.URL = o.Store.URL
	}
	if ret.Store.URL == "" {
		ret.Store.URL = DefaultStoreURL
	}
	return ret
}
