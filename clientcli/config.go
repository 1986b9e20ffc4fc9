package clientcli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"

	"github.com/sagarc03/sfs"
)

// Environment variables consulted when the matching parameter is not given.
const (
	EnvUser     = "TOWER_USERNAME"
	EnvPassword = "TOWER_PASSWORD"
	EnvURL      = "SFS_UPLOAD_URL"
)

// Flag names. Underscore spellings and the "verify" alias are normalized
// to these by BindFlags.
const (
	FlagMethod         = "method"
	FlagCertVerify     = "cert-verify"
	FlagLocalFilePath  = "local-file-path"
	FlagRemoteFileName = "remote-file-name"
	FlagUser           = "user"
	FlagPassword       = "password"
	FlagOrg            = "org"
	FlagContext        = "context"
	FlagURL            = "url"
)

// DefaultLocalDir is joined to the working directory when no local path is given.
const DefaultLocalDir = "sfs"

// Config holds resolved connection settings for a single service.
type Config struct {
	URL        string
	User       string
	Password   string
	CertVerify bool
}

// Params holds the raw invocation parameters. Empty strings and a nil
// CertVerify mean "not given".
type Params struct {
	Method         string `validate:"omitempty,oneof=put get delete list_files file_most_recent list_contexts"`
	CertVerify     *bool
	LocalFilePath  string
	RemoteFileName string
	User           string
	Password       string
	Org            string `validate:"required"`
	Context        string `validate:"required_unless=Method list_contexts"`
	URL            string
}

// LogValue keeps the password out of structured logs.
func (p Params) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("method", p.Method),
		slog.String("org", p.Org),
		slog.String("context", p.Context),
		slog.String("remote_file_name", p.RemoteFileName),
		slog.String("local_file_path", p.LocalFilePath),
		slog.String("url", p.URL),
		slog.String("user", p.User),
		slog.Bool("password_set", p.Password != ""),
	)
}

// Resolve merges parameter sources, lowest precedence first. A later source
// overrides only the fields it sets; absent values stay absent.
func Resolve(sources ...Params) Params {
	var result Params
	for _, src := range sources {
		if src.Method != "" {
			result.Method = src.Method
		}
		if src.CertVerify != nil {
			v := *src.CertVerify
			result.CertVerify = &v
		}
		if src.LocalFilePath != "" {
			result.LocalFilePath = src.LocalFilePath
		}
		if src.RemoteFileName != "" {
			result.RemoteFileName = src.RemoteFileName
		}
		if src.User != "" {
			result.User = src.User
		}
		if src.Password != "" {
			result.Password = src.Password
		}
		if src.Org != "" {
			result.Org = src.Org
		}
		if src.Context != "" {
			result.Context = src.Context
		}
		if src.URL != "" {
			result.URL = src.URL
		}
	}
	return result
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ParamsFromEnv reads the credential and URL fallbacks through lookup.
func ParamsFromEnv(lookup LookupFunc) Params {
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}
	return Params{
		User:     get(EnvUser),
		Password: get(EnvPassword),
		URL:      get(EnvURL),
	}
}

// BindFlags registers every parameter flag on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(normalizeFlagName)

	fs.StringP(FlagMethod, "m", string(sfs.DefaultOperation), "operation: put, get, delete, list_files, file_most_recent, list_contexts")
	fs.Bool(FlagCertVerify, false, "enable TLS certificate verification (alias: --verify)")
	fs.StringP(FlagLocalFilePath, "l", "", "local directory: zipped by put, download target of get (default: $PWD/sfs)")
	fs.StringP(FlagRemoteFileName, "n", "", "file name in the context (default for put: <org>_<context>_<epoch>)")
	fs.StringP(FlagUser, "u", "", "user (env: "+EnvUser+")")
	fs.StringP(FlagPassword, "p", "", "password (env: "+EnvPassword+")")
	fs.StringP(FlagOrg, "o", "", "organization (required)")
	fs.StringP(FlagContext, "c", "", "context (required except for list_contexts)")
	fs.String(FlagURL, "", "service URL (env: "+EnvURL+")")
}

func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	name = strings.ReplaceAll(name, "_", "-")
	if name == "verify" {
		name = FlagCertVerify
	}
	return pflag.NormalizedName(name)
}

// ParamsFromFlags returns the parameters explicitly set on fs.
func ParamsFromFlags(fs *pflag.FlagSet) Params {
	var p Params
	str := func(name string) string {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			return ""
		}
		return f.Value.String()
	}

	p.Method = str(FlagMethod)
	p.LocalFilePath = str(FlagLocalFilePath)
	p.RemoteFileName = str(FlagRemoteFileName)
	p.User = str(FlagUser)
	p.Password = str(FlagPassword)
	p.Org = str(FlagOrg)
	p.Context = str(FlagContext)
	p.URL = str(FlagURL)

	if f := fs.Lookup(FlagCertVerify); f != nil && f.Changed {
		if v, err := fs.GetBool(FlagCertVerify); err == nil {
			p.CertVerify = &v
		}
	}
	return p
}

var validate = validator.New()

// Validate checks the parameters required by the requested method.
func (p Params) Validate() error {
	op, err := sfs.ParseOperation(p.Method)
	if err != nil {
		return err
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("validate params: %w", err)
	}
	if op.NeedsName() && p.RemoteFileName == "" {
		return fmt.Errorf("%w for %s", ErrRemoteNameRequired, op)
	}
	return nil
}

// Invocation validates p and resolves defaults: the local path falls back
// to <cwd>/sfs, a ".zip" suffix is stripped from the remote name, and a
// missing name becomes <org>_<context>_<epoch seconds at now>.
func (p Params) Invocation(now time.Time, cwd string) (sfs.Invocation, error) {
	if err := p.Validate(); err != nil {
		return sfs.Invocation{}, err
	}
	op, _ := sfs.ParseOperation(p.Method)

	localPath := p.LocalFilePath
	if localPath == "" {
		localPath = filepath.Join(cwd, DefaultLocalDir)
	}

	name := sfs.NormalizeRemoteName(p.RemoteFileName)
	if p.RemoteFileName == "" {
		name = sfs.DefaultRemoteName(p.Org, p.Context, now)
	}

	certVerify := false
	if p.CertVerify != nil {
		certVerify = *p.CertVerify
	}

	return sfs.Invocation{
		Operation: op,
		Target: sfs.Target{
			Org:     p.Org,
			Context: p.Context,
			Name:    name,
		},
		Credentials: sfs.Credentials{
			User:     p.User,
			Password: p.Password,
		},
		URL:        p.URL,
		CertVerify: certVerify,
		LocalPath:  localPath,
	}, nil
}

// ConfigFromInvocation extracts the connection settings of inv.
func ConfigFromInvocation(inv sfs.Invocation) *Config {
	return &Config{
		URL:        inv.URL,
		User:       inv.Credentials.User,
		Password:   inv.Credentials.Password,
		CertVerify: inv.CertVerify,
	}
}
