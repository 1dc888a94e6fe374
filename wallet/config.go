package wallet

import (
	"os"
	"strconv"

	"github.com/duskwallet/dwd/account"
	"github.com/jessevdk/go-flags"
)

// Config mirrors §6's persisted plaintext config file: port, gap limit,
// master pocket name, explorer endpoints, query expiry, and an optional
// SOCKS5 proxy.
type Config struct {
	Port             int    `long:"port" description:"listen port for the request channel" default:"8333"`
	GapLimit         uint32 `long:"gaplimit" description:"look-ahead window of unused addresses kept per pocket" default:"5"`
	MasterPocketName string `long:"masterpocket" description:"pocket created automatically for a new account" default:"master"`
	ExplorerURL      string `long:"explorerurl" description:"mainnet block-explorer websocket URL"`
	TestnetExplorerURL string `long:"testnetexplorerurl" description:"testnet block-explorer websocket URL"`
	QueryExpireTime  int    `long:"queryexpiretime" description:"explorer request timeout, seconds" default:"30"`
	Socks5           string `long:"socks5" description:"optional SOCKS5 proxy address for explorer connections"`
}

// DefaultConfig returns a Config populated with the struct tag defaults,
// the same pattern the teacher's own flag-backed config loader relies on.
func DefaultConfig() *Config {
	cfg := &Config{}
	parser := flags.NewParser(cfg, flags.Default|flags.IgnoreUnknown)
	parser.ParseArgs(nil)
	return cfg
}

// LoadConfig reads path as a go-flags INI file over the defaults,
// matching darkwallet's own "file gives defaults, flags override" config
// layering, minus the flag half (owned by cmd/dwd).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	parser := flags.NewParser(cfg, flags.Default|flags.IgnoreUnknown)
	iniParser := flags.NewIniParser(parser)
	if err := iniParser.ParseFile(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as an INI file.
func SaveConfig(cfg *Config, path string) error {
	parser := flags.NewParser(cfg, flags.Default)
	iniParser := flags.NewIniParser(parser)
	return iniParser.WriteFile(path, flags.IniIncludeDefaults|flags.IniCommentDefaults)
}

func explorerURL(cfg *Config, testnet bool) string {
	if testnet {
		return cfg.TestnetExplorerURL
	}
	return cfg.ExplorerURL
}

func gapLimitOrDefault(cfg *Config) uint32 {
	if cfg.GapLimit == 0 {
		return account.DefaultGapLimit
	}
	return cfg.GapLimit
}

// getSetting/setSetting implement §4.H's get_setting/set_setting against
// the persisted config fields named in the AMBIENT STACK section.
func getSetting(cfg *Config, name string) (string, error) {
	switch name {
	case "port":
		return strconv.Itoa(cfg.Port), nil
	case "gap_limit":
		return strconv.FormatUint(uint64(cfg.GapLimit), 10), nil
	case "master_pocket_name":
		return cfg.MasterPocketName, nil
	case "explorer_url":
		return cfg.ExplorerURL, nil
	case "testnet_url":
		return cfg.TestnetExplorerURL, nil
	case "query_expire_time":
		return strconv.Itoa(cfg.QueryExpireTime), nil
	case "socks5":
		return cfg.Socks5, nil
	default:
		return "", newError(NotFound, nil)
	}
}

func setSetting(cfg *Config, name, value string) error {
	switch name {
	case "port":
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.Port = v
	case "gap_limit":
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		cfg.GapLimit = uint32(v)
	case "master_pocket_name":
		cfg.MasterPocketName = value
	case "explorer_url":
		cfg.ExplorerURL = value
	case "testnet_url":
		cfg.TestnetExplorerURL = value
	case "query_expire_time":
		v, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		cfg.QueryExpireTime = v
	case "socks5":
		cfg.Socks5 = value
	default:
		return newError(NotFound, nil)
	}
	return nil
}
