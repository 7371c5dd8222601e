package rdbms

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/starpipe/starpipe/constants"
	"github.com/xo/dburl"
)

// ConnectionDetails holds credentials for a logical connection.
// Data keys depend on the connection type; for postgres either a single
// "dsn", or the parts "user", "password", "host", "port", "database".
type ConnectionDetails struct {
	Type        string            `json:"type" yaml:"type" mapstructure:"type"`
	LogicalName string            `json:"logicalName" yaml:"logicalName" mapstructure:"logicalName"`
	Data        map[string]string `json:"data" yaml:"data" mapstructure:"data"`
}

// String redacts passwords and pretty-prints the contents of ConnectionDetails.
func (c ConnectionDetails) String() string {
	x := make([]string, 0, len(c.Data)+1)
	x = append(x, fmt.Sprintf("  type = %v", c.Type))
	if v, ok := c.Data["dsn"]; ok { // if there's a DSN...
		u, err := dburl.Parse(v)
		if err != nil {
			panic(fmt.Sprintf("unexpected error while parsing DSN: %v", err))
		}
		x = append(x, fmt.Sprintf("  dsn = %v", u.Redacted()))
	} else { // else print the individual fields...
		for k, v := range c.Data {
			if k == "password" {
				v = "xxxxx"
			}
			x = append(x, fmt.Sprintf("  %v = %v", k, v))
		}
	}
	return strings.Join(x, "\n")
}

// PostgresDsn builds and validates a postgres connection string from the
// connection details. A "dsn" entry wins over individual fields.
func PostgresDsn(c *ConnectionDetails) (string, error) {
	if c.Type != constants.ConnectionTypePostgres {
		return "", errors.Errorf("connection %q must be of type %v, got %q", c.LogicalName, constants.ConnectionTypePostgres, c.Type)
	}
	dsn := c.Data["dsn"]
	if dsn == "" { // if we must compose the DSN from its parts...
		missing := make([]string, 0)
		for _, k := range []string{"user", "password", "host", "port", "database"} {
			if c.Data[k] == "" {
				missing = append(missing, k)
			}
		}
		if len(missing) > 0 {
			return "", errors.Errorf("connection %q is missing: %v", c.LogicalName, strings.Join(missing, ", "))
		}
		dsn = fmt.Sprintf("postgres://%v:%v@%v:%v/%v",
			url.QueryEscape(c.Data["user"]), url.QueryEscape(c.Data["password"]),
			c.Data["host"], c.Data["port"], c.Data["database"])
	}
	u, err := dburl.Parse(dsn)
	if err != nil {
		return "", errors.Wrapf(err, "connection %q DSN could not be parsed", c.LogicalName)
	}
	if u.Driver != "postgres" {
		return "", errors.Errorf("connection %q must use a postgres DSN, got scheme %q", c.LogicalName, u.OriginalScheme)
	}
	return dsn, nil
}
